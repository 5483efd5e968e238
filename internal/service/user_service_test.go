package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/auth"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/user"
)

type fakeUserRepo struct {
	byUID   map[string]*user.User
	byEmail map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byUID: map[string]*user.User{}, byEmail: map[string]*user.User{}}
}

func (r *fakeUserRepo) GetByUID(ctx context.Context, uid string) (*user.User, error) {
	if u, ok := r.byUID[uid]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.byUID[u.UID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error {
	r.byUID[u.UID] = u
	r.byEmail[u.Email] = u
	return nil
}

func testJWT() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", TTLMinutes: 30}
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testJWT())

	u, err := svc.Register(context.Background(), "owner@himal.example", "Owner", "s3cret", user.RoleStoreOwner, 7)
	require.NoError(t, err)
	assert.NotEmpty(t, u.UID)
	assert.NotEqual(t, "s3cret", u.Password, "password must be stored hashed")

	token, err := svc.Login(context.Background(), "owner@himal.example", "s3cret")
	require.NoError(t, err)

	id, err := auth.ParseToken(testJWT(), token)
	require.NoError(t, err)
	assert.Equal(t, u.UID, id.UID)
	assert.Equal(t, user.RoleStoreOwner, id.Role)
	assert.Equal(t, int64(7), id.StoreID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testJWT())
	_, err := svc.Register(context.Background(), "owner@himal.example", "Owner", "s3cret", user.RoleStoreOwner, 7)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "owner@himal.example", "wrong")
	assert.Error(t, err)

	_, err = svc.Login(context.Background(), "nobody@himal.example", "s3cret")
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testJWT())
	u, err := svc.Register(context.Background(), "c@himal.example", "Old Name", "pw", user.RoleCustomer, 0)
	require.NoError(t, err)

	got, err := svc.UpdateProfile(context.Background(), u.UID, "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)

	_, err = svc.UpdateProfile(context.Background(), "no-such-uid", "x")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPasswordSaltsDiffer(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testJWT())

	a, _ := svc.Register(context.Background(), "a@himal.example", "A", "same-pw", user.RoleCustomer, 0)
	b, _ := svc.Register(context.Background(), "b@himal.example", "B", "same-pw", user.RoleCustomer, 0)
	assert.NotEqual(t, a.Password, b.Password, "same password must not hash identically across users")
}
