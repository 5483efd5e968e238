package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/auth"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/user"
)

// UserService handles accounts and session issuance.
type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

// NewUserService builds the user service.
func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

func hashPassword(raw, salt string) string {
	h := sha256.Sum256([]byte(raw + salt))
	return hex.EncodeToString(h[:])
}

func newSalt() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Register creates an account with the given role.
func (s *UserService) Register(ctx context.Context, email, name, password string, role user.Role, storeID int64) (*user.User, error) {
	u := &user.User{
		UID:     uuid.NewString(),
		Email:   email,
		Name:    name,
		Role:    role,
		StoreID: storeID,
		Salt:    newSalt(),
	}
	u.Password = hashPassword(password, u.Salt)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", errors.New("invalid credentials")
	}
	if hashPassword(password, u.Salt) != u.Password {
		return "", errors.New("invalid credentials")
	}
	return auth.GenerateToken(s.jwt, u)
}

// UpdateProfile changes a user's display name. Authorization happens at
// the route (self or super_admin).
func (s *UserService) UpdateProfile(ctx context.Context, targetUID, name string) (*user.User, error) {
	u, err := s.repo.GetByUID(ctx, targetUID)
	if err != nil {
		return nil, err
	}
	u.Name = name
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
