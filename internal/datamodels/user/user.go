package user

import (
	"context"
	"time"
)

// Role is the platform role set.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleStoreOwner Role = "store_owner"
	RoleStaff      Role = "staff"
	RoleCustomer   Role = "customer"
)

// User is a platform account. StoreID is meaningful only for store_owner
// and staff; a super_admin bypasses store scoping entirely.
type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	UID      string `gorm:"uniqueIndex;size:64;not null" json:"uid"`
	Email    string `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Name     string `gorm:"size:128" json:"name"`
	Role     Role   `gorm:"type:varchar(16);index;not null" json:"role"`
	StoreID  int64  `gorm:"index" json:"store_id,omitempty"`
	Password string `gorm:"size:255;not null" json:"-"` // salted hash
	Salt     string `gorm:"size:64" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository is the user persistence contract.
type Repository interface {
	GetByUID(ctx context.Context, uid string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
}
