package store

import (
	"context"
	"time"
)

// PaymentSettings are the tenant-owned gateway credentials. Verification
// must resolve them through the order's store, never from a global secret.
type PaymentSettings struct {
	EsewaSecretKey   string `gorm:"size:128" json:"-"`
	EsewaProductCode string `gorm:"size:64" json:"esewa_product_code"`
	EsewaTestMode    bool   `json:"esewa_test_mode"`

	KhaltiSecretKey string `gorm:"size:128" json:"-"`
	KhaltiTestMode  bool   `json:"khalti_test_mode"`
}

// Store is one tenant of the platform.
type Store struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:128;not null" json:"name"`
	OwnerUID string `gorm:"size:64;index" json:"owner_uid"`
	PlanID   int64  `gorm:"index" json:"plan_id"`

	Payment PaymentSettings `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository is the store persistence contract.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Store, error)
	Create(ctx context.Context, s *Store) error
	Update(ctx context.Context, s *Store) error
	ListAll(ctx context.Context) ([]*Store, error)
}
