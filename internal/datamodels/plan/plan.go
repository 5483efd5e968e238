package plan

import (
	"context"
	"time"
)

// Plan is a platform subscription tier. Plan writes are super-admin only.
type Plan struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"uniqueIndex;size:64;not null" json:"name"`
	PriceMonthly int64  `gorm:"not null" json:"price_monthly"` // minor units
	ProductLimit int64  `gorm:"not null" json:"product_limit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository is the plan persistence contract.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Plan, error)
	ListAll(ctx context.Context) ([]*Plan, error)
	Create(ctx context.Context, p *Plan) error
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id int64) error
}
