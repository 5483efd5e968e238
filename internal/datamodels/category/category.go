package category

import (
	"context"
	"time"
)

// Category is a store-scoped catalog grouping. It exists in this core as a
// write target behind the category-write authorization check.
type Category struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	StoreID int64  `gorm:"index;not null" json:"store_id"`
	Name    string `gorm:"size:128;not null" json:"name"`
	Slug    string `gorm:"size:128;index" json:"slug"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository is the category persistence contract.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Category, error)
	ListByStore(ctx context.Context, storeID int64) ([]*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
}
