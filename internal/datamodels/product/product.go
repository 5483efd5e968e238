package product

import (
	"context"
	"time"
)

// Product carries the stock count the order lifecycle needs for its
// restock-once bookkeeping. Catalog attributes stay with the storefront.
type Product struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	StoreID int64  `gorm:"index;not null" json:"store_id"`
	Name    string `gorm:"size:128;not null" json:"name"`
	Price   int64  `gorm:"not null" json:"price"` // minor units
	Stock   int64  `gorm:"not null" json:"stock"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository is the product persistence contract.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	// AdjustStock adds delta (negative to take stock) atomically.
	AdjustStock(ctx context.Context, id int64, delta int64) error
}
