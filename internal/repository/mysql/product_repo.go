package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository builds the product repository.
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) AdjustStock(ctx context.Context, id int64, delta int64) error {
	return r.db.WithContext(ctx).Model(&product.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error
}
