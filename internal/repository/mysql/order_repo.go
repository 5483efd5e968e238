package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository builds the order repository.
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetByTransactionUUID(ctx context.Context, uuid string) (*order.Order, error) {
	if uuid == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("transaction_uuid = ?", uuid).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetByPidx(ctx context.Context, pidx string) (*order.Order, error) {
	if pidx == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("pidx = ?", pidx).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByStore(ctx context.Context, storeID int64, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []*order.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("store_id = ?", storeID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatusFrom performs the lifecycle compare-and-set: one conditional
// UPDATE whose affected-row count decides the race. Gateways retry
// callbacks and users reload callback pages; whoever loses sees zero rows
// and must treat the order as already settled.
func (r *orderRepo) UpdateStatusFrom(ctx context.Context, id int64, from []order.Status, to order.Status, updates map[string]any) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("UpdateStatusFrom: empty from set")
	}
	values := map[string]any{"status": to}
	for k, v := range updates {
		values[k] = v
	}
	res := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
