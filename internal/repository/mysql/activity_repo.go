package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/activity"
)

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepository builds the audit-log repository.
func NewActivityRepository(db *gorm.DB) activity.Repository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Append(ctx context.Context, e *activity.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *activityRepo) ListByStore(ctx context.Context, storeID int64, limit int) ([]*activity.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	var list []*activity.Entry
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
