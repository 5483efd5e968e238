package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/plan"
)

type planRepo struct {
	db *gorm.DB
}

// NewPlanRepository builds the plan repository.
func NewPlanRepository(db *gorm.DB) plan.Repository {
	return &planRepo{db: db}
}

func (r *planRepo) GetByID(ctx context.Context, id int64) (*plan.Plan, error) {
	var p plan.Plan
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepo) ListAll(ctx context.Context) ([]*plan.Plan, error) {
	var list []*plan.Plan
	if err := r.db.WithContext(ctx).Order("price_monthly").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *planRepo) Create(ctx context.Context, p *plan.Plan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *planRepo) Update(ctx context.Context, p *plan.Plan) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *planRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&plan.Plan{}, id).Error
}
