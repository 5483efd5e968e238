package service

import (
	"context"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/category"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/plan"
)

// CategoryService is the guarded write surface for store categories.
type CategoryService struct {
	repo category.Repository
}

// NewCategoryService builds the category service.
func NewCategoryService(repo category.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*category.Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CategoryService) ListByStore(ctx context.Context, storeID int64) ([]*category.Category, error) {
	return s.repo.ListByStore(ctx, storeID)
}

func (s *CategoryService) Create(ctx context.Context, c *category.Category) error {
	return s.repo.Create(ctx, c)
}

func (s *CategoryService) Update(ctx context.Context, c *category.Category) error {
	return s.repo.Update(ctx, c)
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// PlanService is the super-admin write surface for subscription plans.
type PlanService struct {
	repo plan.Repository
}

// NewPlanService builds the plan service.
func NewPlanService(repo plan.Repository) *PlanService {
	return &PlanService{repo: repo}
}

func (s *PlanService) Get(ctx context.Context, id int64) (*plan.Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PlanService) ListAll(ctx context.Context) ([]*plan.Plan, error) {
	return s.repo.ListAll(ctx)
}

func (s *PlanService) Create(ctx context.Context, p *plan.Plan) error {
	return s.repo.Create(ctx, p)
}

func (s *PlanService) Update(ctx context.Context, p *plan.Plan) error {
	return s.repo.Update(ctx, p)
}

func (s *PlanService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
