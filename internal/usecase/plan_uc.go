package usecase

import (
	"context"

	"github.com/google/uuid"

	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

// PlanUseCase administers the plan catalog. Plans are read-mostly: edits never
// rewrite obligations already generated from them.
type PlanUseCase interface {
	Create(ctx context.Context, name string, priceCents int64, currency string, interval model.BillingInterval, intervalCount, trialDays, maxFreezes int) (*model.MembershipPlan, error)
	Get(ctx context.Context, id string) (*model.MembershipPlan, error)
	ListActive(ctx context.Context) ([]*model.MembershipPlan, error)
	Deactivate(ctx context.Context, id string) (*model.MembershipPlan, error)
}

type planUC struct {
	plans repository.PlanRepository
}

func NewPlanUseCase(plans repository.PlanRepository) *planUC {
	return &planUC{plans: plans}
}

func (uc *planUC) Create(ctx context.Context, name string, priceCents int64, currency string, interval model.BillingInterval, intervalCount, trialDays, maxFreezes int) (*model.MembershipPlan, error) {
	p, err := model.NewMembershipPlan(uuid.NewString(), name, priceCents, currency, interval, intervalCount, trialDays, maxFreezes)
	if err != nil {
		return nil, err
	}
	if err := uc.plans.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *planUC) Get(ctx context.Context, id string) (*model.MembershipPlan, error) {
	return uc.plans.FindByID(ctx, repository.NoTX, id)
}

func (uc *planUC) ListActive(ctx context.Context) ([]*model.MembershipPlan, error) {
	return uc.plans.ListActive(ctx, repository.NoTX)
}

func (uc *planUC) Deactivate(ctx context.Context, id string) (*model.MembershipPlan, error) {
	p, err := uc.plans.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	p.Active = false
	if err := uc.plans.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}
