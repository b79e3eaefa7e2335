package repository

import (
	"context"

	"gym-membership-service/internal/domain/model"
)

// PlanRepository is the port for membership plan reference data.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.MembershipPlan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.MembershipPlan, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.MembershipPlan, error)
}
