package repository

import (
	"context"

	"gym-membership-service/internal/domain/model"
)

// FreezeRepository is the port for freeze history. Freezes are append-only;
// there is no delete.
type FreezeRepository interface {
	Save(ctx context.Context, tx Tx, f *model.MembershipFreeze) error
	ListByMembership(ctx context.Context, tx Tx, membershipID string) ([]*model.MembershipFreeze, error)
	CountByMembership(ctx context.Context, tx Tx, membershipID string) (int, error)
}
