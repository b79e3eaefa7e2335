package repository

import (
	"context"
	"time"

	"gym-membership-service/internal/domain/model"
)

// MembershipRepository is the port for the membership entity store.
type MembershipRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Membership) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Membership, error)
	FindByMember(ctx context.Context, tx Tx, memberID string) ([]*model.Membership, error)

	// FindBillable returns active memberships whose next billing date is at or
	// before `cutoff`. Used by the billing worker.
	FindBillable(ctx context.Context, tx Tx, cutoff time.Time) ([]*model.Membership, error)

	// FindFrozen returns memberships currently in the frozen status.
	// Used by the freeze expiry worker.
	FindFrozen(ctx context.Context, tx Tx) ([]*model.Membership, error)

	// CountByStatus returns the number of memberships per status.
	CountByStatus(ctx context.Context, tx Tx) (map[model.MembershipStatus]int, error)
}
