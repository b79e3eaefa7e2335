package repository

import (
	"context"
	"time"

	"gym-membership-service/internal/domain/model"
)

// CheckInRepository is the port for facility visit sessions.
type CheckInRepository interface {
	Save(ctx context.Context, tx Tx, c *model.MembershipCheckIn) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.MembershipCheckIn, error)

	// FindOpenByMembership returns the open session for the membership, or
	// ErrNotFound when there is none.
	FindOpenByMembership(ctx context.Context, tx Tx, membershipID string) (*model.MembershipCheckIn, error)

	// CountByMembership counts visits whose check-in time falls in
	// [from, until). Zero times mean unbounded on that side.
	CountByMembership(ctx context.Context, tx Tx, membershipID string, from, until time.Time) (int, error)

	CountOpen(ctx context.Context, tx Tx) (int, error)
}
