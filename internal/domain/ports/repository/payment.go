package repository

import (
	"context"
	"time"

	"gym-membership-service/internal/domain/model"
)

// PaymentRepository is the port for billing obligations.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.MembershipPayment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.MembershipPayment, error)
	ListByMembership(ctx context.Context, tx Tx, membershipID string) ([]*model.MembershipPayment, error)

	// FindLastByMembership returns the obligation with the latest due date for
	// the membership, or ErrNotFound when none was ever generated.
	FindLastByMembership(ctx context.Context, tx Tx, membershipID string) (*model.MembershipPayment, error)

	// FindPendingDueBefore returns pending obligations whose due date is
	// strictly before `cutoff`. Used by the overdue sweeper.
	FindPendingDueBefore(ctx context.Context, tx Tx, cutoff time.Time) ([]*model.MembershipPayment, error)

	CountByStatus(ctx context.Context, tx Tx) (map[model.PaymentStatus]int, error)

	// SumPaidSince returns settled revenue (minor units) with paid_at >= since.
	SumPaidSince(ctx context.Context, tx Tx, since time.Time) (int64, error)
}
