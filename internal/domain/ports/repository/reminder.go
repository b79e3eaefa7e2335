package repository

import (
	"context"

	"gym-membership-service/internal/domain/model"
)

// ReminderRepository is the port for the reminder audit trail. Records are
// append-only and never mutated after creation.
type ReminderRepository interface {
	Save(ctx context.Context, tx Tx, r *model.MembershipReminder) error
	ListByPayment(ctx context.Context, tx Tx, paymentID string) ([]*model.MembershipReminder, error)
}
