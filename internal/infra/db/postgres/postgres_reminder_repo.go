package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

var _ repository.ReminderRepository = (*reminderRepo)(nil)

type reminderRepo struct{ pool *pgxpool.Pool }

func NewReminderRepo(pool *pgxpool.Pool) *reminderRepo {
	return &reminderRepo{pool: pool}
}

func (r *reminderRepo) Save(ctx context.Context, tx repository.Tx, rem *model.MembershipReminder) error {
	const q = `
INSERT INTO membership_reminders (
  id, payment_id, member_id, reminder_type, method, sent_at
) VALUES (
  $1,$2,$3,$4,$5,$6
) ON CONFLICT (id) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, q, rem.ID, rem.PaymentID, rem.MemberID, rem.Type, rem.Method, rem.SentAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *reminderRepo) ListByPayment(ctx context.Context, tx repository.Tx, paymentID string) ([]*model.MembershipReminder, error) {
	const q = `SELECT id, payment_id, member_id, reminder_type, method, sent_at FROM membership_reminders WHERE payment_id=$1 ORDER BY sent_at;`
	rows, err := pickRows(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.MembershipReminder
	for rows.Next() {
		rem := &model.MembershipReminder{}
		if err := rows.Scan(&rem.ID, &rem.PaymentID, &rem.MemberID, &rem.Type, &rem.Method, &rem.SentAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}
