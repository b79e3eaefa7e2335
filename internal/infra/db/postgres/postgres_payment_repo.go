package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentCols = `id, membership_id, amount_cents, currency, due_date, status, paid_at, failure_reason, reminder_count, last_reminder_at, created_at, updated_at`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.MembershipPayment) error {
	const q = `
INSERT INTO membership_payments (
  id, membership_id, amount_cents, currency, due_date, status, paid_at, failure_reason, reminder_count, last_reminder_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  status=$6, paid_at=$7, failure_reason=$8, reminder_count=$9, last_reminder_at=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.MembershipID, p.AmountCents, p.Currency, p.DueDate, p.Status, p.PaidAt, p.FailureReason, p.ReminderCount, p.LastReminderAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MembershipPayment, error) {
	q := `SELECT ` + paymentCols + ` FROM membership_payments WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) ListByMembership(ctx context.Context, tx repository.Tx, membershipID string) ([]*model.MembershipPayment, error) {
	q := `SELECT ` + paymentCols + ` FROM membership_payments WHERE membership_id=$1 ORDER BY due_date;`
	rows, err := pickRows(ctx, r.pool, tx, q, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepo) FindLastByMembership(ctx context.Context, tx repository.Tx, membershipID string) (*model.MembershipPayment, error) {
	q := `SELECT ` + paymentCols + ` FROM membership_payments WHERE membership_id=$1 ORDER BY due_date DESC LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, membershipID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindPendingDueBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.MembershipPayment, error) {
	q := `SELECT ` + paymentCols + ` FROM membership_payments WHERE status='pending' AND due_date < $1 ORDER BY due_date;`
	rows, err := pickRows(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.PaymentStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM membership_payments GROUP BY status;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[model.PaymentStatus]int{}
	for rows.Next() {
		var status model.PaymentStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *paymentRepo) SumPaidSince(ctx context.Context, tx repository.Tx, since time.Time) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount_cents),0) FROM membership_payments WHERE status='paid' AND paid_at >= $1;`
	row, err := pickRow(ctx, r.pool, tx, q, since)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func scanPayment(row pgx.Row) (*model.MembershipPayment, error) {
	p := &model.MembershipPayment{}
	err := row.Scan(&p.ID, &p.MembershipID, &p.AmountCents, &p.Currency, &p.DueDate, &p.Status, &p.PaidAt, &p.FailureReason, &p.ReminderCount, &p.LastReminderAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func collectPayments(rows pgx.Rows) ([]*model.MembershipPayment, error) {
	var out []*model.MembershipPayment
	for rows.Next() {
		p := &model.MembershipPayment{}
		if err := rows.Scan(&p.ID, &p.MembershipID, &p.AmountCents, &p.Currency, &p.DueDate, &p.Status, &p.PaidAt, &p.FailureReason, &p.ReminderCount, &p.LastReminderAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
