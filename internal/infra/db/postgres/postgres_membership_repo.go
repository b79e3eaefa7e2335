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

var _ repository.MembershipRepository = (*membershipRepo)(nil)

type membershipRepo struct{ pool *pgxpool.Pool }

func NewMembershipRepo(pool *pgxpool.Pool) *membershipRepo {
	return &membershipRepo{pool: pool}
}

const membershipCols = `id, member_id, plan_id, status, start_date, end_date, next_billing_date, auto_renew, cancelled_reason, suspended_reason, suspended_by, blacklisted_reason, blacklisted_by, last_check_in_at, created_at, updated_at`

func (r *membershipRepo) Save(ctx context.Context, tx repository.Tx, m *model.Membership) error {
	const q = `
INSERT INTO memberships (
  id, member_id, plan_id, status, start_date, end_date, next_billing_date, auto_renew, cancelled_reason, suspended_reason, suspended_by, blacklisted_reason, blacklisted_by, last_check_in_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
) ON CONFLICT (id) DO UPDATE SET
  status=$4, end_date=$6, next_billing_date=$7, auto_renew=$8, cancelled_reason=$9, suspended_reason=$10, suspended_by=$11, blacklisted_reason=$12, blacklisted_by=$13, last_check_in_at=$14, updated_at=$16;`

	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.MemberID, m.PlanID, m.Status, m.StartDate, m.EndDate, m.NextBillingDate, m.AutoRenew, m.CancelledReason, m.SuspendedReason, m.SuspendedBy, m.BlacklistedReason, m.BlacklistedBy, m.LastCheckInAt, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *membershipRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Membership, error) {
	q := `SELECT ` + membershipCols + ` FROM memberships WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanMembership(row)
}

func (r *membershipRepo) FindByMember(ctx context.Context, tx repository.Tx, memberID string) ([]*model.Membership, error) {
	q := `SELECT ` + membershipCols + ` FROM memberships WHERE member_id=$1 ORDER BY created_at;`
	rows, err := pickRows(ctx, r.pool, tx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func (r *membershipRepo) FindBillable(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.Membership, error) {
	q := `SELECT ` + membershipCols + ` FROM memberships WHERE status='active' AND next_billing_date IS NOT NULL AND next_billing_date <= $1 ORDER BY next_billing_date;`
	rows, err := pickRows(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func (r *membershipRepo) FindFrozen(ctx context.Context, tx repository.Tx) ([]*model.Membership, error) {
	q := `SELECT ` + membershipCols + ` FROM memberships WHERE status='frozen' ORDER BY created_at;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func (r *membershipRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.MembershipStatus]int, error) {
	q := `SELECT status, COUNT(*) FROM memberships GROUP BY status;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[model.MembershipStatus]int{}
	for rows.Next() {
		var status model.MembershipStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	return out, rows.Err()
}

func scanMembership(row pgx.Row) (*model.Membership, error) {
	m := &model.Membership{}
	err := row.Scan(&m.ID, &m.MemberID, &m.PlanID, &m.Status, &m.StartDate, &m.EndDate, &m.NextBillingDate, &m.AutoRenew, &m.CancelledReason, &m.SuspendedReason, &m.SuspendedBy, &m.BlacklistedReason, &m.BlacklistedBy, &m.LastCheckInAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}

func collectMemberships(rows pgx.Rows) ([]*model.Membership, error) {
	var out []*model.Membership
	for rows.Next() {
		m := &model.Membership{}
		if err := rows.Scan(&m.ID, &m.MemberID, &m.PlanID, &m.Status, &m.StartDate, &m.EndDate, &m.NextBillingDate, &m.AutoRenew, &m.CancelledReason, &m.SuspendedReason, &m.SuspendedBy, &m.BlacklistedReason, &m.BlacklistedBy, &m.LastCheckInAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
