package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

var _ repository.FreezeRepository = (*freezeRepo)(nil)

type freezeRepo struct{ pool *pgxpool.Pool }

func NewFreezeRepo(pool *pgxpool.Pool) *freezeRepo {
	return &freezeRepo{pool: pool}
}

func (r *freezeRepo) Save(ctx context.Context, tx repository.Tx, f *model.MembershipFreeze) error {
	const q = `
INSERT INTO membership_freezes (
  id, membership_id, start_date, end_date, reason, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6
) ON CONFLICT (id) DO UPDATE SET
  start_date=$3, end_date=$4, reason=$5;`

	_, err := execSQL(ctx, r.pool, tx, q, f.ID, f.MembershipID, f.StartDate, f.EndDate, f.Reason, f.CreatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *freezeRepo) ListByMembership(ctx context.Context, tx repository.Tx, membershipID string) ([]*model.MembershipFreeze, error) {
	const q = `SELECT id, membership_id, start_date, end_date, reason, created_at FROM membership_freezes WHERE membership_id=$1 ORDER BY start_date;`
	rows, err := pickRows(ctx, r.pool, tx, q, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.MembershipFreeze
	for rows.Next() {
		f := &model.MembershipFreeze{}
		if err := rows.Scan(&f.ID, &f.MembershipID, &f.StartDate, &f.EndDate, &f.Reason, &f.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *freezeRepo) CountByMembership(ctx context.Context, tx repository.Tx, membershipID string) (int, error) {
	const q = `SELECT COUNT(*) FROM membership_freezes WHERE membership_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, membershipID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
