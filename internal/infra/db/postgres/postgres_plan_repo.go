package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planCols = `id, name, price_cents, currency, billing_interval, interval_count, trial_days, max_freezes, active, created_at`

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.MembershipPlan) error {
	const q = `
INSERT INTO membership_plans (
  id, name, price_cents, currency, billing_interval, interval_count, trial_days, max_freezes, active, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  name=$2, price_cents=$3, currency=$4, billing_interval=$5, interval_count=$6, trial_days=$7, max_freezes=$8, active=$9;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.PriceCents, p.Currency, p.Interval, p.IntervalCount, p.TrialDays, p.MaxFreezes, p.Active, p.CreatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MembershipPlan, error) {
	const q = `SELECT ` + planCols + ` FROM membership_plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.MembershipPlan, error) {
	const q = `SELECT ` + planCols + ` FROM membership_plans WHERE active ORDER BY price_cents;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.MembershipPlan
	for rows.Next() {
		p := &model.MembershipPlan{}
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Currency, &p.Interval, &p.IntervalCount, &p.TrialDays, &p.MaxFreezes, &p.Active, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlan(row pgx.Row) (*model.MembershipPlan, error) {
	p := &model.MembershipPlan{}
	err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Currency, &p.Interval, &p.IntervalCount, &p.TrialDays, &p.MaxFreezes, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}
