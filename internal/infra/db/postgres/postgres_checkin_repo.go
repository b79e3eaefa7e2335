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

var _ repository.CheckInRepository = (*checkInRepo)(nil)

type checkInRepo struct{ pool *pgxpool.Pool }

func NewCheckInRepo(pool *pgxpool.Pool) *checkInRepo {
	return &checkInRepo{pool: pool}
}

const checkInCols = `id, member_id, membership_id, check_in_time, check_out_time, location, notes`

func (r *checkInRepo) Save(ctx context.Context, tx repository.Tx, c *model.MembershipCheckIn) error {
	const q = `
INSERT INTO membership_checkins (
  id, member_id, membership_id, check_in_time, check_out_time, location, notes
) VALUES (
  $1,$2,$3,$4,$5,$6,$7
) ON CONFLICT (id) DO UPDATE SET
  check_out_time=$5, notes=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.MemberID, c.MembershipID, c.CheckInTime, c.CheckOutTime, c.Location, c.Notes)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *checkInRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MembershipCheckIn, error) {
	q := `SELECT ` + checkInCols + ` FROM membership_checkins WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCheckIn(row)
}

func (r *checkInRepo) FindOpenByMembership(ctx context.Context, tx repository.Tx, membershipID string) (*model.MembershipCheckIn, error) {
	q := `SELECT ` + checkInCols + ` FROM membership_checkins WHERE membership_id=$1 AND check_out_time IS NULL ORDER BY check_in_time DESC LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, membershipID)
	if err != nil {
		return nil, err
	}
	return scanCheckIn(row)
}

// CountByMembership counts visits in [from, until); zero bounds are open-ended.
func (r *checkInRepo) CountByMembership(ctx context.Context, tx repository.Tx, membershipID string, from, until time.Time) (int, error) {
	q := `SELECT COUNT(*) FROM membership_checkins WHERE membership_id=$1`
	args := []interface{}{membershipID}
	if !from.IsZero() {
		args = append(args, from)
		q += ` AND check_in_time >= $2`
	}
	if !until.IsZero() {
		args = append(args, until)
		if len(args) == 3 {
			q += ` AND check_in_time < $3`
		} else {
			q += ` AND check_in_time < $2`
		}
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *checkInRepo) CountOpen(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM membership_checkins WHERE check_out_time IS NULL;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func scanCheckIn(row pgx.Row) (*model.MembershipCheckIn, error) {
	c := &model.MembershipCheckIn{}
	err := row.Scan(&c.ID, &c.MemberID, &c.MembershipID, &c.CheckInTime, &c.CheckOutTime, &c.Location, &c.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}
