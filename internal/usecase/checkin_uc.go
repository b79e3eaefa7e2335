package usecase

import (
	"context"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

// Compile-time check
var _ CheckInUseCase = (*checkInUC)(nil)

// CheckInUseCase manages facility visit sessions: a membership must be active
// to check in and may have at most one open session at a time.
type CheckInUseCase interface {
	CheckIn(ctx context.Context, membershipID, location string) (*model.MembershipCheckIn, error)
	CheckOut(ctx context.Context, checkInID string) (*model.MembershipCheckIn, error)

	// VisitCount counts visits with check-in time in [from, until); zero times
	// mean unbounded on that side.
	VisitCount(ctx context.Context, membershipID string, from, until time.Time) (int, error)
}

type checkInUC struct {
	memberships repository.MembershipRepository
	checkins    repository.CheckInRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewCheckInUseCase(memberships repository.MembershipRepository, checkins repository.CheckInRepository, tm repository.TransactionManager, logger *zerolog.Logger) *checkInUC {
	ucLog := logger.With().Str("component", "CheckInUC").Logger()
	return &checkInUC{memberships: memberships, checkins: checkins, tm: tm, log: &ucLog}
}

func newCheckInID(now time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

func (uc *checkInUC) CheckIn(ctx context.Context, membershipID, location string) (*model.MembershipCheckIn, error) {
	var out *model.MembershipCheckIn
	err := uc.tm.WithMembershipTx(ctx, membershipID, func(ctx context.Context, tx repository.Tx) error {
		m, err := uc.memberships.FindByID(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if !m.IsActive() {
			return domain.ErrAccessDenied
		}
		if open, err := uc.checkins.FindOpenByMembership(ctx, tx, membershipID); err != nil && err != domain.ErrNotFound {
			return err
		} else if open != nil {
			return domain.ErrAlreadyCheckedIn
		}

		now := time.Now()
		c, err := model.NewMembershipCheckIn(newCheckInID(now), m.MemberID, m.ID, now, location)
		if err != nil {
			return err
		}
		if err := uc.checkins.Save(ctx, tx, c); err != nil {
			return err
		}
		m.LastCheckInAt = &now
		m.UpdatedAt = now
		if err := uc.memberships.Save(ctx, tx, m); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("membership_id", membershipID).Str("checkin_id", out.ID).Msg("checked in")
	return out, nil
}

func (uc *checkInUC) CheckOut(ctx context.Context, checkInID string) (*model.MembershipCheckIn, error) {
	c, err := uc.checkins.FindByID(ctx, repository.NoTX, checkInID)
	if err != nil {
		return nil, err
	}
	var out *model.MembershipCheckIn
	err = uc.tm.WithMembershipTx(ctx, c.MembershipID, func(ctx context.Context, tx repository.Tx) error {
		c, err := uc.checkins.FindByID(ctx, tx, checkInID)
		if err != nil {
			return err
		}
		if err := c.Close(time.Now()); err != nil {
			return err
		}
		if err := uc.checkins.Save(ctx, tx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("checkin_id", checkInID).Msg("checked out")
	return out, nil
}

func (uc *checkInUC) VisitCount(ctx context.Context, membershipID string, from, until time.Time) (int, error) {
	return uc.checkins.CountByMembership(ctx, repository.NoTX, membershipID, from, until)
}
