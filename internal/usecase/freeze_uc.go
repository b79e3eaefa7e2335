package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

// Compile-time check
var _ FreezeUseCase = (*freezeUC)(nil)

// FreezeUseCase schedules and ends membership freezes. A freeze record is
// never deleted or truncated: ending early only transitions the membership
// back to active and leaves the window as history.
type FreezeUseCase interface {
	Schedule(ctx context.Context, membershipID string, start, end time.Time, reason string) (*model.MembershipFreeze, error)
	Unfreeze(ctx context.Context, membershipID string) (*model.Membership, error)
	List(ctx context.Context, membershipID string) ([]*model.MembershipFreeze, error)
	Current(ctx context.Context, membershipID string, now time.Time) (*model.MembershipFreeze, error)
}

type freezeUC struct {
	memberships repository.MembershipRepository
	plans       repository.PlanRepository
	freezes     repository.FreezeRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewFreezeUseCase(memberships repository.MembershipRepository, plans repository.PlanRepository, freezes repository.FreezeRepository, tm repository.TransactionManager, logger *zerolog.Logger) *freezeUC {
	ucLog := logger.With().Str("component", "FreezeUC").Logger()
	return &freezeUC{memberships: memberships, plans: plans, freezes: freezes, tm: tm, log: &ucLog}
}

// Schedule validates the window, quota and overlap rules, records the freeze
// and moves the membership to frozen, all under the per-membership lock.
func (uc *freezeUC) Schedule(ctx context.Context, membershipID string, start, end time.Time, reason string) (*model.MembershipFreeze, error) {
	var out *model.MembershipFreeze
	err := uc.tm.WithMembershipTx(ctx, membershipID, func(ctx context.Context, tx repository.Tx) error {
		m, err := uc.memberships.FindByID(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if m.Status != model.MembershipStatusActive {
			return domain.ErrInvalidState
		}

		f, err := model.NewMembershipFreeze(uuid.NewString(), membershipID, start, end, reason)
		if err != nil {
			return err
		}

		plan, err := uc.plans.FindByID(ctx, tx, m.PlanID)
		if err != nil {
			return err
		}
		existing, err := uc.freezes.ListByMembership(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if len(existing) >= plan.MaxFreezes {
			return domain.ErrFreezeQuotaExceeded
		}
		for _, prev := range existing {
			if prev.Overlaps(start, end) {
				return domain.ErrOverlappingFreeze
			}
		}

		if err := uc.freezes.Save(ctx, tx, f); err != nil {
			return err
		}
		if err := m.Transition(model.MembershipStatusFrozen, model.TransitionMeta{}); err != nil {
			return err
		}
		if err := uc.memberships.Save(ctx, tx, m); err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("membership_id", membershipID).Time("start", start).Time("end", end).Msg("freeze scheduled")
	return out, nil
}

func (uc *freezeUC) Unfreeze(ctx context.Context, membershipID string) (*model.Membership, error) {
	var out *model.Membership
	err := uc.tm.WithMembershipTx(ctx, membershipID, func(ctx context.Context, tx repository.Tx) error {
		m, err := uc.memberships.FindByID(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if m.Status != model.MembershipStatusFrozen {
			return domain.ErrInvalidState
		}
		if err := m.Transition(model.MembershipStatusActive, model.TransitionMeta{}); err != nil {
			return err
		}
		if err := uc.memberships.Save(ctx, tx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("membership_id", membershipID).Msg("membership unfrozen")
	return out, nil
}

func (uc *freezeUC) List(ctx context.Context, membershipID string) ([]*model.MembershipFreeze, error) {
	return uc.freezes.ListByMembership(ctx, repository.NoTX, membershipID)
}

func (uc *freezeUC) Current(ctx context.Context, membershipID string, now time.Time) (*model.MembershipFreeze, error) {
	freezes, err := uc.freezes.ListByMembership(ctx, repository.NoTX, membershipID)
	if err != nil {
		return nil, err
	}
	return model.CurrentFreeze(freezes, now), nil
}
