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
var _ MembershipUseCase = (*membershipUC)(nil)

// MembershipUseCase owns membership creation and every status transition that
// is not freeze bookkeeping (see FreezeUseCase for those).
type MembershipUseCase interface {
	Create(ctx context.Context, memberID, planID string, startDate time.Time, autoRenew bool) (*model.Membership, error)
	Get(ctx context.Context, id string) (*model.Membership, error)
	ListByMember(ctx context.Context, memberID string) ([]*model.Membership, error)

	Suspend(ctx context.Context, id, reason, actor string) (*model.Membership, error)
	Reactivate(ctx context.Context, id string) (*model.Membership, error)
	Blacklist(ctx context.Context, id, reason, actor string) (*model.Membership, error)
	Cancel(ctx context.Context, id, reason string) (*model.Membership, error)
}

type membershipUC struct {
	memberships repository.MembershipRepository
	plans       repository.PlanRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewMembershipUseCase(memberships repository.MembershipRepository, plans repository.PlanRepository, tm repository.TransactionManager, logger *zerolog.Logger) *membershipUC {
	ucLog := logger.With().Str("component", "MembershipUC").Logger()
	return &membershipUC{memberships: memberships, plans: plans, tm: tm, log: &ucLog}
}

func (uc *membershipUC) Create(ctx context.Context, memberID, planID string, startDate time.Time, autoRenew bool) (*model.Membership, error) {
	plan, err := uc.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, domain.ErrInvalidState
	}
	m, err := model.NewMembership(uuid.NewString(), memberID, plan, startDate, autoRenew)
	if err != nil {
		return nil, err
	}
	if err := uc.memberships.Save(ctx, repository.NoTX, m); err != nil {
		return nil, err
	}
	uc.log.Info().Str("membership_id", m.ID).Str("member_id", memberID).Str("plan_id", planID).Msg("membership created")
	return m, nil
}

func (uc *membershipUC) Get(ctx context.Context, id string) (*model.Membership, error) {
	return uc.memberships.FindByID(ctx, repository.NoTX, id)
}

func (uc *membershipUC) ListByMember(ctx context.Context, memberID string) ([]*model.Membership, error) {
	return uc.memberships.FindByMember(ctx, repository.NoTX, memberID)
}

func (uc *membershipUC) Suspend(ctx context.Context, id, reason, actor string) (*model.Membership, error) {
	return uc.transition(ctx, id, model.MembershipStatusSuspended, model.TransitionMeta{Reason: reason, Actor: actor})
}

func (uc *membershipUC) Reactivate(ctx context.Context, id string) (*model.Membership, error) {
	return uc.transition(ctx, id, model.MembershipStatusActive, model.TransitionMeta{})
}

func (uc *membershipUC) Blacklist(ctx context.Context, id, reason, actor string) (*model.Membership, error) {
	return uc.transition(ctx, id, model.MembershipStatusBlacklisted, model.TransitionMeta{Reason: reason, Actor: actor})
}

func (uc *membershipUC) Cancel(ctx context.Context, id, reason string) (*model.Membership, error) {
	return uc.transition(ctx, id, model.MembershipStatusCancelled, model.TransitionMeta{Reason: reason})
}

// transition re-reads the membership under the per-membership lock so two
// concurrent conflicting requests resolve to one success and one
// ErrInvalidTransition.
func (uc *membershipUC) transition(ctx context.Context, id string, target model.MembershipStatus, meta model.TransitionMeta) (*model.Membership, error) {
	var out *model.Membership
	err := uc.tm.WithMembershipTx(ctx, id, func(ctx context.Context, tx repository.Tx) error {
		m, err := uc.memberships.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := m.Transition(target, meta); err != nil {
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
	uc.log.Info().Str("membership_id", id).Str("status", string(target)).Msg("membership transitioned")
	return out, nil
}
