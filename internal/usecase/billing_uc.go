package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

// Compile-time check
var _ BillingUseCase = (*billingUC)(nil)

// BillingUseCase generates recurring payment obligations and tracks them to
// settlement.
//
// Frozen time defers billing: the next due date advances one plan interval
// from the latest of the membership start, the last obligation's due date and
// the end of the most recent freeze, so a member never pays for frozen time.
type BillingUseCase interface {
	// GenerateNextObligation creates the next pending obligation for an active
	// membership whose billing date has arrived, and advances NextBillingDate.
	// Returns ErrInvalidState while the membership is frozen.
	GenerateNextObligation(ctx context.Context, membershipID string, now time.Time) (*model.MembershipPayment, error)

	MarkPaid(ctx context.Context, paymentID string) (*model.MembershipPayment, error)
	MarkFailed(ctx context.Context, paymentID, reason string) (*model.MembershipPayment, error)

	// SweepOverdue flips pending obligations past due to overdue. Each payment
	// is evaluated independently; one failure never blocks the sweep.
	SweepOverdue(ctx context.Context, now time.Time) (int, error)

	ListByMembership(ctx context.Context, membershipID string) ([]*model.MembershipPayment, error)
}

type billingUC struct {
	memberships repository.MembershipRepository
	plans       repository.PlanRepository
	payments    repository.PaymentRepository
	freezes     repository.FreezeRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewBillingUseCase(memberships repository.MembershipRepository, plans repository.PlanRepository, payments repository.PaymentRepository, freezes repository.FreezeRepository, tm repository.TransactionManager, logger *zerolog.Logger) *billingUC {
	ucLog := logger.With().Str("component", "BillingUC").Logger()
	return &billingUC{memberships: memberships, plans: plans, payments: payments, freezes: freezes, tm: tm, log: &ucLog}
}

func (uc *billingUC) GenerateNextObligation(ctx context.Context, membershipID string, now time.Time) (*model.MembershipPayment, error) {
	var out *model.MembershipPayment
	err := uc.tm.WithMembershipTx(ctx, membershipID, func(ctx context.Context, tx repository.Tx) error {
		m, err := uc.memberships.FindByID(ctx, tx, membershipID)
		if err != nil {
			return err
		}
		if m.Status == model.MembershipStatusFrozen {
			return domain.ErrInvalidState
		}
		if m.Status != model.MembershipStatusActive {
			return domain.ErrInvalidState
		}
		// Re-checked under the lock so a concurrent or repeated run is a no-op.
		if m.NextBillingDate == nil || m.NextBillingDate.After(now) {
			return domain.ErrInvalidState
		}

		plan, err := uc.plans.FindByID(ctx, tx, m.PlanID)
		if err != nil {
			return err
		}

		due, err := uc.nextDueDate(ctx, tx, m, plan)
		if err != nil {
			return err
		}

		p, err := model.NewMembershipPayment(uuid.NewString(), m.ID, plan, due)
		if err != nil {
			return err
		}
		if err := uc.payments.Save(ctx, tx, p); err != nil {
			return err
		}
		m.NextBillingDate = &due
		m.UpdatedAt = now
		if err := uc.memberships.Save(ctx, tx, m); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("membership_id", membershipID).Time("due", out.DueDate).Msg("obligation generated")
	return out, nil
}

// nextDueDate advances one plan interval from the latest of the membership
// start, the last obligation's due date and the most recent freeze end.
func (uc *billingUC) nextDueDate(ctx context.Context, tx repository.Tx, m *model.Membership, plan *model.MembershipPlan) (time.Time, error) {
	last, err := uc.payments.FindLastByMembership(ctx, tx, m.ID)
	if err != nil && err != domain.ErrNotFound {
		return time.Time{}, err
	}
	if last == nil {
		// First obligation; the trial window is already folded into the
		// membership's initial NextBillingDate.
		return *m.NextBillingDate, nil
	}

	base := last.DueDate
	if base.Before(m.StartDate) {
		base = m.StartDate
	}
	freezes, err := uc.freezes.ListByMembership(ctx, tx, m.ID)
	if err != nil {
		return time.Time{}, err
	}
	for _, f := range freezes {
		if f.EndDate.After(base) {
			base = f.EndDate
		}
	}
	return plan.NextDueDate(base), nil
}

// settle re-reads the payment under the membership lock and applies mutate to
// the fresh row, so a state decided on a stale copy can never clobber a
// concurrent settlement.
func (uc *billingUC) settle(ctx context.Context, paymentID string, mutate func(p *model.MembershipPayment) error) (*model.MembershipPayment, error) {
	// Unlocked read only routes the lock; state is decided on the re-read.
	routed, err := uc.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, err
	}
	var out *model.MembershipPayment
	err = uc.tm.WithMembershipTx(ctx, routed.MembershipID, func(ctx context.Context, tx repository.Tx) error {
		p, err := uc.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if err := mutate(p); err != nil {
			return err
		}
		if err := uc.payments.Save(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *billingUC) MarkPaid(ctx context.Context, paymentID string) (*model.MembershipPayment, error) {
	p, err := uc.settle(ctx, paymentID, func(p *model.MembershipPayment) error {
		return p.MarkPaid(time.Now())
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("payment_id", paymentID).Msg("payment settled")
	return p, nil
}

func (uc *billingUC) MarkFailed(ctx context.Context, paymentID, reason string) (*model.MembershipPayment, error) {
	p, err := uc.settle(ctx, paymentID, func(p *model.MembershipPayment) error {
		return p.MarkFailed(time.Now(), reason)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Str("payment_id", paymentID).Str("reason", reason).Msg("payment failed")
	return p, nil
}

func (uc *billingUC) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	due, err := uc.payments.FindPendingDueBefore(ctx, repository.NoTX, now)
	if err != nil {
		return 0, err
	}
	flipped := 0
	for _, stale := range due {
		_, err := uc.settle(ctx, stale.ID, func(p *model.MembershipPayment) error {
			return p.MarkOverdue(now)
		})
		switch {
		case err == nil:
			flipped++
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNotFound):
			// Settled or removed since the scan; keep sweeping.
		default:
			uc.log.Error().Err(err).Str("payment_id", stale.ID).Msg("overdue sweep save failed")
		}
	}
	return flipped, nil
}

func (uc *billingUC) ListByMembership(ctx context.Context, membershipID string) ([]*model.MembershipPayment, error) {
	return uc.payments.ListByMembership(ctx, repository.NoTX, membershipID)
}
