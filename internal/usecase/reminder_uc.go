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
var _ ReminderUseCase = (*reminderUC)(nil)

// ReminderUseCase records escalating reminders against overdue obligations.
// Delivery itself happens outside this service; the engine only selects the
// tier and appends the audit record.
type ReminderUseCase interface {
	// Send appends the next-tier reminder for an overdue payment and bumps the
	// payment's reminder bookkeeping. Fails with ErrInvalidState unless the
	// payment is overdue.
	Send(ctx context.Context, paymentID string, method model.ReminderMethod) (*model.MembershipReminder, error)

	History(ctx context.Context, paymentID string) ([]*model.MembershipReminder, error)
}

type reminderUC struct {
	payments    repository.PaymentRepository
	memberships repository.MembershipRepository
	reminders   repository.ReminderRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewReminderUseCase(payments repository.PaymentRepository, memberships repository.MembershipRepository, reminders repository.ReminderRepository, tm repository.TransactionManager, logger *zerolog.Logger) *reminderUC {
	ucLog := logger.With().Str("component", "ReminderUC").Logger()
	return &reminderUC{payments: payments, memberships: memberships, reminders: reminders, tm: tm, log: &ucLog}
}

func (uc *reminderUC) Send(ctx context.Context, paymentID string, method model.ReminderMethod) (*model.MembershipReminder, error) {
	// Unlocked read only routes the lock; the overdue check runs on the
	// re-read so a settlement committing first makes this fail, not append.
	routed, err := uc.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, err
	}

	var out *model.MembershipReminder
	var tier model.ReminderType
	err = uc.tm.WithMembershipTx(ctx, routed.MembershipID, func(ctx context.Context, tx repository.Tx) error {
		p, err := uc.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != model.PaymentStatusOverdue {
			return domain.ErrInvalidState
		}
		m, err := uc.memberships.FindByID(ctx, tx, p.MembershipID)
		if err != nil {
			return err
		}

		now := time.Now()
		tier = model.ReminderTierFor(p.ReminderCount)
		r, err := model.NewMembershipReminder(uuid.NewString(), p.ID, m.MemberID, tier, now, method)
		if err != nil {
			return err
		}
		if err := uc.reminders.Save(ctx, tx, r); err != nil {
			return err
		}
		p.ReminderCount++
		p.LastReminderAt = &now
		p.UpdatedAt = now
		if err := uc.payments.Save(ctx, tx, p); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("payment_id", paymentID).Str("tier", string(tier)).Msg("reminder recorded")
	return out, nil
}

func (uc *reminderUC) History(ctx context.Context, paymentID string) ([]*model.MembershipReminder, error) {
	return uc.reminders.ListByPayment(ctx, repository.NoTX, paymentID)
}
