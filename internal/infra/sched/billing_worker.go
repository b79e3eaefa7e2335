package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/ports/repository"
	red "gym-membership-service/internal/infra/redis"
	"gym-membership-service/internal/usecase"
)

// BillingWorker periodically generates the next payment obligation for every
// active membership whose billing date has arrived. A Redis cycle lock keeps
// replicas from billing the same batch twice; locker may be nil in tests.
type BillingWorker struct {
	interval    time.Duration
	memberships repository.MembershipRepository
	billingUC   usecase.BillingUseCase
	locker      red.Locker
	log         *zerolog.Logger
}

func NewBillingWorker(interval time.Duration, memberships repository.MembershipRepository, billingUC usecase.BillingUseCase, locker red.Locker, logger *zerolog.Logger) *BillingWorker {
	compLog := logger.With().Str("component", "BillingWorker").Logger()
	return &BillingWorker{
		interval:    interval,
		memberships: memberships,
		billingUC:   billingUC,
		locker:      locker,
		log:         &compLog,
	}
}

func (w *BillingWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting billing worker")
	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping billing worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *BillingWorker) runCycle(ctx context.Context) {
	if w.locker != nil {
		key := red.WorkerLockKey("billing")
		token, err := w.locker.TryLock(ctx, key, w.interval)
		if err != nil {
			if errors.Is(err, domain.ErrLockNotAcquired) {
				w.log.Debug().Msg("another replica holds the billing cycle lock")
				return
			}
			w.log.Error().Err(err).Msg("billing cycle lock failed")
			return
		}
		defer func() { _ = w.locker.Unlock(ctx, key, token) }()
	}

	now := time.Now().UTC()
	due, err := w.memberships.FindBillable(ctx, repository.NoTX, now)
	if err != nil {
		w.log.Error().Err(err).Msg("billing cycle query failed")
		return
	}

	generated := 0
	for _, m := range due {
		if _, err := w.billingUC.GenerateNextObligation(ctx, m.ID, now); err != nil {
			// A concurrent freeze or payment between the query and the
			// per-membership transaction is expected, not an error.
			if errors.Is(err, domain.ErrInvalidState) {
				continue
			}
			w.log.Error().Err(err).Str("membership_id", m.ID).Msg("obligation generation failed")
			continue
		}
		generated++
	}
	if generated > 0 {
		w.log.Info().Int("count", generated).Msg("payment obligations generated")
	}
}
