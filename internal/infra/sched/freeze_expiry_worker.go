package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gym-membership-service/internal/domain/ports/repository"
	"gym-membership-service/internal/infra/metrics"
	"gym-membership-service/internal/usecase"
)

// FreezeExpiryWorker reactivates frozen memberships whose freeze window has
// elapsed.
type FreezeExpiryWorker struct {
	interval    time.Duration
	memberships repository.MembershipRepository
	freezeUC    usecase.FreezeUseCase
	log         *zerolog.Logger
}

func NewFreezeExpiryWorker(interval time.Duration, memberships repository.MembershipRepository, freezeUC usecase.FreezeUseCase, logger *zerolog.Logger) *FreezeExpiryWorker {
	compLog := logger.With().Str("component", "FreezeExpiryWorker").Logger()
	return &FreezeExpiryWorker{
		interval:    interval,
		memberships: memberships,
		freezeUC:    freezeUC,
		log:         &compLog,
	}
}

func (w *FreezeExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting freeze expiry worker")
	w.runCheck(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping freeze expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

func (w *FreezeExpiryWorker) runCheck(ctx context.Context) {
	now := time.Now().UTC()
	frozen, err := w.memberships.FindFrozen(ctx, repository.NoTX)
	if err != nil {
		w.log.Error().Err(err).Msg("frozen membership query failed")
		return
	}

	expired := 0
	for _, m := range frozen {
		freezes, err := w.freezeUC.List(ctx, m.ID)
		if err != nil {
			w.log.Error().Err(err).Str("membership_id", m.ID).Msg("freeze lookup failed")
			continue
		}
		// Stay frozen while any window is still running or upcoming.
		pending := false
		for _, f := range freezes {
			if f.EndDate.After(now) {
				pending = true
				break
			}
		}
		if pending {
			continue
		}
		if _, err := w.freezeUC.Unfreeze(ctx, m.ID); err != nil {
			w.log.Error().Err(err).Str("membership_id", m.ID).Msg("auto-unfreeze failed")
			continue
		}
		expired++
	}
	if expired > 0 {
		metrics.IncFreezesExpired(expired)
		w.log.Info().Int("count", expired).Msg("elapsed freezes reactivated")
	}
}
