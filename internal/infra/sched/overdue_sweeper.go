package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gym-membership-service/internal/infra/metrics"
	"gym-membership-service/internal/usecase"
)

// OverdueSweeper flips pending obligations past their due date to overdue.
type OverdueSweeper struct {
	interval  time.Duration
	billingUC usecase.BillingUseCase
	log       *zerolog.Logger
}

func NewOverdueSweeper(interval time.Duration, billingUC usecase.BillingUseCase, logger *zerolog.Logger) *OverdueSweeper {
	compLog := logger.With().Str("component", "OverdueSweeper").Logger()
	return &OverdueSweeper{
		interval:  interval,
		billingUC: billingUC,
		log:       &compLog,
	}
}

func (w *OverdueSweeper) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting overdue sweeper")
	w.runSweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping overdue sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.runSweep(ctx)
		}
	}
}

func (w *OverdueSweeper) runSweep(ctx context.Context) {
	n, err := w.billingUC.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		w.log.Error().Err(err).Msg("overdue sweep failed")
	}
	if n > 0 {
		metrics.AddOverdueSwept(n)
		w.log.Info().Int("count", n).Msg("payments marked overdue")
	}
}
