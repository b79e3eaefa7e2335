package usecase

import (
	"context"
	"time"

	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// Stats is the admin dashboard aggregate.
type Stats struct {
	MembershipsByStatus map[model.MembershipStatus]int
	PaymentsByStatus    map[model.PaymentStatus]int
	OpenCheckIns        int
	RevenueCentsMonth   int64
}

type StatsUseCase interface {
	Collect(ctx context.Context) (*Stats, error)
}

type statsUC struct {
	memberships repository.MembershipRepository
	payments    repository.PaymentRepository
	checkins    repository.CheckInRepository
}

func NewStatsUseCase(memberships repository.MembershipRepository, payments repository.PaymentRepository, checkins repository.CheckInRepository) *statsUC {
	return &statsUC{memberships: memberships, payments: payments, checkins: checkins}
}

func (uc *statsUC) Collect(ctx context.Context) (*Stats, error) {
	byStatus, err := uc.memberships.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	payByStatus, err := uc.payments.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	open, err := uc.checkins.CountOpen(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	revenue, err := uc.payments.SumPaidSince(ctx, repository.NoTX, monthStart)
	if err != nil {
		return nil, err
	}
	return &Stats{
		MembershipsByStatus: byStatus,
		PaymentsByStatus:    payByStatus,
		OpenCheckIns:        open,
		RevenueCentsMonth:   revenue,
	}, nil
}
