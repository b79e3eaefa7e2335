package model

import (
	"time"

	"gym-membership-service/internal/domain"
)

type BillingInterval string

const (
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalYearly  BillingInterval = "yearly"
)

// MembershipPlan is read-mostly reference data. Already-generated payment
// obligations keep the price they were created with; editing a plan never
// rewrites history.
type MembershipPlan struct {
	ID            string
	Name          string
	PriceCents    int64 // minor units, avoids float drift
	Currency      string
	Interval      BillingInterval
	IntervalCount int
	TrialDays     int
	MaxFreezes    int
	Active        bool
	CreatedAt     time.Time
}

func (p *MembershipPlan) IsZero() bool { return p == nil || p.ID == "" }

// NewMembershipPlan validates and constructs a plan.
func NewMembershipPlan(id, name string, priceCents int64, currency string, interval BillingInterval, intervalCount, trialDays, maxFreezes int) (*MembershipPlan, error) {
	if id == "" || name == "" || priceCents <= 0 || currency == "" || intervalCount <= 0 || trialDays < 0 || maxFreezes < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if interval != BillingIntervalMonthly && interval != BillingIntervalYearly {
		return nil, domain.ErrInvalidArgument
	}
	return &MembershipPlan{
		ID:            id,
		Name:          name,
		PriceCents:    priceCents,
		Currency:      currency,
		Interval:      interval,
		IntervalCount: intervalCount,
		TrialDays:     trialDays,
		MaxFreezes:    maxFreezes,
		Active:        true,
		CreatedAt:     time.Now(),
	}, nil
}

// NextDueDate advances one billing interval from the given date.
func (p *MembershipPlan) NextDueDate(from time.Time) time.Time {
	switch p.Interval {
	case BillingIntervalYearly:
		return from.AddDate(p.IntervalCount, 0, 0)
	default:
		return from.AddDate(0, p.IntervalCount, 0)
	}
}

// FirstBillingDate returns when the first obligation of a membership started
// at `start` falls due, honoring the trial period.
func (p *MembershipPlan) FirstBillingDate(start time.Time) time.Time {
	if p.TrialDays > 0 {
		return start.AddDate(0, 0, p.TrialDays)
	}
	return p.NextDueDate(start)
}
