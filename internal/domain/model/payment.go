package model

import (
	"time"

	"gym-membership-service/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // obligation generated, not yet settled
	PaymentStatusPaid    PaymentStatus = "paid"    // settled; terminal
	PaymentStatusOverdue PaymentStatus = "overdue" // past due date, still collectible
	PaymentStatusFailed  PaymentStatus = "failed"  // collection failed; terminal
)

// MembershipPayment is a single billing-cycle obligation, created by the
// billing generator and tracked to settlement. Never deleted, only transitioned.
type MembershipPayment struct {
	ID           string // UUID
	MembershipID string
	AmountCents  int64
	Currency     string
	DueDate      time.Time
	Status       PaymentStatus
	PaidAt       *time.Time
	FailureReason *string

	ReminderCount  int
	LastReminderAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMembershipPayment creates a pending obligation priced from the plan.
func NewMembershipPayment(id string, membershipID string, plan *MembershipPlan, dueDate time.Time) (*MembershipPayment, error) {
	if id == "" || membershipID == "" || plan.IsZero() || dueDate.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &MembershipPayment{
		ID:           id,
		MembershipID: membershipID,
		AmountCents:  plan.PriceCents,
		Currency:     plan.Currency,
		DueDate:      dueDate,
		Status:       PaymentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// MarkPaid settles the obligation. Idempotent: settling an already-paid
// payment is a no-op success so retries are safe.
func (p *MembershipPayment) MarkPaid(now time.Time) error {
	switch p.Status {
	case PaymentStatusPaid:
		return nil
	case PaymentStatusPending, PaymentStatusOverdue:
		p.Status = PaymentStatusPaid
		p.PaidAt = &now
		p.UpdatedAt = now
		return nil
	default:
		return domain.ErrInvalidState
	}
}

// MarkOverdue flips a pending obligation past its due date to overdue.
func (p *MembershipPayment) MarkOverdue(now time.Time) error {
	if p.Status != PaymentStatusPending {
		return domain.ErrInvalidState
	}
	if !now.After(p.DueDate) {
		return domain.ErrInvalidState
	}
	p.Status = PaymentStatusOverdue
	p.UpdatedAt = now
	return nil
}

// MarkFailed records a collection failure. A failed payment is not retried;
// any new obligation is a separate record.
func (p *MembershipPayment) MarkFailed(now time.Time, reason string) error {
	if p.Status != PaymentStatusPending && p.Status != PaymentStatusOverdue {
		return domain.ErrInvalidState
	}
	p.Status = PaymentStatusFailed
	if reason != "" {
		p.FailureReason = &reason
	}
	p.UpdatedAt = now
	return nil
}
