package model

import (
	"time"

	"gym-membership-service/internal/domain"
)

type MembershipStatus string

const (
	MembershipStatusActive      MembershipStatus = "active"
	MembershipStatusFrozen      MembershipStatus = "frozen"
	MembershipStatusCancelled   MembershipStatus = "cancelled"
	MembershipStatusSuspended   MembershipStatus = "suspended"
	MembershipStatusBlacklisted MembershipStatus = "blacklisted"
)

// Membership represents a member's subscription to a plan and its lifecycle status.
type Membership struct {
	ID       string // UUID
	MemberID string // UUID of owning member
	PlanID   string // UUID of plan

	Status          MembershipStatus
	StartDate       time.Time // immutable once set
	EndDate         *time.Time
	NextBillingDate *time.Time
	AutoRenew       bool

	CancelledReason   *string
	SuspendedReason   *string
	SuspendedBy       *string
	BlacklistedReason *string
	BlacklistedBy     *string

	LastCheckInAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMembership creates a membership in the initial active status.
func NewMembership(id, memberID string, plan *MembershipPlan, startDate time.Time, autoRenew bool) (*Membership, error) {
	if id == "" || memberID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	if startDate.IsZero() {
		startDate = now
	}
	m := &Membership{
		ID:        id,
		MemberID:  memberID,
		PlanID:    plan.ID,
		Status:    MembershipStatusActive,
		StartDate: startDate,
		AutoRenew: autoRenew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	first := plan.FirstBillingDate(startDate)
	m.NextBillingDate = &first
	return m, nil
}

// TransitionMeta carries the actor and reason attached to a status change.
type TransitionMeta struct {
	Reason string
	Actor  string
}

// legalTransitions enumerates every permitted (current -> target) pair.
// Blacklisting is only reachable from active; blacklisted is terminal.
var legalTransitions = map[MembershipStatus]map[MembershipStatus]bool{
	MembershipStatusActive: {
		MembershipStatusSuspended:   true,
		MembershipStatusFrozen:      true,
		MembershipStatusCancelled:   true,
		MembershipStatusBlacklisted: true,
	},
	MembershipStatusFrozen: {
		MembershipStatusActive: true,
	},
	MembershipStatusSuspended: {
		MembershipStatusActive: true,
	},
	MembershipStatusCancelled: {
		MembershipStatusActive: true,
	},
	MembershipStatusBlacklisted: {},
}

// CanTransition reports whether the status change is in the legal table.
func (m *Membership) CanTransition(target MembershipStatus) bool {
	return legalTransitions[m.Status][target]
}

// Transition validates and applies a status change in place. Suspension and
// blacklisting require a reason; reactivation clears the reason fields of the
// status being left. The caller is responsible for persisting the result.
func (m *Membership) Transition(target MembershipStatus, meta TransitionMeta) error {
	if !m.CanTransition(target) {
		return domain.ErrInvalidTransition
	}

	switch target {
	case MembershipStatusSuspended, MembershipStatusBlacklisted:
		if meta.Reason == "" {
			return domain.ErrMissingReason
		}
	}

	now := time.Now()
	switch target {
	case MembershipStatusSuspended:
		m.SuspendedReason = &meta.Reason
		if meta.Actor != "" {
			m.SuspendedBy = &meta.Actor
		}
	case MembershipStatusBlacklisted:
		m.BlacklistedReason = &meta.Reason
		if meta.Actor != "" {
			m.BlacklistedBy = &meta.Actor
		}
	case MembershipStatusCancelled:
		if meta.Reason != "" {
			m.CancelledReason = &meta.Reason
		}
		m.EndDate = &now
	case MembershipStatusActive:
		// Reactivation drops the stale reason for the status being left.
		switch m.Status {
		case MembershipStatusSuspended:
			m.SuspendedReason = nil
			m.SuspendedBy = nil
		case MembershipStatusCancelled:
			m.CancelledReason = nil
			m.EndDate = nil
		}
	}

	m.Status = target
	m.UpdatedAt = now
	return nil
}

// IsActive reports whether the membership currently grants facility access.
func (m *Membership) IsActive() bool { return m.Status == MembershipStatusActive }
