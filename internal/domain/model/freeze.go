package model

import (
	"time"

	"gym-membership-service/internal/domain"
)

// MembershipFreeze is a time-bounded pause of a membership. Lapsed freezes are
// kept as history; whether a freeze is "current" is derived, never stored.
type MembershipFreeze struct {
	ID           string // UUID
	MembershipID string
	StartDate    time.Time
	EndDate      time.Time
	Reason       *string
	CreatedAt    time.Time
}

// NewMembershipFreeze validates the window and constructs a freeze record.
func NewMembershipFreeze(id, membershipID string, start, end time.Time, reason string) (*MembershipFreeze, error) {
	if id == "" || membershipID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !end.After(start) {
		return nil, domain.ErrInvalidWindow
	}
	f := &MembershipFreeze{
		ID:           id,
		MembershipID: membershipID,
		StartDate:    start,
		EndDate:      end,
		CreatedAt:    time.Now(),
	}
	if reason != "" {
		f.Reason = &reason
	}
	return f, nil
}

// ActiveAt reports whether the freeze window contains t (bounds inclusive).
func (f *MembershipFreeze) ActiveAt(t time.Time) bool {
	return !t.Before(f.StartDate) && !t.After(f.EndDate)
}

// Overlaps reports whether the window [start, end] intersects this freeze.
func (f *MembershipFreeze) Overlaps(start, end time.Time) bool {
	return !start.After(f.EndDate) && !end.Before(f.StartDate)
}

// CurrentFreeze returns the freeze whose window contains now, or nil. With the
// overlap rule enforced at most one can match; the tie-break picks the most
// recently created so the answer stays deterministic on bad data.
func CurrentFreeze(freezes []*MembershipFreeze, now time.Time) *MembershipFreeze {
	var current *MembershipFreeze
	for _, f := range freezes {
		if !f.ActiveAt(now) {
			continue
		}
		if current == nil || f.CreatedAt.After(current.CreatedAt) {
			current = f
		}
	}
	return current
}
