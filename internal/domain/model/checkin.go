package model

import (
	"time"

	"gym-membership-service/internal/domain"
)

// MembershipCheckIn records a single facility visit. The session is open while
// CheckOutTime is unset; a membership has at most one open session at a time.
type MembershipCheckIn struct {
	ID           string // ULID, lexically ordered by check-in time
	MemberID     string
	MembershipID string
	CheckInTime  time.Time
	CheckOutTime *time.Time
	Location     *string
	Notes        *string
}

func NewMembershipCheckIn(id, memberID, membershipID string, at time.Time, location string) (*MembershipCheckIn, error) {
	if id == "" || memberID == "" || membershipID == "" {
		return nil, domain.ErrInvalidArgument
	}
	c := &MembershipCheckIn{
		ID:           id,
		MemberID:     memberID,
		MembershipID: membershipID,
		CheckInTime:  at,
	}
	if location != "" {
		c.Location = &location
	}
	return c, nil
}

// Open reports whether the visit has not been checked out yet.
func (c *MembershipCheckIn) Open() bool { return c.CheckOutTime == nil }

// Close sets the check-out time, failing if the session is already closed.
func (c *MembershipCheckIn) Close(now time.Time) error {
	if !c.Open() {
		return domain.ErrNotCheckedIn
	}
	c.CheckOutTime = &now
	return nil
}
