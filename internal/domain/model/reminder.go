package model

import (
	"time"

	"gym-membership-service/internal/domain"
)

type ReminderType string

const (
	ReminderTypeFirst         ReminderType = "first_reminder"
	ReminderTypeSecond        ReminderType = "second_reminder"
	ReminderTypeFinal         ReminderType = "final_reminder"
	ReminderTypeOverdueNotice ReminderType = "overdue_notice"
)

type ReminderMethod string

const (
	ReminderMethodEmail ReminderMethod = "email"
	ReminderMethodSMS   ReminderMethod = "sms"
	ReminderMethodPush  ReminderMethod = "push"
)

// MembershipReminder is an append-only audit record of one reminder attempt.
type MembershipReminder struct {
	ID        string // UUID
	PaymentID string
	MemberID  string
	Type      ReminderType
	SentAt    time.Time
	Method    *ReminderMethod
}

// ReminderTierFor maps an obligation's reminder count to the next tier to
// send: first, second, final, then a repeating overdue notice.
func ReminderTierFor(reminderCount int) ReminderType {
	switch reminderCount {
	case 0:
		return ReminderTypeFirst
	case 1:
		return ReminderTypeSecond
	case 2:
		return ReminderTypeFinal
	default:
		return ReminderTypeOverdueNotice
	}
}

func NewMembershipReminder(id, paymentID, memberID string, tier ReminderType, sentAt time.Time, method ReminderMethod) (*MembershipReminder, error) {
	if id == "" || paymentID == "" || memberID == "" {
		return nil, domain.ErrInvalidArgument
	}
	r := &MembershipReminder{
		ID:        id,
		PaymentID: paymentID,
		MemberID:  memberID,
		Type:      tier,
		SentAt:    sentAt,
	}
	switch method {
	case ReminderMethodEmail, ReminderMethodSMS, ReminderMethodPush:
		r.Method = &method
	case "":
		// method is optional
	default:
		return nil, domain.ErrInvalidArgument
	}
	return r, nil
}
