package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"gym-membership-service/internal/domain/model"
)

func init() {
	register(
		membershipTransitionsTotal,
		membershipsTotal,
		freezesScheduledTotal,
		freezesExpiredTotal,
	)
}

var (
	membershipTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_transitions_total",
			Help: "Status transitions applied, labeled by target status.",
		},
		[]string{"target"},
	)

	membershipsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "memberships_total",
			Help: "Current number of memberships by status.",
		},
		[]string{"status"},
	)

	freezesScheduledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_freezes_scheduled_total",
			Help: "Freeze windows recorded.",
		},
	)

	freezesExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_freezes_expired_total",
			Help: "Memberships unfrozen by the freeze expiry worker.",
		},
	)
)

func IncMembershipTransition(target model.MembershipStatus) {
	membershipTransitionsTotal.WithLabelValues(string(target)).Inc()
}

func SetMembershipsTotal(counts map[model.MembershipStatus]int) {
	statuses := []model.MembershipStatus{
		model.MembershipStatusActive,
		model.MembershipStatusFrozen,
		model.MembershipStatusCancelled,
		model.MembershipStatusSuspended,
		model.MembershipStatusBlacklisted,
	}
	for _, status := range statuses {
		if count, ok := counts[status]; ok {
			membershipsTotal.WithLabelValues(string(status)).Set(float64(count))
		}
	}
}

func IncFreezeScheduled() { freezesScheduledTotal.Inc() }

func IncFreezesExpired(count int) { freezesExpiredTotal.Add(float64(count)) }
