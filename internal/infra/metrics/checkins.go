package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		checkInsTotal,
		checkInsDenied,
		openCheckIns,
	)
}

var (
	checkInsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_checkins_total",
			Help: "Facility check-ins opened.",
		},
	)

	checkInsDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_checkins_denied_total",
			Help: "Check-in attempts rejected, labeled by reason.",
		},
		[]string{"reason"}, // 'access_denied', 'already_checked_in'
	)

	openCheckIns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "membership_checkins_open",
			Help: "Currently open facility visits.",
		},
	)
)

func IncCheckIn()                  { checkInsTotal.Inc() }
func IncCheckInDenied(reason string) { checkInsDenied.WithLabelValues(norm(reason)).Inc() }
func SetOpenCheckIns(n int)        { openCheckIns.Set(float64(n)) }
