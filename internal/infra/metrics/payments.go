package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		paymentsOverdueSwept,
		remindersSentTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_payments_total",
			Help: "Payment obligations by resulting status (pending/paid/overdue/failed).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_payments_revenue_total",
			Help: "The total monetary value of settled obligations, labeled by currency.",
		},
		[]string{"currency"},
	)

	paymentsOverdueSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_payments_overdue_swept_total",
			Help: "Pending obligations flipped to overdue by the sweep.",
		},
	)

	remindersSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_reminders_sent_total",
			Help: "Reminders recorded, labeled by escalation tier.",
		},
		[]string{"tier"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amountCents int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amountCents))
}

func AddOverdueSwept(count int) { paymentsOverdueSwept.Add(float64(count)) }

func IncReminderSent(tier string) {
	remindersSentTotal.WithLabelValues(norm(tier)).Inc()
}
