package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submit cycle metrics
	submitCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_submit_cycles_total",
			Help: "Total number of submit cycles by payment method type and outcome",
		},
		[]string{"payment_method_type", "outcome"},
	)

	submitCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_submit_cycle_duration_seconds",
			Help:    "Duration of submit cycles from validation to terminal outcome",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"payment_method_type"},
	)

	tokenizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_tokenizations_total",
			Help: "Total number of tokenization attempts by outcome",
		},
		[]string{"payment_method_type", "outcome"},
	)

	pollAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_poll_attempts_total",
			Help: "Total number of status poll requests issued",
		},
	)
)

// RecordSubmitCycle records a finished submit cycle with its terminal outcome.
func RecordSubmitCycle(paymentMethodType, outcome string, started time.Time) {
	submitCyclesTotal.WithLabelValues(paymentMethodType, outcome).Inc()
	submitCycleDuration.WithLabelValues(paymentMethodType).Observe(time.Since(started).Seconds())
}

// RecordTokenization records a tokenization attempt result.
func RecordTokenization(paymentMethodType, outcome string) {
	tokenizationsTotal.WithLabelValues(paymentMethodType, outcome).Inc()
}

// RecordPollAttempt counts one status poll request.
func RecordPollAttempt() {
	pollAttemptsTotal.Inc()
}
