package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotGenerations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salonbook",
			Name:      "slot_generations_total",
			Help:      "Slot list computations.",
		},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salonbook",
			Name:      "bookings_created_total",
			Help:      "Successfully created bookings.",
		},
	)

	submitConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salonbook",
			Name:      "submit_conflicts_total",
			Help:      "Booking submits rejected because the slot was taken.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonbook",
			Name:      "status_transitions_total",
			Help:      "Applied booking status transitions.",
		},
		[]string{"to"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotGenerations, bookingsCreated, submitConflicts, statusTransitions, httpRequests)
	})
}

// IncSlotGeneration counts one slot list computation.
func IncSlotGeneration() {
	slotGenerations.Inc()
}

// IncBookingCreated counts one successful booking creation.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncSubmitConflict counts one write-time slot conflict.
func IncSubmitConflict() {
	submitConflicts.Inc()
}

// IncStatusTransition counts one applied transition by target status.
func IncStatusTransition(to string) {
	statusTransitions.WithLabelValues(to).Inc()
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
