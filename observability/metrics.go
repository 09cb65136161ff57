package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"nscollab/events"
)

// Metric name prefix
const MetricPrefix = "demoday"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricPrefix,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricPrefix,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	DomainEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricPrefix,
			Name:      "domain_events_total",
			Help:      "Committed domain events by type",
		},
		[]string{"type"},
	)
	InvestedCentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricPrefix,
			Name:      "invested_cents_total",
			Help:      "Total virtual funding invested, in cents",
		},
	)
	ForcedRecalculationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricPrefix,
			Name:      "forced_recalculations_total",
			Help:      "Results calculations that replaced an existing snapshot",
		},
	)
	EventsForwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricPrefix,
			Name:      "events_forwarded_total",
			Help:      "Domain events forwarded to the message bus by outcome",
		},
		[]string{"outcome"},
	)
)

// Register adds every collector to reg
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		DomainEventsTotal,
		InvestedCentsTotal,
		ForcedRecalculationsTotal,
		EventsForwardedTotal,
	)
}

// SubscribeToEvents counts committed domain events from the bus
func SubscribeToEvents(bus *events.Bus) {
	for _, eventType := range events.AllEventTypes {
		bus.Subscribe(eventType, recordEvent)
	}
}

func recordEvent(_ context.Context, event events.Event) {
	DomainEventsTotal.WithLabelValues(string(event.Type())).Inc()

	switch e := event.(type) {
	case events.InvestmentMadeEvent:
		InvestedCentsTotal.Add(float64(e.Amount))
	case events.ResultsCalculatedEvent:
		if e.Forced {
			ForcedRecalculationsTotal.Inc()
		}
	}
}
