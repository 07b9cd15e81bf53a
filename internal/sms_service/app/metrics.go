package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookRequestsCounter counts inbound SMS webhook requests by terminal outcome.
	WebhookRequestsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_reply",
			Name:      "webhook_requests_total",
			Help:      "Total inbound SMS webhook requests.",
		},
		[]string{"outcome"}, // e.g. "replied", "rejected_signature", "rejected_schema", "handler_error"
	)

	// ProviderRequestDurationHist observes the duration of outbound send calls to the SMS provider.
	ProviderRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sms_reply",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of outbound requests to the SMS provider.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider_name"},
	)
)
