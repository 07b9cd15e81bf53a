package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReplyRequestsCounter counts outbound reply attempts by outcome.
	ReplyRequestsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "email_reply",
			Name:      "reply_requests_total",
			Help:      "Total outbound email reply attempts.",
		},
		[]string{"outcome"}, // "sent", "config_error", "provider_error"
	)

	// ProviderRequestDurationHist observes the duration of outbound requests to the email provider.
	ProviderRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "email_reply",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of outbound requests to the email provider.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider_name"},
	)
)
