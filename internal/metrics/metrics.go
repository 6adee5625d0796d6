// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CastingWrites counts engine writes by operation and outcome
	// ("ok", "invalid", "duplicate", "forbidden", "not_found",
	// "unavailable", "error").
	CastingWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "theatre",
		Name:      "casting_writes_total",
		Help:      "Casting engine write operations by result.",
	}, []string{"op", "result"})

	// WebhookVerifications counts deployment webhook signature checks.
	WebhookVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "theatre",
		Name:      "webhook_verifications_total",
		Help:      "Deployment webhook signature verifications by result.",
	}, []string{"result"})

	// StoreRetries counts retries of transient data access failures.
	StoreRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "theatre",
		Name:      "store_retries_total",
		Help:      "Retried data access operations after transient failures.",
	}, []string{"op"})
)
