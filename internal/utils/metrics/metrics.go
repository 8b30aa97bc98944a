// Package metrics holds the Prometheus collectors for the auth service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_http_requests_total",
		Help: "Total number of HTTP requests received.",
	})

	ResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_http_responses_total",
		Help: "Total number of HTTP responses by status code.",
	}, []string{"status"})

	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "auth_http_request_duration_seconds",
		Help:    "HTTP request processing time.",
		Buckets: prometheus.DefBuckets,
	})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_refresh_total",
		Help: "Refresh rotations by outcome.",
	}, []string{"outcome"})

	IdentityCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_identity_cache_lookups_total",
		Help: "Identity cache lookups by result (hit or miss).",
	}, []string{"result"})

	TokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_tokens_revoked_total",
		Help: "Tokens added to the revocation blacklist.",
	})
)
