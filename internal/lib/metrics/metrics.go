// Package metrics содержит prometheus-метрики сервиса.
// Метрики регистрируются в регистре по умолчанию и отдаются через /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentVerifications число проверок платежей по результату (ok, invalid, tampered, auth_error, not_found, gateway_error).
	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportsit",
		Name:      "payment_verifications_total",
		Help:      "Number of post-payment verifications by result.",
	}, []string{"result"})

	// GatewayRequests число запросов к платёжному шлюзу по ручке и исходу.
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportsit",
		Name:      "gateway_requests_total",
		Help:      "Number of payment gateway requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// HTTPRequestDuration длительность обработки HTTP-запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sportsit",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// StateTransitions число смен состояния соревнований, найденных планировщиком.
	StateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportsit",
		Name:      "competition_state_transitions_total",
		Help:      "Number of competition state transitions detected by the scheduler.",
	}, []string{"to"})
)
