package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the enlistment
// flows and the HTTP surface.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	enlistOutcomes  *prometheus.CounterVec
	removals        prometheus.Counter
	promotions      prometheus.Counter
	walkInPayments  prometheus.Counter
	walkInAmount    prometheus.Counter
}

// NewMetricsService registers the Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	enlistOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enlistment_outcomes_total",
		Help: "Enlist attempts by outcome",
	}, []string{"outcome"})

	removals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enlistment_removals_total",
		Help: "Enlistments deleted through bulk removal",
	})

	promotions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waitlist_promotions_total",
		Help: "Waiters promoted into freed seats",
	})

	walkInPayments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "walk_in_payments_total",
		Help: "Walk-in payments recorded",
	})

	walkInAmount := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "walk_in_payment_amount_total",
		Help: "Cumulative walk-in payment amount",
	})

	registry.MustRegister(requestDuration, requestTotal, enlistOutcomes,
		removals, promotions, walkInPayments, walkInAmount)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		enlistOutcomes:  enlistOutcomes,
		removals:        removals,
		promotions:      promotions,
		walkInPayments:  walkInPayments,
		walkInAmount:    walkInAmount,
	}
}

// Handler exposes the metrics endpoint handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveRequest records one handled HTTP request.
func (s *MetricsService) ObserveRequest(method, path, status string, duration time.Duration) {
	s.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordEnlistOutcome counts one enlist attempt by its outcome.
func (s *MetricsService) RecordEnlistOutcome(outcome EnlistOutcome) {
	s.enlistOutcomes.WithLabelValues(string(outcome)).Inc()
}

// RecordRemovals counts enlistments deleted by a bulk removal.
func (s *MetricsService) RecordRemovals(count int) {
	s.removals.Add(float64(count))
}

// RecordPromotion counts one successful waitlist promotion.
func (s *MetricsService) RecordPromotion() {
	s.promotions.Inc()
}

// RecordWalkInPayment counts one walk-in payment and its amount.
func (s *MetricsService) RecordWalkInPayment(amount float64) {
	s.walkInPayments.Inc()
	s.walkInAmount.Add(amount)
}
