package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CarrierErrors   *prometheus.CounterVec
	QuoteAmount     *prometheus.HistogramVec
}

// NewMetrics creates metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upsbridge_requests_total",
				Help: "Total number of requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upsbridge_request_duration_seconds",
				Help:    "Request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upsbridge_carrier_errors_total",
				Help: "Total carrier errors by carrier and error code",
			},
			[]string{"carrier", "error_type"},
		),
		QuoteAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upsbridge_quote_amount_cents",
				Help:    "Negotiated rate quotes in cents by carrier and service code",
				Buckets: prometheus.ExponentialBuckets(250, 2, 10),
			},
			[]string{"carrier", "service_code"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, errorType string) {
	m.CarrierErrors.WithLabelValues(carrier, errorType).Inc()
}

// RecordQuote records a returned rate quote.
func (m *Metrics) RecordQuote(carrier, serviceCode string, amountCents int64) {
	m.QuoteAmount.WithLabelValues(carrier, serviceCode).Observe(float64(amountCents))
}
