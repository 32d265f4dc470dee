package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upsbridge/internal/telemetry"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "error", "bogus"} {
		logger, err := telemetry.NewLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}
}

// counterValue sums the counter samples of a family whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			match := true
			for k, v := range want {
				if labels[k] != v {
					match = false
				}
			}
			if match {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	metrics.RecordRequest("retrieve_rate", "ups", "success", 0.12)
	metrics.RecordRequest("retrieve_rate", "ups", "success", 0.08)
	metrics.RecordRequest("retrieve_rate", "ups", "error", 0.5)
	metrics.RecordError("ups", "AUTH_ERROR")
	metrics.RecordQuote("ups", "03", 1265)

	assert.Equal(t, 2.0, counterValue(t, reg, "upsbridge_requests_total", map[string]string{"status": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "upsbridge_requests_total", map[string]string{"status": "error"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "upsbridge_carrier_errors_total", map[string]string{"error_type": "AUTH_ERROR"}))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "upsbridge_request_duration_seconds")
	assert.Contains(t, names, "upsbridge_quote_amount_cents")
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.NewMetrics(prometheus.NewRegistry())
		telemetry.NewMetrics(prometheus.NewRegistry())
	})
}

func TestInitTracer(t *testing.T) {
	ctx := context.Background()
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	tracer, shutdown, err := telemetry.InitTracer(ctx, collector.URL+"/v1/traces", "upsbridge-test", "0.0.0")
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.Start(ctx, "test")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NotNil(t, telemetry.Tracer("upsbridge-test"))
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(shutdownCtx))
}
