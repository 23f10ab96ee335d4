package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.Observe(context.Background(), "save", true, 5*time.Millisecond)
	rec.Observe(context.Background(), "save", false, 3*time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Second)

	snap := rec.Snapshot()
	assert.InDelta(t, 8.0, snap.DurationsMS["save"], 0.001)
	assert.Equal(t, map[string]int64{"success": 1, "error": 1}, snap.Results["save"])
	assert.Len(t, snap.Results, 1)

	published := expvar.Get(rec.Name())
	require.NotNil(t, published)
	assert.Contains(t, published.String(), "durations_ms_total")
}

func TestJSONTracerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	calls := 0
	tracer.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Millisecond)
	}

	_, span := tracer.Start(context.Background(), "load")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "save")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "success", entries[0].Status)
	assert.InDelta(t, 1.0, entries[0].DurationMS, 0.001)
	assert.Equal(t, "boom", entries[1].Error)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var decoded JSONTraceEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &decoded))
	assert.Equal(t, "save", decoded.Operation)
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.Observe(context.Background(), "accept", true, 10*time.Millisecond)
	m.Observe(context.Background(), "accept", false, 10*time.Millisecond)
	m.ObserveRequest("PUT", "/api/v1/profiles/{email}/changes", 204, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationResults.WithLabelValues("accept", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("PUT", "/api/v1/profiles/{email}/changes", "204")))

	var nilMetrics *Metrics
	nilMetrics.Observe(context.Background(), "accept", true, time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), "profilereview_operations_total")
}

func TestOTelTracerRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := NewOTelTracer(provider)

	_, span := tracer.Start(context.Background(), "save")
	span.End(errors.New("502"))
	_, span = tracer.Start(context.Background(), "load")
	span.End(nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "session.save", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
}

func TestSetupTracingDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "profilereview", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
