package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder("annexcore", reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	svc := newTestService(t, WithMetricsRecorder(rec))
	ctx := context.Background()
	_, _, _ = svc.AddProvince(ctx, "Western")
	_, _, _ = svc.AddProvince(ctx, "Central")
	_, _, _ = svc.AddProvince(ctx, "")
	rec.Observe(ctx, "", true, time.Second)

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("create_province", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("create_province", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if n := testutil.CollectAndCount(rec.latency, "annexcore_service_operation_duration_seconds"); n != 1 {
		t.Fatalf("expected one latency series, got %d", n)
	}
}

func TestPrometheusMetricsRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusMetricsRecorder("annexcore", reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewPrometheusMetricsRecorder("annexcore", reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	second.Observe(context.Background(), "seed", true, time.Millisecond)
	if got := testutil.ToFloat64(first.operations.WithLabelValues("seed", "success")); got != 1 {
		t.Fatalf("expected shared counter, got %v", got)
	}
}
