package core

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"jalsuraksha/pkg/domain"
)

func TestExpvarRecorderAggregatesOutcomes(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	svc := newTestService(t, WithMetricsRecorder(rec))
	ctx := context.Background()

	mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityLow)
	if _, err := svc.GetAlert(ctx, "missing"); err == nil {
		t.Fatal("expected not-found error")
	}

	snap := rec.Snapshot()
	if snap.Results["create_alert"]["success"] != 1 {
		t.Fatalf("create_alert successes = %d, want 1", snap.Results["create_alert"]["success"])
	}
	if snap.Results["get_alert"]["error"] != 1 {
		t.Fatalf("get_alert errors = %d, want 1", snap.Results["get_alert"]["error"])
	}
	if _, ok := snap.DurationsMS["create_alert"]; !ok {
		t.Fatal("create_alert duration missing from snapshot")
	}
}

func TestOpenMetricsRecorderSelectsDriver(t *testing.T) {
	t.Setenv("JALSURAKSHA_METRICS_DRIVER", "")
	rec, err := OpenMetricsRecorder(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if _, ok := rec.(*PrometheusMetricsRecorder); !ok {
		t.Fatalf("default recorder is %T, want prometheus", rec)
	}

	t.Setenv("JALSURAKSHA_METRICS_DRIVER", "expvar")
	rec, err = OpenMetricsRecorder(nil)
	if err != nil {
		t.Fatalf("open expvar: %v", err)
	}
	if _, ok := rec.(*ExpvarMetricsRecorder); !ok {
		t.Fatalf("recorder is %T, want expvar", rec)
	}

	t.Setenv("JALSURAKSHA_METRICS_DRIVER", "statsd")
	if _, err := OpenMetricsRecorder(nil); err == nil {
		t.Fatal("expected error for unknown metrics driver")
	}
}
