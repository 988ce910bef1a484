package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer opens a span per service operation. Implementations may return a
// derived context carrying span state.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span opened by a Tracer.
type TraceSpan interface {
	End(err error)
}

// MetricsDriver identifies a concrete metrics recorder implementation.
type MetricsDriver string

const (
	MetricsPrometheus MetricsDriver = "prometheus" // scrapeable /metrics endpoint
	MetricsExpvar     MetricsDriver = "expvar"     // process-local /debug/vars
)

// OpenMetricsRecorder selects a recorder using environment variables.
// Defaults to Prometheus when unset.
//
//	JALSURAKSHA_METRICS_DRIVER: prometheus|expvar (default prometheus)
func OpenMetricsRecorder(reg prometheus.Registerer) (MetricsRecorder, error) {
	driver := os.Getenv("JALSURAKSHA_METRICS_DRIVER")
	if driver == "" {
		driver = string(MetricsPrometheus)
	}
	switch MetricsDriver(driver) {
	case MetricsPrometheus:
		return NewPrometheusMetricsRecorder(reg)
	case MetricsExpvar:
		return NewExpvarMetricsRecorder(""), nil
	default:
		return nil, fmt.Errorf("unknown metrics driver %s", driver)
	}
}
