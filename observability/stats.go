// Package observability carries the process-wide otel plumbing shared
// by the instrumented components of this library.
package observability

import (
	"context"
	"runtime"
	"strings"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppStats publishes asynchronous gauges about the embedding process
// itself. Each call builds an independent instance, callers decide the
// lifecycle instead of a package-level singleton deciding it for them.
type AppStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	processes  metric.Int64ObservableUpDownCounter
}

func meterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("kuserspace/app/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// NewAppStats registers the process gauges under the given name and
// starts the otel runtime instrumentation.
func NewAppStats(name string) (*AppStats, error) {
	meter := otel.Meter(
		meterName(name),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	stats := &AppStats{
		goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"app.core.goroutines",
			metric.WithDescription(`The application goroutines' info.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				ob.Observe(int64(runtime.NumGoroutine()))
				return nil
			}),
		)),
		processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"app.core.processes",
			metric.WithDescription(`The application processes' info.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				ob.Observe(int64(runtime.GOMAXPROCS(0)))
				return nil
			}),
		)),
	}
	if err := otelruntime.Start(); err != nil {
		return nil, err
	}
	return stats, nil
}
