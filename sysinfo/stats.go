package sysinfo

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type readerStats struct {
	snapshotCount     metric.Int64Counter
	snapshotErrCount  metric.Int64Counter
	snapshotDurations metric.Int64Histogram
	monitorTickCount  metric.Int64Counter
}

func newReaderStats(component string) *readerStats {
	meter := otel.Meter("kuserspace/sysinfo/" + component)
	return &readerStats{
		snapshotCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			component+".snapshot.count",
			metric.WithDescription("The total number of stat snapshots taken."),
		)),
		snapshotErrCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			component+".snapshot.error.count",
			metric.WithDescription("The total number of failed stat snapshots."),
		)),
		snapshotDurations: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			component+".snapshot.duration",
			metric.WithDescription("The duration of a single stat snapshot."),
			metric.WithUnit("microseconds"),
		)),
		monitorTickCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			component+".monitor.tick.count",
			metric.WithDescription("The total number of monitor loop ticks."),
		)),
	}
}

func (s *readerStats) RecordSnapshot(duration time.Duration, err error) {
	if s == nil {
		return
	}
	ctx := context.Background()
	s.snapshotCount.Add(ctx, 1)
	s.snapshotDurations.Record(ctx, duration.Microseconds())
	if err != nil {
		s.snapshotErrCount.Add(ctx, 1)
	}
}

func (s *readerStats) RecordMonitorTick() {
	if s == nil {
		return
	}
	s.monitorTickCount.Add(context.Background(), 1)
}
