package sysinfo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReader_Stats(t *testing.T) {
	reader, err := NewMemoryReader(WithMeminfoPath("testdata/meminfo"))
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	stats, err := reader.Stats()
	require.NoError(t, err)
	assert.Greater(t, stats.Total, uint64(0))
	assert.GreaterOrEqual(t, stats.Total, stats.Free)
	assert.False(t, stats.TakenAt.IsZero())
}

func TestMemoryReader_MeminfoEnrichment(t *testing.T) {
	reader, err := NewMemoryReader(WithMeminfoPath("testdata/meminfo"))
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	stats, err := reader.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(128), stats.HugePagesTotal)
	assert.Equal(t, uint64(64), stats.HugePagesFree)
	assert.Equal(t, uint64(2048<<10), stats.HugePageSize)
	assert.Equal(t, uint64(333692<<10), stats.DirectMap4K)
	assert.Equal(t, uint64(9101312<<10), stats.DirectMap2M)
	assert.Equal(t, uint64(8388608<<10), stats.DirectMap1G)
}

func TestMemoryReader_MeminfoUnreadable(t *testing.T) {
	reader, err := NewMemoryReader(WithMeminfoPath("testdata/not-a-meminfo"))
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	// The enrichment is best effort, the gopsutil numbers survive.
	stats, err := reader.Stats()
	require.NoError(t, err)
	assert.Greater(t, stats.Total, uint64(0))
	assert.Equal(t, uint64(0), stats.HugePagesTotal)
}

func TestMemoryReader_Monitoring(t *testing.T) {
	reader, err := NewMemoryReader(
		WithMeminfoPath("testdata/meminfo"),
		WithMonitorInterval(20*time.Millisecond),
		WithCallbackPoolSize(2),
	)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	var received atomic.Int64
	require.NoError(t, reader.StartMonitoring(context.Background(), func(stats *MemoryStats) {
		if stats.Total > 0 {
			received.Add(1)
		}
	}))
	assert.True(t, reader.Monitoring())

	err = reader.StartMonitoring(context.Background(), func(*MemoryStats) {})
	assert.True(t, errors.Is(err, ErrMonitorRunning))

	assert.Eventually(t, func() bool {
		return received.Load() >= 2
	}, 3*time.Second, 10*time.Millisecond)

	reader.StopMonitoring()
	assert.Eventually(t, func() bool {
		return !reader.Monitoring()
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryReader_MonitoringContextCancel(t *testing.T) {
	reader, err := NewMemoryReader(
		WithMeminfoPath("testdata/meminfo"),
		WithMonitorInterval(20*time.Millisecond),
	)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, reader.StartMonitoring(ctx, func(*MemoryStats) {}))
	cancel()
	assert.Eventually(t, func() bool {
		return !reader.Monitoring()
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryReader_NilCallback(t *testing.T) {
	reader, err := NewMemoryReader()
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	err = reader.StartMonitoring(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrMonitorNilCallback))
}

func TestMemoryReader_StartAfterClose(t *testing.T) {
	reader, err := NewMemoryReader()
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	err = reader.StartMonitoring(context.Background(), func(*MemoryStats) {})
	assert.True(t, errors.Is(err, ErrReaderClosed))
}
