package sysinfo

import (
	"context"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/kuserspace/kuserspace/lib/infra"
	"github.com/kuserspace/kuserspace/lib/pseudofs"
)

// MemoryStats is one snapshot of the host memory state. Sizes are in
// bytes, huge page totals are page counts.
type MemoryStats struct {
	TakenAt        time.Time
	Total          uint64
	Free           uint64
	Available      uint64
	Used           uint64
	UsedPercent    float64
	Cached         uint64
	Buffers        uint64
	Active         uint64
	Inactive       uint64
	SwapTotal      uint64
	SwapFree       uint64
	SwapUsed       uint64
	HugePagesTotal uint64
	HugePagesFree  uint64
	HugePageSize   uint64
	DirectMap4K    uint64
	DirectMap2M    uint64
	DirectMap1G    uint64
}

// MemoryReader takes memory snapshots on demand or on a fixed period.
// The broad numbers come from gopsutil, the huge page and direct map
// rows are scraped from meminfo because gopsutil does not expose them.
type MemoryReader struct {
	runner      *monitorRunner
	extractor   *pseudofs.Extractor
	meminfoPath string
}

func NewMemoryReader(opts ...ReaderOption) (*MemoryReader, error) {
	opt := &readerOption{}
	for _, o := range opts {
		if o != nil {
			o(opt)
		}
	}
	runner, err := newMonitorRunner(opt, "sysinfo/memory")
	if err != nil {
		return nil, err
	}
	return &MemoryReader{
		runner:      runner,
		extractor:   pseudofs.NewExtractor(),
		meminfoPath: opt.getMeminfoPath(),
	}, nil
}

// Stats takes a fresh snapshot. The meminfo enrichment is best effort,
// a scrape failure degrades the snapshot instead of failing it.
func (r *MemoryReader) Stats() (*MemoryStats, error) {
	start := time.Now()
	stats, err := r.snapshot()
	r.runner.stats.RecordSnapshot(time.Since(start), err)
	return stats, err
}

func (r *MemoryReader) snapshot() (*MemoryStats, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "sysinfo unable to read virtual memory")
	}
	sw, err := mem.SwapMemory()
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "sysinfo unable to read swap memory")
	}
	stats := &MemoryStats{
		TakenAt:     time.Now(),
		Total:       vm.Total,
		Free:        vm.Free,
		Available:   vm.Available,
		Used:        vm.Used,
		UsedPercent: vm.UsedPercent,
		Cached:      vm.Cached,
		Buffers:     vm.Buffers,
		Active:      vm.Active,
		Inactive:    vm.Inactive,
		SwapTotal:   sw.Total,
		SwapFree:    sw.Free,
		SwapUsed:    sw.Used,
	}
	r.enrichFromMeminfo(stats)
	return stats, nil
}

func (r *MemoryReader) enrichFromMeminfo(stats *MemoryStats) {
	rows := []struct {
		pattern string
		target  *uint64
		inKB    bool
	}{
		{pseudofs.PatternHugePagesTotal, &stats.HugePagesTotal, false},
		{pseudofs.PatternHugePagesFree, &stats.HugePagesFree, false},
		{pseudofs.PatternHugePageSize, &stats.HugePageSize, true},
		{pseudofs.PatternDirectMap4K, &stats.DirectMap4K, true},
		{pseudofs.PatternDirectMap2M, &stats.DirectMap2M, true},
		{pseudofs.PatternDirectMap1G, &stats.DirectMap1G, true},
	}
	for _, row := range rows {
		values, err := r.extractor.ExtractValues(r.meminfoPath, row.pattern)
		if err != nil || len(values) <= 0 {
			continue
		}
		raw := values[0]
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			r.runner.logger.Debug("malformed meminfo row",
				zap.String("path", r.meminfoPath), zap.String("raw", raw))
			continue
		}
		if row.inKB {
			n <<= 10
		}
		*row.target = n
	}
}

// StartMonitoring polls the memory state every interval and hands each
// snapshot to callback on the dispatch pool. Only one loop may run at
// a time. The loop stops when ctx is canceled or StopMonitoring is
// called.
func (r *MemoryReader) StartMonitoring(ctx context.Context, callback func(*MemoryStats)) error {
	if callback == nil {
		return infra.WrapErrorStack(ErrMonitorNilCallback)
	}
	return r.runner.start(ctx, func() {
		stats, err := r.Stats()
		if err != nil {
			r.runner.logger.Error(err, "memory snapshot failed")
			return
		}
		r.runner.dispatch(func() { callback(stats) })
	})
}

func (r *MemoryReader) StopMonitoring() { r.runner.stop() }

func (r *MemoryReader) Monitoring() bool { return r.runner.monitoring.Load() }

func (r *MemoryReader) Close() error {
	r.runner.close()
	return nil
}
