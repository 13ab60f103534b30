package sysinfo

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/kuserspace/kuserspace/lib/infra"
)

// ProcessorInfo is the static description of the host processor.
type ProcessorInfo struct {
	ModelName     string
	VendorID      string
	Architecture  string
	MHz           float64
	PhysicalCores int
	LogicalCores  int
}

// ProcessorStats is one snapshot of processor load. Times are
// cumulative seconds since boot, utilizations are percentages since
// the previous snapshot.
type ProcessorStats struct {
	TakenAt            time.Time
	User               float64
	Nice               float64
	System             float64
	Idle               float64
	Iowait             float64
	Irq                float64
	Softirq            float64
	Steal              float64
	TotalUtilization   float64
	PerCoreUtilization []float64
}

// ProcessorReader mirrors MemoryReader for the processor side.
type ProcessorReader struct {
	runner *monitorRunner
}

func NewProcessorReader(opts ...ReaderOption) (*ProcessorReader, error) {
	opt := &readerOption{}
	for _, o := range opts {
		if o != nil {
			o(opt)
		}
	}
	runner, err := newMonitorRunner(opt, "sysinfo/processor")
	if err != nil {
		return nil, err
	}
	return &ProcessorReader{runner: runner}, nil
}

// Info reads the static processor description once. The architecture
// string comes from the kernel, not from the Go build target.
func (r *ProcessorReader) Info() (*ProcessorInfo, error) {
	infos, err := cpu.Info()
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "sysinfo unable to read cpu info")
	}
	if len(infos) <= 0 {
		return nil, infra.NewErrorStack("sysinfo cpu info is empty")
	}
	physical, err := cpu.Counts(false)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "sysinfo unable to count physical cores")
	}
	logical, err := cpu.Counts(true)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "sysinfo unable to count logical cores")
	}
	return &ProcessorInfo{
		ModelName:     infos[0].ModelName,
		VendorID:      infos[0].VendorID,
		Architecture:  machineArch(),
		MHz:           infos[0].Mhz,
		PhysicalCores: physical,
		LogicalCores:  logical,
	}, nil
}

func (r *ProcessorReader) Stats() (*ProcessorStats, error) {
	start := time.Now()
	stats, err := r.snapshot()
	r.runner.stats.RecordSnapshot(time.Since(start), err)
	return stats, err
}

func (r *ProcessorReader) snapshot() (*ProcessorStats, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "sysinfo unable to read cpu times")
	}
	if len(times) <= 0 {
		return nil, infra.NewErrorStack("sysinfo cpu times is empty")
	}
	// Interval 0 compares against the previous Percent call, so the
	// first snapshot reports utilization since boot.
	total, err := cpu.Percent(0, false)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "sysinfo unable to read cpu utilization")
	}
	perCore, err := cpu.Percent(0, true)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "sysinfo unable to read per core utilization")
	}
	stats := &ProcessorStats{
		TakenAt:            time.Now(),
		User:               times[0].User,
		Nice:               times[0].Nice,
		System:             times[0].System,
		Idle:               times[0].Idle,
		Iowait:             times[0].Iowait,
		Irq:                times[0].Irq,
		Softirq:            times[0].Softirq,
		Steal:              times[0].Steal,
		PerCoreUtilization: perCore,
	}
	if len(total) > 0 {
		stats.TotalUtilization = total[0]
	}
	return stats, nil
}

// StartMonitoring polls processor load every interval, see
// MemoryReader.StartMonitoring for the loop contract.
func (r *ProcessorReader) StartMonitoring(ctx context.Context, callback func(*ProcessorStats)) error {
	if callback == nil {
		return infra.WrapErrorStack(ErrMonitorNilCallback)
	}
	return r.runner.start(ctx, func() {
		stats, err := r.Stats()
		if err != nil {
			r.runner.logger.Error(err, "processor snapshot failed")
			return
		}
		r.runner.dispatch(func() { callback(stats) })
	})
}

func (r *ProcessorReader) StopMonitoring() { r.runner.stop() }

func (r *ProcessorReader) Monitoring() bool { return r.runner.monitoring.Load() }

func (r *ProcessorReader) Close() error {
	r.runner.close()
	return nil
}
