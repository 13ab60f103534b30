package sysinfo

import (
	"time"

	"go.uber.org/multierr"
)

// SystemSnapshot pairs one memory snapshot with one processor
// snapshot taken back to back.
type SystemSnapshot struct {
	TakenAt   time.Time
	Memory    *MemoryStats
	Processor *ProcessorStats
}

// SystemReader bundles the memory and processor readers behind one
// handle for embedders that want the whole host picture.
type SystemReader struct {
	Memory    *MemoryReader
	Processor *ProcessorReader
}

func NewSystemReader(opts ...ReaderOption) (*SystemReader, error) {
	memReader, err := NewMemoryReader(opts...)
	if err != nil {
		return nil, err
	}
	cpuReader, err := NewProcessorReader(opts...)
	if err != nil {
		_ = memReader.Close()
		return nil, err
	}
	return &SystemReader{Memory: memReader, Processor: cpuReader}, nil
}

func (r *SystemReader) Snapshot() (*SystemSnapshot, error) {
	memStats, err := r.Memory.Stats()
	if err != nil {
		return nil, err
	}
	cpuStats, err := r.Processor.Stats()
	if err != nil {
		return nil, err
	}
	return &SystemSnapshot{
		TakenAt:   time.Now(),
		Memory:    memStats,
		Processor: cpuStats,
	}, nil
}

func (r *SystemReader) Close() error {
	return multierr.Combine(r.Memory.Close(), r.Processor.Close())
}
