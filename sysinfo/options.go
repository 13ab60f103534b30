package sysinfo

import (
	"time"

	"github.com/kuserspace/kuserspace/xlog"
)

const (
	defaultMonitorIntervalMilliseconds = 1000
	minMonitorIntervalMilliseconds     = 20 // tighter polling just burns cycles re-reading /proc
	defaultCallbackPoolSize            = 4
	minCallbackPoolSize                = 1
)

type readerOption struct {
	logger      xlog.XLogger
	meminfoPath string
	interval    time.Duration
	poolSize    int
	enableStats bool
}

func (opt *readerOption) getMonitorInterval() time.Duration {
	if opt.interval < minMonitorIntervalMilliseconds*time.Millisecond {
		return defaultMonitorIntervalMilliseconds * time.Millisecond
	}
	return opt.interval
}

func (opt *readerOption) getCallbackPoolSize() int {
	if opt.poolSize < minCallbackPoolSize {
		return defaultCallbackPoolSize
	}
	return opt.poolSize
}

func (opt *readerOption) getMeminfoPath() string {
	if len(opt.meminfoPath) <= 0 {
		return "/proc/meminfo"
	}
	return opt.meminfoPath
}

func (opt *readerOption) getLogger(component string) xlog.XLogger {
	if opt.logger == nil {
		return xlog.NewXLogger(xlog.WithComponent(component))
	}
	return opt.logger
}

type ReaderOption func(*readerOption)

// WithMonitorInterval sets the polling period of the continuous
// monitoring loop. Values below the floor fall back to the default.
func WithMonitorInterval(interval time.Duration) ReaderOption {
	return func(opt *readerOption) {
		opt.interval = interval
	}
}

// WithCallbackPoolSize bounds the goroutine pool that dispatches
// monitoring callbacks.
func WithCallbackPoolSize(size int) ReaderOption {
	return func(opt *readerOption) {
		opt.poolSize = size
	}
}

// WithMeminfoPath points the memory reader at an alternative meminfo
// file. Mostly for tests.
func WithMeminfoPath(path string) ReaderOption {
	return func(opt *readerOption) {
		opt.meminfoPath = path
	}
}

func WithReaderLogger(logger xlog.XLogger) ReaderOption {
	return func(opt *readerOption) {
		opt.logger = logger
	}
}

// WithReaderStats turns on the otel instrumentation of the reader.
func WithReaderStats() ReaderOption {
	return func(opt *readerOption) {
		opt.enableStats = true
	}
}
