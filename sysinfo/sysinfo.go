// Package sysinfo exposes point-in-time snapshots of the host memory
// and processor state plus a pull-based monitoring loop. Raw numbers
// come from gopsutil, the fields gopsutil does not surface are scraped
// from procfs through lib/pseudofs.
package sysinfo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kuserspace/kuserspace/lib/infra"
	"github.com/kuserspace/kuserspace/xlog"
)

type SysinfoErr string

func (e SysinfoErr) Error() string { return string(e) }

const (
	ErrMonitorRunning     SysinfoErr = "sysinfo monitor already running"
	ErrMonitorNilCallback SysinfoErr = "sysinfo monitor requires a non-nil callback"
	ErrReaderClosed       SysinfoErr = "sysinfo reader closed"
)

// monitorRunner owns the ticker goroutine and the callback dispatch
// pool shared by both reader flavors. At most one loop per runner.
type monitorRunner struct {
	logger     xlog.XLogger
	pool       *ants.Pool
	stats      *readerStats
	cancelFn   context.CancelFunc
	interval   time.Duration
	mu         sync.Mutex
	monitoring atomic.Bool
	closed     atomic.Bool
}

func newMonitorRunner(opt *readerOption, component string) (*monitorRunner, error) {
	var stats *readerStats
	if opt.enableStats {
		stats = newReaderStats(component)
	}
	pool, err := ants.NewPool(opt.getCallbackPoolSize(), ants.WithNonblocking(true))
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "sysinfo unable to build callback pool")
	}
	return &monitorRunner{
		logger:   opt.getLogger(component),
		pool:     pool,
		stats:    stats,
		interval: opt.getMonitorInterval(),
	}, nil
}

// start spawns the polling loop. tick is invoked on every period from
// the loop goroutine and is expected to hand real work to dispatch.
func (m *monitorRunner) start(ctx context.Context, tick func()) error {
	if m.closed.Load() {
		return infra.WrapErrorStack(ErrReaderClosed)
	}
	if !m.monitoring.CompareAndSwap(false, true) {
		return infra.WrapErrorStack(ErrMonitorRunning)
	}
	cctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancelFn = cancel
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.interval)
		defer func() {
			ticker.Stop()
			m.monitoring.Store(false)
		}()
		for {
			select {
			case <-cctx.Done():
				return
			case <-ticker.C:
				m.stats.RecordMonitorTick()
				tick()
			}
		}
	}()
	return nil
}

func (m *monitorRunner) stop() {
	m.mu.Lock()
	cancel := m.cancelFn
	m.cancelFn = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// dispatch runs fn on the pool. A saturated pool drops the callback
// and logs instead of stalling the polling loop.
func (m *monitorRunner) dispatch(fn func()) {
	if err := m.pool.Submit(fn); err != nil {
		m.logger.Warn("sysinfo callback dropped", zap.String("reason", err.Error()))
	}
}

func (m *monitorRunner) close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.stop()
	m.pool.Release()
}
