package pseudofs

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kuserspace/kuserspace/lib/infra"
	"github.com/kuserspace/kuserspace/xlog"
)

type BufferErr string

func (err BufferErr) Error() string {
	return string(err)
}

const (
	ErrFileNotFound     BufferErr = "file not found"
	ErrPermissionDenied BufferErr = "permission denied"
	ErrBufferOverflow   BufferErr = "file larger than buffer limit"
	ErrInvalidPath      BufferErr = "invalid path"
	ErrTimeout          BufferErr = "operation timed out"
	ErrIO               BufferErr = "i/o error"
	ErrInvalidOperation BufferErr = "invalid buffer operation"
)

// sysErrToBufferErr folds an os level error into the buffer taxonomy.
func sysErrToBufferErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return infra.WrapErrorStackWithMessage(ErrFileNotFound, err.Error())
	case errors.Is(err, fs.ErrPermission):
		return infra.WrapErrorStackWithMessage(ErrPermissionDenied, err.Error())
	case errors.Is(err, fs.ErrInvalid):
		return infra.WrapErrorStackWithMessage(ErrInvalidPath, err.Error())
	}
	return infra.WrapErrorStackWithMessage(ErrIO, err.Error())
}

const defaultMaxBufferSize = 1 << 20 // 1MiB, plenty for any /proc or /sys file

type bufferCfg struct {
	logger            xlog.XLogger
	maxBufferSize     int64
	perm              os.FileMode
	createIfNotExists bool
	truncateOnWrite   bool
}

type BufferOption func(*bufferCfg)

func WithMaxBufferSize(n int64) BufferOption {
	return func(cfg *bufferCfg) {
		if n > 0 {
			cfg.maxBufferSize = n
		}
	}
}

func WithCreateIfNotExists() BufferOption {
	return func(cfg *bufferCfg) {
		cfg.createIfNotExists = true
	}
}

func WithTruncateOnWrite() BufferOption {
	return func(cfg *bufferCfg) {
		cfg.truncateOnWrite = true
	}
}

func WithFilePerm(perm os.FileMode) BufferOption {
	return func(cfg *bufferCfg) {
		cfg.perm = perm
	}
}

func WithBufferLogger(logger xlog.XLogger) BufferOption {
	return func(cfg *bufferCfg) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Buffer snapshots the content of one file, typically a Linux
// pseudo-file, and serves line oriented access to the snapshot. All
// methods are goroutine safe behind a reader/writer lock.
type Buffer struct {
	mu         sync.RWMutex
	cfg        bufferCfg
	path       string
	data       []byte
	lastUpdate time.Time
	lastErr    error
	valid      bool
	watcher    *fsnotify.Watcher
	watchDone  chan struct{}
}

// NewBuffer builds a buffer bound to path and loads the first
// snapshot. A load failure is recorded in the buffer state and also
// returned, so callers may either handle it or keep the invalid buffer
// around for a later Refresh.
func NewBuffer(path string, opts ...BufferOption) (*Buffer, error) {
	cfg := bufferCfg{
		maxBufferSize: defaultMaxBufferSize,
		perm:          0o644,
		logger:        xlog.NewXLogger(xlog.WithComponent("pseudofs/buffer")),
	}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	b := &Buffer{cfg: cfg, path: path}
	if err := b.Read(path); err != nil {
		return b, err
	}
	return b, nil
}

// Read retargets the buffer to path and loads a snapshot.
func (b *Buffer) Read(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.path = path
	return b.load()
}

// Refresh reloads the snapshot from the bound path.
func (b *Buffer) Refresh() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load()
}

// load must run with the exclusive lock held.
func (b *Buffer) load() error {
	if len(strings.TrimSpace(b.path)) <= 0 {
		return b.fail(infra.WrapErrorStack(ErrInvalidPath))
	}
	info, err := os.Stat(b.path)
	if err != nil {
		if os.IsNotExist(err) && b.cfg.createIfNotExists {
			if err = os.WriteFile(b.path, nil, b.cfg.perm); err != nil {
				return b.fail(sysErrToBufferErr(err))
			}
			info, err = os.Stat(b.path)
		}
		if err != nil {
			return b.fail(sysErrToBufferErr(err))
		}
	}
	// Many pseudo-files report size 0 from stat; the overflow check
	// re-runs against the bytes actually read.
	if info.Size() > b.cfg.maxBufferSize {
		return b.fail(infra.WrapErrorStack(ErrBufferOverflow))
	}
	raw, err := os.ReadFile(b.path)
	if err != nil {
		return b.fail(sysErrToBufferErr(err))
	}
	if int64(len(raw)) > b.cfg.maxBufferSize {
		return b.fail(infra.WrapErrorStack(ErrBufferOverflow))
	}
	b.data = raw
	b.lastUpdate = time.Now()
	b.lastErr = nil
	b.valid = true
	return nil
}

func (b *Buffer) fail(err error) error {
	b.valid = false
	b.lastErr = err
	return err
}

// Write replaces the file content, honouring the truncate-on-write and
// create-if-missing settings, then refreshes the snapshot.
func (b *Buffer) Write(path string, data string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) || !b.cfg.createIfNotExists {
			return b.fail(sysErrToBufferErr(err))
		}
	}
	flags := os.O_WRONLY | os.O_CREATE
	if b.cfg.truncateOnWrite {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, b.cfg.perm)
	if err != nil {
		return b.fail(sysErrToBufferErr(err))
	}
	_, werr := f.WriteString(data)
	cerr := f.Close()
	if werr != nil {
		return b.fail(sysErrToBufferErr(werr))
	}
	if cerr != nil {
		return b.fail(sysErrToBufferErr(cerr))
	}
	b.path = path
	return b.load()
}

// Append appends to the file and refreshes the snapshot.
func (b *Buffer) Append(path string, data string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	flags := os.O_WRONLY | os.O_APPEND
	if b.cfg.createIfNotExists {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, b.cfg.perm)
	if err != nil {
		return b.fail(sysErrToBufferErr(err))
	}
	_, werr := f.WriteString(data)
	cerr := f.Close()
	if werr != nil {
		return b.fail(sysErrToBufferErr(werr))
	}
	if cerr != nil {
		return b.fail(sysErrToBufferErr(cerr))
	}
	b.path = path
	return b.load()
}

// Create makes an empty file at path.
func (b *Buffer) Create(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.WriteFile(path, nil, b.cfg.perm); err != nil {
		return b.fail(sysErrToBufferErr(err))
	}
	b.path = path
	return b.load()
}

// Remove deletes the file at path and invalidates the snapshot if it
// was the bound one.
func (b *Buffer) Remove(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.Remove(path); err != nil {
		return b.fail(sysErrToBufferErr(err))
	}
	if path == b.path {
		b.data = nil
		b.valid = false
	}
	return nil
}

// TryRead runs Read but gives up with ErrTimeout when the load does
// not finish within timeout (e.g. a wedged pseudo-file).
func (b *Buffer) TryRead(path string, timeout time.Duration) error {
	return b.withTimeout(timeout, func() error { return b.Read(path) })
}

// TryWrite runs Write bounded by timeout.
func (b *Buffer) TryWrite(path string, data string, timeout time.Duration) error {
	return b.withTimeout(timeout, func() error { return b.Write(path, data) })
}

func (b *Buffer) withTimeout(timeout time.Duration, op func() error) error {
	errC := make(chan error, 1)
	go func() {
		errC <- op()
	}()
	select {
	case err := <-errC:
		return err
	case <-time.After(timeout):
		return infra.WrapErrorStack(ErrTimeout)
	}
}

// EnableAutoRefresh re-reads the snapshot whenever the backing file is
// written or recreated. Stops on Close.
func (b *Buffer) EnableAutoRefresh() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.watcher != nil {
		return infra.WrapErrorStackWithMessage(ErrInvalidOperation, "auto refresh already enabled")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	if err = watcher.Add(b.path); err != nil {
		_ = watcher.Close()
		return sysErrToBufferErr(err)
	}
	b.watcher = watcher
	b.watchDone = make(chan struct{})
	go b.watchLoop(watcher, b.watchDone)
	return nil
}

func (b *Buffer) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := b.Refresh(); err != nil {
					b.cfg.logger.Error(err, "auto refresh failed", zap.String("path", b.Path()))
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			b.cfg.logger.Error(err, "file watch error", zap.String("path", b.Path()))
		}
	}
}

// Close stops the auto-refresh watcher if one is running.
func (b *Buffer) Close() error {
	b.mu.Lock()
	watcher, done := b.watcher, b.watchDone
	b.watcher, b.watchDone = nil, nil
	b.mu.Unlock()
	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

// Exists reports whether path points at an existing file.
func (b *Buffer) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Data returns the snapshot as a string.
func (b *Buffer) Data() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.data)
}

// Raw returns a copy of the snapshot bytes.
func (b *Buffer) Raw() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw := make([]byte, len(b.data))
	copy(raw, b.data)
	return raw
}

// Lines splits the snapshot into lines without the trailing newline.
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.data) <= 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(string(b.data), "\n"), "\n")
}

// Line returns the zero-based n-th line of the snapshot.
func (b *Buffer) Line(n int) (string, bool) {
	lines := b.Lines()
	if n < 0 || n >= len(lines) {
		return "", false
	}
	return lines[n], true
}

func (b *Buffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

func (b *Buffer) Valid() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.valid
}

func (b *Buffer) LastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastErr
}

func (b *Buffer) LastUpdate() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdate
}
