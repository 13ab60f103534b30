package xlog

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type memSyncer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (ms *memSyncer) Write(p []byte) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.buf.Write(p)
}

func (ms *memSyncer) Sync() error { return nil }

func (ms *memSyncer) String() string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.buf.String()
}

var _ zapcore.WriteSyncer = (*memSyncer)(nil)

func TestXLoggerJSONOutput(t *testing.T) {
	ws := &memSyncer{}
	logger := NewXLogger(
		WithLogLevel(LogLevelDebug),
		WithLogEncoder(JSON),
		WithLogWriter(ws),
		WithComponent("xlog/test"),
	)
	logger.Debug("debug record", zap.Int("n", 1))
	logger.Info("info record")
	logger.Warn("warn record")
	logger.Error(errors.New("boom"), "error record")
	require.NoError(t, logger.Sync())

	out := ws.String()
	assert.Contains(t, out, "debug record")
	assert.Contains(t, out, "\"component\":\"xlog/test\"")
	assert.Contains(t, out, "\"error\":\"boom\"")
}

func TestXLoggerDynamicLevel(t *testing.T) {
	ws := &memSyncer{}
	logger := NewXLogger(
		WithLogLevel(LogLevelInfo),
		WithLogWriter(ws),
	)
	assert.Equal(t, zapcore.InfoLevel.String(), logger.Level())

	logger.Debug("suppressed")
	logger.IncreaseLogLevel(zapcore.DebugLevel)
	logger.Debug("emitted")
	require.NoError(t, logger.Sync())

	out := ws.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "emitted")
}

func TestXLoggerPlainTextEncoder(t *testing.T) {
	ws := &memSyncer{}
	logger := NewXLogger(
		WithLogEncoder(PlainText),
		WithLogWriter(ws),
	)
	logger.Info("plain record")
	assert.Contains(t, ws.String(), "plain record")
}
