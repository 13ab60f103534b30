package xlog

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logLevel string

const (
	LogLevelDebug logLevel = "DEBUG"
	LogLevelInfo  logLevel = "INFO"
	LogLevelWarn  logLevel = "WARN"
	LogLevelError logLevel = "ERROR"
)

func (lvl logLevel) zapLevel() zapcore.Level {
	switch lvl {
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelDebug:
		fallthrough
	default:
	}
	return zapcore.DebugLevel
}

func (lvl logLevel) String() string {
	return string(lvl)
}

type logEncoderType uint8

const (
	JSON logEncoderType = iota
	PlainText
)

func (enc logEncoderType) newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	if enc == PlainText {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

// XLogger is a thin wrapper around the Uber zap logger with a
// concurrently adjustable level. It is the one logging doorway for
// every component of this library.
type XLogger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(err error, msg string, fields ...zap.Field)
	IncreaseLogLevel(level zapcore.Level)
	Level() string
	Sync() error
}

var _ XLogger = (*xLogger)(nil)

type xLogger struct {
	logger              atomic.Pointer[zap.Logger]
	dynamicLevelEnabler zap.AtomicLevel
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, fields...)
}

func (l *xLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

// IncreaseLogLevel we can increase or decrease the log level concurrently.
func (l *xLogger) IncreaseLogLevel(level zapcore.Level) {
	l.dynamicLevelEnabler.SetLevel(level)
}

func (l *xLogger) Level() string {
	return l.dynamicLevelEnabler.Level().String()
}

func (l *xLogger) Sync() error {
	return l.logger.Load().Sync()
}

type loggerCfg struct {
	writer    zapcore.WriteSyncer
	component string
	level     logLevel
	encoder   logEncoderType
}

type XLoggerOption func(*loggerCfg)

func WithLogLevel(level logLevel) XLoggerOption {
	return func(cfg *loggerCfg) {
		cfg.level = level
	}
}

func WithLogEncoder(enc logEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) {
		cfg.encoder = enc
	}
}

func WithLogWriter(ws zapcore.WriteSyncer) XLoggerOption {
	return func(cfg *loggerCfg) {
		cfg.writer = ws
	}
}

// WithComponent tags every record with a component field, e.g.
// "sysinfo/memory".
func WithComponent(name string) XLoggerOption {
	return func(cfg *loggerCfg) {
		cfg.component = name
	}
}

func NewXLogger(opts ...XLoggerOption) XLogger {
	cfg := &loggerCfg{
		level:   LogLevelInfo,
		encoder: JSON,
		writer:  zapcore.Lock(os.Stdout),
	}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	lvlEnabler := zap.NewAtomicLevelAt(cfg.level.zapLevel())
	core := zapcore.NewCore(cfg.encoder.newEncoder(encCfg), cfg.writer, lvlEnabler)

	zl := zap.New(core)
	if len(cfg.component) > 0 {
		zl = zl.With(zap.String("component", cfg.component))
	}

	l := &xLogger{
		dynamicLevelEnabler: lvlEnabler,
	}
	l.logger.Store(zl)
	return l
}
