package logger

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/reabridge/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of zap.
type ZapLogger struct {
	mu     sync.Mutex
	base   zapcore.Core   // primary sink: stderr, a file, or an injected core
	extra  []zapcore.Core // mirrors, e.g. the host console
	level  zap.AtomicLevel
	logger atomic.Pointer[zap.Logger]
}

// NewZapLogger creates a logger writing console-encoded lines to stderr at InfoLevel.
func NewZapLogger() contracts.Logger {
	return NewZapLoggerWithCore(newCore(zapcore.Lock(os.Stderr)))
}

// NewZapLoggerWithCore wraps an existing zap core. Tests pass an observer core here.
func NewZapLoggerWithCore(core zapcore.Core) *ZapLogger {
	z := &ZapLogger{
		base:  core,
		level: zap.NewAtomicLevelAt(zapcore.InfoLevel),
	}
	z.rebuild()
	return z
}

func newCore(ws zapcore.WriteSyncer) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), ws, zapcore.DebugLevel)
}

// rebuild must be called with z.mu held or before z is shared.
func (z *ZapLogger) rebuild() {
	cores := append([]zapcore.Core{z.base}, z.extra...)
	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2)).Named("reabridge")
	z.logger.Store(l)
}

// Tee mirrors every accepted entry to core as well.
func (z *ZapLogger) Tee(core zapcore.Core) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.extra = append(z.extra, core)
	z.rebuild()
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
	os.Exit(1)
}

// Field returns a new instance of Field
func (z *ZapLogger) Field() contracts.Field {
	return &zapField{}
}

// SetLevel sets the logging level
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(zapcore.Level(level))
}

// SetDestination switches the primary sink to stderr or to a file.
// Cores added with Tee are kept.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	var ws zapcore.WriteSyncer
	switch dest {
	case contracts.FileLog:
		if len(filePath) == 0 || filePath[0] == "" {
			z.Warn("file log destination requested without a path")
			return
		}
		f, err := os.OpenFile(filePath[0], os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			z.Error("failed to open log file", z.Field().String("path", filePath[0]), z.Field().Error("error", err))
			return
		}
		ws = zapcore.AddSync(f)
	default:
		ws = zapcore.Lock(os.Stderr)
	}

	z.mu.Lock()
	defer z.mu.Unlock()
	z.base = newCore(ws)
	z.rebuild()
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.logger.Load().Sync()
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	if !z.level.Enabled(level) {
		return
	}

	l := z.logger.Load()
	zf := toZapFields(fields)
	switch level {
	case zapcore.DebugLevel:
		l.Debug(msg, zf...)
	case zapcore.InfoLevel:
		l.Info(msg, zf...)
	case zapcore.WarnLevel:
		l.Warn(msg, zf...)
	case zapcore.ErrorLevel:
		l.Error(msg, zf...)
	case zapcore.FatalLevel:
		l.Fatal(msg, zf...)
	}
}

func toZapFields(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		f, ok := field.(*zapField)
		if !ok || f.key == "" {
			continue
		}
		out = append(out, f.zap())
	}
	return out
}

// zapField implements contracts.Field
type zapField struct {
	key   string
	value interface{}
}

func (f *zapField) zap() zap.Field {
	switch v := f.value.(type) {
	case error:
		return zap.NamedError(f.key, v)
	case time.Duration:
		return zap.Duration(f.key, v)
	default:
		return zap.Any(f.key, v)
	}
}

func (f *zapField) Bool(key string, val bool) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Int(key string, val int) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Float64(key string, val float64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) String(key string, val string) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Time(key string, val time.Time) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Duration(key string, val time.Duration) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Int64(key string, val int64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Error(key string, val error) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Uint64(key string, val uint64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Uint8(key string, val uint8) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Any(key string, val interface{}) contracts.Field {
	return &zapField{key, val}
}
