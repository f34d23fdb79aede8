package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleWriter forwards each encoded entry to a host console function.
type consoleWriter func(msg string)

func (w consoleWriter) Write(p []byte) (int, error) {
	w(string(p))
	return len(p), nil
}

// NewHostConsoleCore returns a core that prints entries at or above level through
// write, one line per call. Timestamps are left out; the host console has its own.
func NewHostConsoleCore(write func(msg string), level zapcore.LevelEnabler) zapcore.Core {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.NameKey = "logger"
	cfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + name + "]")
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(consoleWriter(write)), level)
}
