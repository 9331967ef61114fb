package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry as the "service" field.
const ServiceName = "careerpath"

// New builds the process logger. json selects the JSON encoder for log
// collectors, debug lowers the level and enables stack traces on warnings.
// Extra fields are attached to every entry.
func New(json bool, debug bool, fields ...zap.Field) (*zap.Logger, error) {
	return config(json, debug).Build(zap.Fields(append([]zap.Field{zap.String("service", ServiceName)}, fields...)...))
}

func config(json, debug bool) zap.Config {
	encoding := "console"
	levelEncoder := zapcore.CapitalColorLevelEncoder
	if json {
		encoding = "json"
		levelEncoder = zapcore.LowercaseLevelEncoder
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	return zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		DisableStacktrace: !debug,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "msg",
			LevelKey:       "level",
			TimeKey:        "time",
			NameKey:        "logger",
			CallerKey:      "caller",
			StacktraceKey:  "stacktrace",
			EncodeLevel:    levelEncoder,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeName:     zapcore.FullNameEncoder,
		},
	}
}

// TruncateForLog shortens s to limit runes and appends an ellipsis when it was cut.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
