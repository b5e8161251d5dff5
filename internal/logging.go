package internal

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sharedLogger *zap.SugaredLogger
	loggerOnce   sync.Once
)

// InitLogging builds the process-wide logger. LOG_LEVEL selects the level (default info).
func InitLogging() {
	loggerOnce.Do(func() {
		encoderConfig := zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			MessageKey:     "M",
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.0000"),
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeName:     zapcore.FullNameEncoder,
		}

		level := zapcore.InfoLevel
		if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
			if parsed, err := zapcore.ParseLevel(lvl); err == nil {
				level = parsed
			}
		}

		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			level,
		)
		sharedLogger = zap.New(core).Sugar()
	})
}

// Logger returns the shared logger, initialising it on first use
func Logger() *zap.SugaredLogger {
	InitLogging()
	return sharedLogger
}

// Named returns a child logger tagged with a component name
func Named(component string) *zap.SugaredLogger {
	return Logger().Named(component)
}

// SyncLogging flushes buffered log entries
func SyncLogging() {
	if sharedLogger != nil {
		_ = sharedLogger.Sync()
	}
}
