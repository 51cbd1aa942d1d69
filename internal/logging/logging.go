// FilePath: internal/logging/logging.go
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide sugared logger. It is a no-op logger until Init runs
// so packages can log safely from tests.
var L = zap.NewNop().Sugar()

// Init builds a production zap logger tagged with the service name and
// installs it as L.
func Init(level, serviceName string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	L = logger.Sugar()
	return nil
}

// WithRequestID returns a child of L carrying the request_id field
func WithRequestID(requestID string) *zap.SugaredLogger {
	return L.With(zap.String("request_id", requestID))
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L.Sync()
}
