package infra

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so the rest of the worker can depend on the
// logging contract without importing the third-party module directly.
type Logger = zerolog.Logger

// NewLogger constructs the process-wide logger. Development gets a colored
// console writer at debug level; everything else logs structured JSON at info.
func NewLogger(appEnv string) Logger {
	logger := zerolog.New(os.Stdout).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Str("service", "worker").
		Logger()

	if appEnv == "development" {
		logger = logger.
			Level(zerolog.DebugLevel).
			Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}
