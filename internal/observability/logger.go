package observability

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/rangephy/internal/logging"
)

// InitLogger configures the runtime logging profile and installs a logger tagged with app
// as the global zerolog logger.
func InitLogger(app string) zerolog.Logger {
	return InitLoggerTo(app, os.Stdout)
}

// InitLoggerTo is InitLogger writing to out; CLIs whose stdout carries data log to stderr.
func InitLoggerTo(app string, out io.Writer) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := zerolog.New(logging.Writer(out)).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
