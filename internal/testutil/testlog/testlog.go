package testlog

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/rangephy/internal/logging"
)

// Start routes the global logger through t.Log for the duration of the test.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	prev := log.Logger
	log.Logger = zerolog.New(logging.Writer(zerolog.NewTestWriter(t))).With().Str("test", t.Name()).Logger()
	t.Cleanup(func() { log.Logger = prev })
	log.Debug().Msg("test start")
}
