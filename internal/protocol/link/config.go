package link

import (
	"time"

	"github.com/danmuck/rangephy/internal/protocol"
	"github.com/danmuck/rangephy/internal/protocol/frame"
)

// BackoffConfig defines dial retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines link timeouts and decode limits.
type Config struct {
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxDialAttempts int
	Backoff         BackoffConfig
	Frame           frame.Limits
	Codec           protocol.Limits
}

// DefaultConfig returns defaults sized for a MAC and PHY on the same host or LAN.
func DefaultConfig() Config {
	return Config{
		DialTimeout:     5 * time.Second,
		ReadTimeout:     0,
		WriteTimeout:    5 * time.Second,
		MaxDialAttempts: 5,
		Backoff: BackoffConfig{
			InitialDelay: 100 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     2 * time.Second,
			Jitter:       true,
		},
		Frame: frame.DefaultLimits(),
		Codec: protocol.DefaultLimits(),
	}
}
