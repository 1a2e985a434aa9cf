package link

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

// Dial connects to a PHY listener, retrying with backoff up to cfg.MaxDialAttempts.
func Dial(ctx context.Context, network, addr string, cfg Config) (net.Conn, error) {
	attempts := cfg.MaxDialAttempts
	if attempts < 1 {
		attempts = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	dialer := net.Dialer{Timeout: cfg.DialTimeout}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err == nil {
			log.Debug().Str("addr", addr).Int("attempt", attempt).Msg("link connected")
			return conn, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		delay := cfg.Backoff.Delay(attempt, rng)
		log.Warn().Err(err).Str("addr", addr).Int("attempt", attempt).Dur("retry_in", delay).Msg("link dial failed")
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("link: dial %s failed after %d attempts: %w", addr, attempts, lastErr)
}
