package link

import (
	"math/rand"
	"time"
)

// Delay returns how long to wait after failed dial attempt n (1-based).
// The first retry waits InitialDelay; each later one grows by Multiplier up
// to MaxDelay. With Jitter the result is scaled into [0.5, 1.5) of that value.
func (c BackoffConfig) Delay(n int, rng *rand.Rand) time.Duration {
	if c.InitialDelay <= 0 {
		return 0
	}
	growth := c.Multiplier
	if growth < 1 {
		growth = 1
	}
	delay := float64(c.InitialDelay)
	for i := 1; i < n; i++ {
		delay *= growth
		if c.MaxDelay > 0 && delay >= float64(c.MaxDelay) {
			delay = float64(c.MaxDelay)
			break
		}
	}
	if c.Jitter {
		scale := 1.0
		if rng != nil {
			scale = 0.5 + rng.Float64()
		}
		delay *= scale
	}
	return time.Duration(delay)
}
