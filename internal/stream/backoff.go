package stream

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 1000 * time.Millisecond
	DefaultMaxDelay   = 10000 * time.Millisecond
)

// Backoff describes the reconnection policy: delays double from Base up to Max, for at most MaxRetries attempts.
type Backoff struct {
	MaxRetries int
	Base       time.Duration
	Max        time.Duration
}

// DefaultBackoff returns the 3 attempt, 1s base, 10s cap policy.
func DefaultBackoff() Backoff {
	return Backoff{MaxRetries: DefaultMaxRetries, Base: DefaultBaseDelay, Max: DefaultMaxDelay}
}

func (b Backoff) withDefaults() Backoff {
	if b.MaxRetries <= 0 {
		b.MaxRetries = DefaultMaxRetries
	}
	if b.Base <= 0 {
		b.Base = DefaultBaseDelay
	}
	if b.Max <= 0 {
		b.Max = DefaultMaxDelay
	}
	if b.Max < b.Base {
		b.Max = b.Base
	}
	return b
}

// Delay returns min(Base * 2^attempt, Max) for a zero-based attempt index.
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.withDefaults()
	if attempt < 0 {
		attempt = 0
	}

	eb := &backoff.ExponentialBackOff{
		InitialInterval:     b.Base,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         b.Max,
	}
	eb.Reset()

	var d time.Duration
	for i := 0; i <= attempt; i++ {
		d = eb.NextBackOff()
		if d >= b.Max {
			return b.Max
		}
	}
	return d
}

// Schedule returns the delays of every automatic attempt, in order.
func (b Backoff) Schedule() []time.Duration {
	b = b.withDefaults()
	delays := make([]time.Duration, b.MaxRetries)
	for i := range delays {
		delays[i] = b.Delay(i)
	}
	return delays
}
