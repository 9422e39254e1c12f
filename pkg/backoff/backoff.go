// Package backoff computes the delay between join attempts.
//
// The default policy waits a fixed 7 seconds between attempts and never
// gives up. Growth, jitter and an attempt cap are opt-in.
package backoff

import (
	"math/rand"
	"sync"
	"time"
)

// Defaults for the join retry policy.
const (
	// DefaultInterval is the wait between two join attempts.
	DefaultInterval = 7000 * time.Millisecond

	// DefaultMultiplier keeps the interval fixed.
	DefaultMultiplier = 1.0
)

// Config describes a retry policy.
type Config struct {
	// Initial is the first delay. Zero selects DefaultInterval.
	Initial time.Duration

	// Max caps the delay. Values below Initial are raised to Initial.
	Max time.Duration

	// Multiplier grows the delay after each attempt. Values below 1 keep
	// the delay fixed.
	Multiplier float64

	// Jitter adds up to Jitter*delay of random extra wait.
	Jitter float64

	// MaxAttempts bounds the number of delays handed out before Exhausted
	// reports true. Zero means unlimited.
	MaxAttempts int
}

// DefaultConfig returns the fixed 7 second unlimited policy.
func DefaultConfig() Config {
	return Config{
		Initial:    DefaultInterval,
		Max:        DefaultInterval,
		Multiplier: DefaultMultiplier,
	}
}

// Backoff hands out successive retry delays.
type Backoff struct {
	mu sync.Mutex

	// Current delay (before jitter)
	current time.Duration

	initial     time.Duration
	max         time.Duration
	multiplier  float64
	jitter      float64
	maxAttempts int

	attempts int

	rng *rand.Rand
}

// New returns a Backoff for cfg, normalizing out-of-range fields.
func New(cfg Config) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = DefaultInterval
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = DefaultMultiplier
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}

	return &Backoff{
		current:     cfg.Initial,
		initial:     cfg.Initial,
		max:         cfg.Max,
		multiplier:  cfg.Multiplier,
		jitter:      cfg.Jitter,
		maxAttempts: cfg.MaxAttempts,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay (with jitter) and counts an attempt.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	b.attempts++
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next

	return delay
}

// Exhausted reports whether the attempt cap has been reached.
func (b *Backoff) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxAttempts > 0 && b.attempts >= b.maxAttempts
}

// Reset restores the initial delay and clears the attempt count.
// Call this after a successful join.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

// Attempts returns the number of delays handed out since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Current returns the current base delay (without jitter).
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*b.jitter*b.rng.Float64())
}
