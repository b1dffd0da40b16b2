package retry

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff doubles the wait between attempts up to a ceiling,
// with optional jitter.
type ExponentialBackoff struct {
	initial     time.Duration
	ceiling     time.Duration
	factor      float64
	maxAttempts int

	// jitter of 0.1 means the delay varies by up to +/- 10%.
	jitter float64
	random func() float64
}

// BackoffOption configures an ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.initial = d }
}

// WithMaxDelay caps the delay between retries.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.ceiling = d }
}

// WithMultiplier sets the growth factor between attempts.
func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.factor = m }
}

// WithJitter sets the jitter fraction (0.0-1.0).
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitter = j }
}

// WithRandom replaces the source of jitter. Tests use a constant.
func WithRandom(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.random = f }
}

// NewExponentialBackoff returns a strategy allowing maxAttempts retries
// (-1 for unlimited) after the initial attempt.
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initial:     100 * time.Millisecond,
		ceiling:     30 * time.Second,
		factor:      2.0,
		maxAttempts: maxAttempts,
		jitter:      0.1,
		random:      rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NextDelay returns initial * factor^attempt, capped and jittered.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	d := float64(b.initial) * math.Pow(b.factor, float64(attempt))
	if d > float64(b.ceiling) {
		d = float64(b.ceiling)
	}
	if b.jitter > 0 && b.random != nil {
		d *= 1 + b.jitter*(b.random()*2-1)
	}
	return time.Duration(d)
}

// MaxAttempts returns the number of retries allowed after the first attempt.
func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}
