// Package resilience protects the cloud-provider stages of the pipeline.
//
// [Breaker] is a failure-threshold circuit breaker with a single-probe
// half-open phase: after the cooldown one call is let through, and its result
// alone decides whether the breaker closes again. [Chain] composes ordered
// provider alternatives, each behind its own breaker.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned when a breaker rejects a call during its cooldown.
var ErrOpen = errors.New("resilience: breaker is open")

// BreakerConfig holds tuning knobs for a [Breaker].
type BreakerConfig struct {
	// Name is a human-readable label used in log messages.
	Name string

	// Threshold is the number of consecutive failures before the breaker
	// opens. Default: 3.
	Threshold int

	// Cooldown is how long the breaker rejects calls after opening before
	// it lets a single probe through. Default: 30s.
	Cooldown time.Duration
}

// Breaker is a consecutive-failure circuit breaker. While open it rejects
// calls with [ErrOpen]; after the cooldown exactly one probe is admitted, and
// that probe's outcome closes or re-opens the breaker.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	failures int
	open     bool
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a [Breaker]. Zero-value config fields are replaced with
// defaults.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{
		name:      cfg.Name,
		threshold: cfg.Threshold,
		cooldown:  cfg.Cooldown,
		now:       time.Now,
	}
}

// Do runs fn if the breaker admits the call, recording the outcome.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// admit decides whether a call may proceed.
func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}
	if b.probing {
		// Another goroutine already holds the probe slot.
		return ErrOpen
	}
	if b.now().Sub(b.openedAt) < b.cooldown {
		return ErrOpen
	}

	b.probing = true
	slog.Info("breaker admitting probe after cooldown", "name", b.name)
	return nil
}

// record applies a call outcome to the breaker state.
func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.open {
			slog.Info("breaker closed after successful probe", "name", b.name)
		}
		b.open = false
		b.probing = false
		b.failures = 0
		return
	}

	if b.probing {
		// The probe failed; back to a full cooldown.
		b.probing = false
		b.openedAt = b.now()
		slog.Warn("breaker probe failed, cooldown restarted", "name", b.name)
		return
	}

	b.failures++
	if !b.open && b.failures >= b.threshold {
		b.open = true
		b.openedAt = b.now()
		slog.Warn("breaker opened",
			"name", b.name,
			"consecutive_failures", b.failures,
		)
	}
}

// Open reports whether the breaker is currently rejecting calls.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && (b.probing || b.now().Sub(b.openedAt) < b.cooldown)
}

// Reset forces the breaker closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
	b.probing = false
	b.failures = 0
}
