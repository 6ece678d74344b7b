package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned by [Chain.Try] when every entry either failed or
// was skipped because its breaker is open.
var ErrAllFailed = errors.New("resilience: all chain entries failed")

// Chain holds an ordered list of alternatives of type T, each guarded by its
// own [Breaker]. Try walks the list in order, skipping entries whose breaker
// is open, until one call succeeds.
type Chain[T any] struct {
	entries []chainEntry[T]
}

type chainEntry[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// NewChain creates an empty chain.
func NewChain[T any]() *Chain[T] {
	return &Chain[T]{}
}

// Add appends an entry guarded by a fresh breaker with the given config.
// The entry name overrides cfg.Name.
func (c *Chain[T]) Add(name string, value T, cfg BreakerConfig) *Chain[T] {
	cfg.Name = name
	c.entries = append(c.entries, chainEntry[T]{
		name:    name,
		value:   value,
		breaker: NewBreaker(cfg),
	})
	return c
}

// Len returns the number of entries in the chain.
func (c *Chain[T]) Len() int { return len(c.entries) }

// Try calls fn for each entry in order until one succeeds. Entries whose
// breaker is open are skipped without invoking fn. On total failure the
// returned error wraps [ErrAllFailed] together with every per-entry error.
func (c *Chain[T]) Try(fn func(name string, value T) error) error {
	if len(c.entries) == 0 {
		return fmt.Errorf("%w: chain is empty", ErrAllFailed)
	}

	var errs []error
	for i, e := range c.entries {
		err := e.breaker.Do(func() error { return fn(e.name, e.value) })
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		if i < len(c.entries)-1 && !errors.Is(err, ErrOpen) {
			slog.Warn("chain entry failed, trying next",
				"entry", e.name,
				"next", c.entries[i+1].name,
				"error", err,
			)
		}
	}
	return fmt.Errorf("%w: %w", ErrAllFailed, errors.Join(errs...))
}
