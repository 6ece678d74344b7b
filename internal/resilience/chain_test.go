package resilience

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestChainFirstSuccessWins(t *testing.T) {
	t.Parallel()

	c := NewChain[string]().
		Add("primary", "a", BreakerConfig{}).
		Add("fallback", "b", BreakerConfig{})

	var tried []string
	err := c.Try(func(name, v string) error {
		tried = append(tried, name)
		return nil
	})
	if err != nil {
		t.Fatalf("Try: %v", err)
	}
	if len(tried) != 1 || tried[0] != "primary" {
		t.Fatalf("tried = %v, want [primary]", tried)
	}
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	t.Parallel()

	c := NewChain[string]().
		Add("primary", "a", BreakerConfig{}).
		Add("fallback", "b", BreakerConfig{})

	var tried []string
	err := c.Try(func(name, v string) error {
		tried = append(tried, name)
		if name == "primary" {
			return errBoom
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Try: %v", err)
	}
	if len(tried) != 2 || tried[1] != "fallback" {
		t.Fatalf("tried = %v, want [primary fallback]", tried)
	}
}

func TestChainAllFailed(t *testing.T) {
	t.Parallel()

	c := NewChain[string]().
		Add("primary", "a", BreakerConfig{}).
		Add("fallback", "b", BreakerConfig{})

	err := c.Try(func(name, v string) error { return errBoom })
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("got %v, want ErrAllFailed", err)
	}
	if !errors.Is(err, errBoom) {
		t.Fatalf("per-entry error not wrapped: %v", err)
	}
	for _, name := range []string{"primary", "fallback"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %q", err, name)
		}
	}
}

func TestChainSkipsOpenBreaker(t *testing.T) {
	t.Parallel()

	c := NewChain[string]().
		Add("primary", "a", BreakerConfig{Threshold: 1, Cooldown: time.Hour}).
		Add("fallback", "b", BreakerConfig{})

	// Trip the primary's breaker.
	if err := c.Try(func(name, v string) error {
		if name == "primary" {
			return errBoom
		}
		return nil
	}); err != nil {
		t.Fatalf("first Try: %v", err)
	}

	var tried []string
	if err := c.Try(func(name, v string) error {
		tried = append(tried, name)
		return nil
	}); err != nil {
		t.Fatalf("second Try: %v", err)
	}
	if len(tried) != 1 || tried[0] != "fallback" {
		t.Fatalf("tried = %v, want [fallback] with primary skipped", tried)
	}
}

func TestChainEmpty(t *testing.T) {
	t.Parallel()

	c := NewChain[int]()
	err := c.Try(func(string, int) error { return nil })
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("got %v, want ErrAllFailed", err)
	}
}
