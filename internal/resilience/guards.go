package resilience

import (
	"context"
	"fmt"

	"github.com/sable-voice/sable/pkg/provider/llm"
	"github.com/sable-voice/sable/pkg/provider/stt"
)

// STTGuard wraps an [stt.Provider] with a circuit breaker so that a
// persistently failing transcription backend stops being hammered on every
// utterance.
type STTGuard struct {
	inner   stt.Provider
	breaker *Breaker
}

var _ stt.Provider = (*STTGuard)(nil)

// GuardSTT wraps provider with a breaker configured by cfg.
func GuardSTT(provider stt.Provider, cfg BreakerConfig) *STTGuard {
	if cfg.Name == "" {
		cfg.Name = "stt"
	}
	return &STTGuard{
		inner:   provider,
		breaker: NewBreaker(cfg),
	}
}

// Transcribe forwards to the wrapped provider through the breaker. When the
// breaker is open the call returns [ErrOpen] without touching the backend.
func (g *STTGuard) Transcribe(ctx context.Context, wav []byte) (string, error) {
	var transcript string
	err := g.breaker.Do(func() error {
		var err error
		transcript, err = g.inner.Transcribe(ctx, wav)
		return err
	})
	if err != nil {
		return "", err
	}
	return transcript, nil
}

// LLMChain is an [llm.Provider] that tries an ordered list of backends, each
// behind its own breaker. The first configured backend is the primary; the
// rest are fallbacks in priority order.
type LLMChain struct {
	chain *Chain[llm.Provider]
}

var _ llm.Provider = (*LLMChain)(nil)

// NewLLMChain creates an empty chain. Add backends with [LLMChain.Add] in
// priority order before use.
func NewLLMChain() *LLMChain {
	return &LLMChain{chain: NewChain[llm.Provider]()}
}

// Add appends a backend guarded by a fresh breaker.
func (c *LLMChain) Add(name string, provider llm.Provider, cfg BreakerConfig) *LLMChain {
	c.chain.Add(name, provider, cfg)
	return c
}

// Len returns the number of configured backends.
func (c *LLMChain) Len() int { return c.chain.Len() }

// Complete tries each backend in order until one returns a response.
func (c *LLMChain) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	var resp *llm.CompletionResponse
	err := c.chain.Try(func(name string, p llm.Provider) error {
		r, err := p.Complete(ctx, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resilience: llm chain: %w", err)
	}
	return resp, nil
}

// CountTokens delegates to the first backend regardless of breaker state.
// Token counting is local estimation and never hits the network.
func (c *LLMChain) CountTokens(messages []llm.Message) (int, error) {
	if c.chain.Len() == 0 {
		return 0, fmt.Errorf("resilience: llm chain: no backends configured")
	}
	return c.chain.entries[0].value.CountTokens(messages)
}
