// Package mock provides a test double for the llm package.
package mock

import (
	"context"
	"sync"

	"github.com/sable-voice/sable/pkg/provider/llm"
)

// Provider is a mock implementation of llm.Provider.
//
// Responses are consumed in order; once exhausted, every further Complete
// call returns Response.
type Provider struct {
	mu sync.Mutex

	// Responses holds replies for successive Complete calls.
	Responses []*llm.CompletionResponse

	// Response is returned once Responses is exhausted. If nil, an empty
	// response is returned.
	Response *llm.CompletionResponse

	// CompleteErr, if non-nil, is returned by every Complete call.
	CompleteErr error

	// TokenCount is returned by CountTokens.
	TokenCount int

	// CountTokensErr, if non-nil, is returned by CountTokens.
	CountTokensErr error

	// CompleteCalls records every request in order.
	CompleteCalls []llm.CompletionRequest

	next int
}

var _ llm.Provider = (*Provider)(nil)

// Complete records the call and returns the next scripted response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = append(p.CompleteCalls, req)
	if p.CompleteErr != nil {
		return nil, p.CompleteErr
	}
	if p.next < len(p.Responses) {
		resp := p.Responses[p.next]
		p.next++
		return resp, nil
	}
	if p.Response != nil {
		return p.Response, nil
	}
	return &llm.CompletionResponse{}, nil
}

// CountTokens returns TokenCount, CountTokensErr.
func (p *Provider) CountTokens(messages []llm.Message) (int, error) {
	if p.CountTokensErr != nil {
		return 0, p.CountTokensErr
	}
	return p.TokenCount, nil
}
