// Package mock provides a test double for the stt package.
package mock

import (
	"context"
	"sync"

	"github.com/sable-voice/sable/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// WAV is a copy of the payload passed to Transcribe.
	WAV []byte
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Transcript is returned by every Transcribe call.
	Transcript string

	// TranscribeErr, if non-nil, is returned by every Transcribe call.
	TranscribeErr error

	// TranscribeCalls records every call in order.
	TranscribeCalls []TranscribeCall
}

var _ stt.Provider = (*Provider)(nil)

// Transcribe records the call and returns Transcript, TranscribeErr.
func (p *Provider) Transcribe(ctx context.Context, wav []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(wav))
	copy(cp, wav)
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{WAV: cp})
	if p.TranscribeErr != nil {
		return "", p.TranscribeErr
	}
	return p.Transcript, nil
}
