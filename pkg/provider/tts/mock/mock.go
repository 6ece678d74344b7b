// Package mock provides a test double for the tts package.
package mock

import (
	"context"
	"sync"

	"github.com/sable-voice/sable/pkg/provider/tts"
)

// Speaker is a mock implementation of tts.Speaker.
type Speaker struct {
	mu sync.Mutex

	// SayErr, if non-nil, is returned by every Say call.
	SayErr error

	// OnSay, if set, runs for every chunk before it is recorded. Useful for
	// raising an interrupt mid-playback from a test.
	OnSay func(chunk string)

	// Chunks records every chunk passed to Say in order.
	Chunks []string
}

var _ tts.Speaker = (*Speaker)(nil)

// Say records the chunk and returns SayErr.
func (s *Speaker) Say(ctx context.Context, chunk string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.OnSay != nil {
		s.OnSay(chunk)
	}
	s.mu.Lock()
	s.Chunks = append(s.Chunks, chunk)
	s.mu.Unlock()
	return s.SayErr
}

// Said returns a copy of the recorded chunks.
func (s *Speaker) Said() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Chunks...)
}
