// Package mock provides test doubles for the vad package interfaces.
//
// Use Engine to verify that sessions are created with the expected Config.
// Use Session to script per-frame speech decisions and inspect the frames
// that were submitted.
package mock

import (
	"sync"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/provider/vad"
)

// Engine is a mock implementation of vad.Engine.
type Engine struct {
	mu sync.Mutex

	// Session is returned by NewSession. If nil, NewSession returns a new
	// default Session.
	Session vad.Session

	// NewSessionErr, if non-nil, is returned as the error from NewSession.
	NewSessionErr error

	// NewSessionCalls records the Config of every call in order.
	NewSessionCalls []vad.Config
}

var _ vad.Engine = (*Engine)(nil)

// NewSession records the call and returns Session, NewSessionErr.
func (e *Engine) NewSession(cfg vad.Config) (vad.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.NewSessionCalls = append(e.NewSessionCalls, cfg)
	if e.NewSessionErr != nil {
		return nil, e.NewSessionErr
	}
	if e.Session != nil {
		return e.Session, nil
	}
	return &Session{}, nil
}

// Session is a scriptable implementation of vad.Session.
//
// Decisions are consumed in order; once exhausted, every further frame is
// classified using Default.
type Session struct {
	mu sync.Mutex

	// Decisions holds the speech classification for successive frames.
	Decisions []bool

	// Default is the classification once Decisions is exhausted.
	Default bool

	// IsSpeechErr, if non-nil, is returned by every IsSpeech call.
	IsSpeechErr error

	// CloseErr, if non-nil, is returned by Close.
	CloseErr error

	// Frames records a copy of every frame submitted to IsSpeech.
	Frames []audio.Frame

	// ResetCallCount is the number of times Reset was called.
	ResetCallCount int

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int

	next int
}

var _ vad.Session = (*Session)(nil)

// IsSpeech records the frame and returns the next scripted decision.
func (s *Session) IsSpeech(frame audio.Frame) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := frame
	cp.Samples = append([]int16(nil), frame.Samples...)
	s.Frames = append(s.Frames, cp)

	if s.IsSpeechErr != nil {
		return false, s.IsSpeechErr
	}
	if s.next < len(s.Decisions) {
		d := s.Decisions[s.next]
		s.next++
		return d, nil
	}
	return s.Default, nil
}

// Reset records the call.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ResetCallCount++
	s.next = 0
}

// Close records the call and returns CloseErr.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCallCount++
	return s.CloseErr
}
