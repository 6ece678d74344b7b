// Package vad defines the Engine interface for voice activity detection
// backends.
//
// A VAD engine wraps a frame-level speech classifier and surfaces it as a
// stateful per-recording session. Each session owns its own internal state so
// concurrent recording episodes never interfere.
//
// Classification is synchronous: IsSpeech returns immediately, making it
// suitable for the low-latency gate that decides when a recording ends.
//
// Engines must be safe for concurrent use. A single Session must not be
// shared across goroutines unless its implementation documents otherwise.
package vad

import (
	"errors"
	"time"

	"github.com/sable-voice/sable/pkg/audio"
)

// ErrFrameSize is returned when a frame's sample count does not match the
// session's configured frame duration.
var ErrFrameSize = errors.New("vad: frame size does not match session configuration")

// Config holds the parameters for a VAD session.
type Config struct {
	// SampleRate is the audio sample rate in Hz. Must match the rate of the
	// frames passed to IsSpeech. Supported values depend on the backend;
	// WebRTC accepts 8000, 16000, 32000, and 48000.
	SampleRate int

	// FrameDuration is the fixed duration of each frame. Valid values are
	// 10, 20, or 30 ms.
	FrameDuration time.Duration

	// Aggressiveness tunes how strictly non-speech is filtered, from 0
	// (least aggressive, most frames pass as speech) to 3 (most aggressive).
	Aggressiveness int
}

// Session classifies frames for one recording episode.
type Session interface {
	// IsSpeech reports whether the frame contains speech. The frame must
	// match the SampleRate and FrameDuration the session was created with;
	// a mismatch returns ErrFrameSize.
	IsSpeech(frame audio.Frame) (bool, error)

	// Reset clears accumulated state so a session can be reused for the next
	// recording episode without carrying over smoothing history.
	Reset()

	// Close releases session resources. Calling Close more than once is safe.
	Close() error
}

// Engine is the factory for VAD sessions, implemented by each backend.
type Engine interface {
	// NewSession creates a session with the given configuration. Returns an
	// error for unsupported sample rates, frame durations, or aggressiveness
	// values.
	NewSession(cfg Config) (Session, error)
}

// Validate checks the parts of cfg common to all backends.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("vad: sample rate must be positive")
	}
	switch c.FrameDuration {
	case 10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond:
	default:
		return errors.New("vad: frame duration must be 10ms, 20ms, or 30ms")
	}
	if c.Aggressiveness < 0 || c.Aggressiveness > 3 {
		return errors.New("vad: aggressiveness must be in [0, 3]")
	}
	return nil
}

// Disabled is an Engine whose sessions classify every frame as speech. With
// no silence ever detected, a recording gated by it only ends at the maximum
// duration ceiling.
type Disabled struct{}

var _ Engine = Disabled{}

// NewSession implements Engine.
func (Disabled) NewSession(cfg Config) (Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return disabledSession{}, nil
}

type disabledSession struct{}

func (disabledSession) IsSpeech(audio.Frame) (bool, error) { return true, nil }
func (disabledSession) Reset()                             {}
func (disabledSession) Close() error                       { return nil }
