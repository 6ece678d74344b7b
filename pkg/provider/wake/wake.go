// Package wake defines the Engine interface for wake word detection backends.
//
// A wake engine consumes fixed-size PCM frames and reports when the
// configured keyword is heard. Detection is synchronous and frame-oriented so
// the monitor loop can interleave it with other work.
//
// Engines prescribe their own frame length (see FrameLength); callers must
// re-block captured audio to that size before calling Process.
package wake

import (
	"errors"

	"github.com/sable-voice/sable/pkg/audio"
)

// ErrClosed is returned by Process after the engine has been closed.
var ErrClosed = errors.New("wake: engine is closed")

// Config holds the parameters for a wake engine.
type Config struct {
	// Keyword is the wake word to listen for. Backends with a fixed keyword
	// inventory reject unknown values at construction time.
	Keyword string

	// Sensitivity trades misses against false alarms, in [0.0, 1.0]. Higher
	// values detect more readily at the cost of false triggers.
	Sensitivity float32

	// AccessKey authenticates against the backend's licensing service, for
	// backends that require one.
	AccessKey string
}

// Engine is a frame-oriented wake word detector.
//
// A wake engine is a long-lived resource: one instance serves the whole
// process lifetime and is closed on shutdown. Engines are not safe for
// concurrent Process calls.
type Engine interface {
	// SampleRate returns the PCM sample rate the engine requires, in Hz.
	SampleRate() int

	// FrameLength returns the exact number of samples Process expects.
	FrameLength() int

	// Process analyses one frame and reports whether the keyword was
	// detected in it. The frame must carry exactly FrameLength samples at
	// SampleRate.
	Process(frame audio.Frame) (bool, error)

	// Close releases the detector. Calling Close more than once is safe.
	Close() error
}

// Disabled is an Engine that never detects. It stands in when wake word
// monitoring is turned off or the real backend fails to initialise; the
// assistant then relies on its other activation paths.
type Disabled struct{}

var _ Engine = Disabled{}

// SampleRate implements Engine with the pipeline's native rate.
func (Disabled) SampleRate() int { return 16000 }

// FrameLength implements Engine with a conventional 512-sample block.
func (Disabled) FrameLength() int { return 512 }

// Process implements Engine and never detects.
func (Disabled) Process(audio.Frame) (bool, error) { return false, nil }

// Close implements Engine.
func (Disabled) Close() error { return nil }
