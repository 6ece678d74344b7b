// Package capture provides microphone frame sources for the Sable pipeline.
//
// A [Source] pulls fixed-size PCM frames from an input device and delivers
// them over a bounded channel. Opening a hardware stream is a scoped resource:
// implementations guarantee the device handle is stopped and closed exactly
// once on every exit path, including cancellation and error paths, so repeated
// recording episodes never leak handles.
//
// Device format negotiation is a pure function over an abstract capability
// validator (see [Probe]) so the fallback ladder can be unit-tested without
// hardware.
package capture

import (
	"context"
	"errors"
	"time"

	"github.com/sable-voice/sable/pkg/audio"
)

// ErrClosed is returned by Start after the source has been closed.
var ErrClosed = errors.New("capture: source is closed")

// DeviceError wraps a capture-hardware failure. It is fatal when returned
// from initial device probing; mid-run occurrences degrade a single recording
// cycle instead.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return "capture: " + e.Op + ": " + e.Err.Error() }

func (e *DeviceError) Unwrap() error { return e.Err }

// Config describes one capture episode.
type Config struct {
	// SampleRate in Hz, as selected by [Probe].
	SampleRate int

	// Channels to open on the device. Frames are downmixed to mono before
	// delivery when this is 2.
	Channels int

	// FrameDuration is the fixed duration of each delivered frame.
	// Valid values are 10, 20, or 30 ms.
	FrameDuration time.Duration

	// Device selects a specific input device by name. Empty selects the
	// platform default.
	Device string

	// QueueDepth bounds the frame channel. Zero means a default of 16 frames;
	// the producer drops the oldest pending work by blocking briefly and then
	// discarding when the consumer stalls.
	QueueDepth int
}

// Source is a live microphone frame producer.
//
// The lifecycle is Start → Frames → Stop, optionally repeated, then Close.
// Frames is closed when the producer exits, whether due to Stop, context
// cancellation, or a device fault.
type Source interface {
	// Start opens the device stream and begins producing frames. It returns a
	// *DeviceError if the stream cannot be opened.
	Start(ctx context.Context) error

	// Frames returns the bounded delivery channel for the current episode.
	Frames() <-chan audio.Frame

	// Stop halts the current episode and releases the device stream. Safe to
	// call multiple times and after a producer-side exit.
	Stop() error

	// Close releases the underlying audio host. The source is unusable
	// afterwards.
	Close() error
}
