// Package listen turns a live frame stream into a bounded utterance.
//
// A recording collects every captured frame, speech and silence alike, so the
// transcriber sees the full signal. What the VAD controls is when the
// recording closes: a run of trailing silence ends it, and a hard duration
// ceiling bounds it regardless of what the detector reports.
package listen

import (
	"errors"
	"time"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/provider/vad"
)

// CloseReason says why a recording ended.
type CloseReason int

const (
	// ReasonNone means the recording is still open.
	ReasonNone CloseReason = iota

	// ReasonSilence means the trailing-silence window elapsed.
	ReasonSilence

	// ReasonMaxDuration means the hard ceiling was reached.
	ReasonMaxDuration

	// ReasonSourceClosed means the frame source ended the stream.
	ReasonSourceClosed

	// ReasonCancelled means the surrounding context was cancelled.
	ReasonCancelled
)

// String returns a log-friendly name for the reason.
func (r CloseReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonSilence:
		return "silence"
	case ReasonMaxDuration:
		return "max_duration"
	case ReasonSourceClosed:
		return "source_closed"
	case ReasonCancelled:
		return "cancelled"
	}
	return "unknown"
}

// GateConfig parameterises a recording gate.
type GateConfig struct {
	// FrameDuration is the duration of each observed frame.
	FrameDuration time.Duration

	// SilenceTimeout is the span of consecutive trailing silence that closes
	// the recording. The gate closes on exactly the frame that completes
	// this span.
	SilenceTimeout time.Duration

	// MaxDuration is the hard ceiling on recording length.
	MaxDuration time.Duration
}

// Gate decides, frame by frame, when a recording is complete. It is a pure
// counter state machine around a VAD session; it does not own the session.
//
// A Gate serves one recording and is not safe for concurrent use.
type Gate struct {
	sess vad.Session

	silenceNeeded int
	maxFrames     int

	silenceRun int
	frames     int
}

// NewGate builds a gate over sess.
func NewGate(sess vad.Session, cfg GateConfig) (*Gate, error) {
	if cfg.FrameDuration <= 0 {
		return nil, errors.New("listen: frame duration must be positive")
	}
	if cfg.SilenceTimeout <= 0 || cfg.MaxDuration <= 0 {
		return nil, errors.New("listen: silence timeout and max duration must be positive")
	}

	return &Gate{
		sess:          sess,
		silenceNeeded: framesFor(cfg.SilenceTimeout, cfg.FrameDuration),
		maxFrames:     framesFor(cfg.MaxDuration, cfg.FrameDuration),
	}, nil
}

// framesFor converts a span to a frame count, rounding up so partial frames
// still count toward the span.
func framesFor(span, frame time.Duration) int {
	n := int((span + frame - 1) / frame)
	if n < 1 {
		n = 1
	}
	return n
}

// Observe classifies one frame and reports whether the recording is now
// complete. Every frame belongs in the recording regardless of the verdict;
// callers append it before or after calling Observe.
//
// A VAD failure on a frame degrades to silence. A broken detector therefore
// closes the recording after the trailing-silence window rather than holding
// the microphone open until the ceiling.
func (g *Gate) Observe(frame audio.Frame) CloseReason {
	speech, err := g.sess.IsSpeech(frame)
	if err != nil {
		speech = false
	}

	g.frames++
	if speech {
		g.silenceRun = 0
	} else {
		g.silenceRun++
	}

	if g.silenceRun >= g.silenceNeeded {
		return ReasonSilence
	}
	if g.frames >= g.maxFrames {
		return ReasonMaxDuration
	}
	return ReasonNone
}

// Frames returns how many frames the gate has observed.
func (g *Gate) Frames() int { return g.frames }
