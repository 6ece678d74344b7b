package listen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/capture"
	"github.com/sable-voice/sable/pkg/provider/vad"
)

// pollInterval bounds how long the record loop waits for a frame before
// rechecking cancellation. A stalled device therefore cannot wedge shutdown.
const pollInterval = 100 * time.Millisecond

// Config parameterises a Recorder.
type Config struct {
	// SampleRate and FrameDuration describe the capture format; they must
	// match what the source delivers.
	SampleRate    int
	FrameDuration time.Duration

	// Aggressiveness is passed through to the VAD session.
	Aggressiveness int

	// SilenceTimeout and MaxDuration feed the gate. See [GateConfig].
	SilenceTimeout time.Duration
	MaxDuration    time.Duration
}

// Recorder captures one utterance per Record call: it runs a capture episode,
// feeds every frame through a fresh VAD-backed [Gate], and returns the
// collected segment when the gate closes.
type Recorder struct {
	src    capture.Source
	engine vad.Engine
	cfg    Config
	log    *slog.Logger
}

// NewRecorder builds a recorder over src and engine.
func NewRecorder(src capture.Source, engine vad.Engine, cfg Config, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{src: src, engine: engine, cfg: cfg, log: log}
}

// Record captures one utterance. The returned segment holds every frame that
// arrived before the close, in capture order; a recording during which no
// frames arrived yields an empty segment and ReasonSourceClosed (or
// ReasonCancelled).
//
// The capture episode is always stopped before Record returns, on every
// path.
func (r *Recorder) Record(ctx context.Context) (audio.Segment, CloseReason, error) {
	var seg audio.Segment

	sess, err := r.engine.NewSession(vad.Config{
		SampleRate:     r.cfg.SampleRate,
		FrameDuration:  r.cfg.FrameDuration,
		Aggressiveness: r.cfg.Aggressiveness,
	})
	if err != nil {
		return seg, ReasonNone, fmt.Errorf("listen: create vad session: %w", err)
	}
	defer sess.Close()

	gate, err := NewGate(sess, GateConfig{
		FrameDuration:  r.cfg.FrameDuration,
		SilenceTimeout: r.cfg.SilenceTimeout,
		MaxDuration:    r.cfg.MaxDuration,
	})
	if err != nil {
		return seg, ReasonNone, err
	}

	if err := r.src.Start(ctx); err != nil {
		return seg, ReasonNone, fmt.Errorf("listen: start capture: %w", err)
	}
	defer r.src.Stop()

	frames := r.src.Frames()
	timer := time.NewTimer(pollInterval)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(pollInterval)

		select {
		case <-ctx.Done():
			return seg, ReasonCancelled, ctx.Err()

		case frame, ok := <-frames:
			if !ok {
				r.log.Debug("capture stream ended mid-recording",
					"frames", gate.Frames(),
					"duration", seg.Duration(),
				)
				return seg, ReasonSourceClosed, nil
			}

			seg.Append(frame)
			if reason := gate.Observe(frame); reason != ReasonNone {
				r.log.Debug("recording closed",
					"reason", reason.String(),
					"frames", gate.Frames(),
					"duration", seg.Duration(),
				)
				return seg, reason, nil
			}

		case <-timer.C:
			// No frame within the poll window; loop to recheck ctx.
		}
	}
}
