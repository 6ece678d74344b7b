package speak

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sable-voice/sable/internal/wake"
	"github.com/sable-voice/sable/pkg/provider/tts"
)

// Outcome says how a playback ended.
type Outcome int

const (
	// Completed means every chunk was delivered.
	Completed Outcome = iota

	// Interrupted means the barge-in latch cut playback short.
	Interrupted
)

// String returns a log-friendly name for the outcome.
func (o Outcome) String() string {
	if o == Interrupted {
		return "interrupted"
	}
	return "completed"
}

// Controller plays assistant replies chunk by chunk, checking the barge-in
// latch between chunks and engaging the self-mute window when playback ends,
// however it ends.
type Controller struct {
	speaker tts.Speaker
	intr    *wake.InterruptSource
	mute    *wake.MuteWindow
	muteFor time.Duration
	log     *slog.Logger
}

// NewController builds a playback controller. intr and mute may be nil when
// barge-in or self-mute are disabled.
func NewController(speaker tts.Speaker, intr *wake.InterruptSource, mute *wake.MuteWindow, muteFor time.Duration, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		speaker: speaker,
		intr:    intr,
		mute:    mute,
		muteFor: muteFor,
		log:     log,
	}
}

// Speak sanitises and plays text. It returns Interrupted as soon as the
// barge-in latch is found raised between chunks; chunks already spoken are
// not replayed. A stale latch from before this playback is cleared first, so
// detections that never escaped the previous mute window cannot cut the new
// reply short.
func (c *Controller) Speak(ctx context.Context, text string) (Outcome, error) {
	chunks := Chunks(Sanitize(text))
	if len(chunks) == 0 {
		return Completed, nil
	}

	if c.intr != nil {
		c.intr.Clear()
	}
	defer c.engageMute()

	for i, chunk := range chunks {
		if c.intr != nil && c.intr.Clear() {
			c.log.Info("playback interrupted",
				"spoken_chunks", i,
				"total_chunks", len(chunks),
			)
			return Interrupted, nil
		}
		if err := ctx.Err(); err != nil {
			return Interrupted, err
		}
		if err := c.speaker.Say(ctx, chunk); err != nil {
			return Interrupted, fmt.Errorf("speak: chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return Completed, nil
}

// engageMute opens the self-mute window so the playback tail cannot
// retrigger the wake engine.
func (c *Controller) engageMute() {
	if c.mute != nil {
		c.mute.Engage(c.muteFor)
	}
}
