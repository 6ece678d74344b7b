package wake

import (
	"context"
	"log/slog"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/capture"
	provider "github.com/sable-voice/sable/pkg/provider/wake"
)

// Monitor feeds capture frames to a wake engine. Capture frames rarely match
// the engine's frame geometry, so the monitor accumulates samples and
// processes them in exact engine-sized blocks.
//
// A Monitor is driven from one goroutine at a time.
type Monitor struct {
	engine provider.Engine
	mute   *MuteWindow
	log    *slog.Logger

	buf []int16
}

// NewMonitor builds a monitor over engine. mute may be nil when self-mute is
// disabled.
func NewMonitor(engine provider.Engine, mute *MuteWindow, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		engine: engine,
		mute:   mute,
		log:    log,
		buf:    make([]int16, 0, engine.FrameLength()*2),
	}
}

// Reset drops buffered samples. Call between capture episodes so a block
// never straddles two of them.
func (m *Monitor) Reset() {
	m.buf = m.buf[:0]
}

// Feed consumes one capture frame and reports whether the keyword completed
// outside the mute window. Detector faults are logged and swallowed; a flaky
// detector costs a missed detection, never a crash.
func (m *Monitor) Feed(frame audio.Frame) bool {
	m.buf = append(m.buf, frame.Samples...)

	flen := m.engine.FrameLength()
	detected := false
	for len(m.buf) >= flen {
		block := audio.Frame{
			Samples:    m.buf[:flen],
			SampleRate: m.engine.SampleRate(),
			Timestamp:  frame.Timestamp,
		}
		m.buf = m.buf[flen:]

		hit, err := m.engine.Process(block)
		if err != nil {
			m.log.Debug("wake detector fault", "error", err)
			continue
		}
		if !hit {
			continue
		}
		if m.mute != nil && m.mute.Active() {
			m.log.Debug("wake detection discarded inside self-mute window")
			continue
		}
		detected = true
	}
	return detected
}

// Wait runs a capture episode on src until the keyword is detected or ctx
// ends. It returns true on detection. The episode is stopped before Wait
// returns.
func (m *Monitor) Wait(ctx context.Context, src capture.Source) (bool, error) {
	m.Reset()

	if err := src.Start(ctx); err != nil {
		return false, err
	}
	defer src.Stop()

	frames := src.Frames()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return false, nil
			}
			if m.Feed(frame) {
				return true, nil
			}
		}
	}
}

// Guard runs a capture episode on src for the duration of a playback,
// raising intr whenever the keyword is heard. It returns when ctx is
// cancelled or the stream ends; detections merely latch the interrupt.
func (m *Monitor) Guard(ctx context.Context, src capture.Source, intr *InterruptSource) error {
	m.Reset()

	if err := src.Start(ctx); err != nil {
		return err
	}
	defer src.Stop()

	frames := src.Frames()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if m.Feed(frame) {
				m.log.Info("barge-in keyword heard during playback")
				intr.Raise()
			}
		}
	}
}
