// Package wake runs keyword monitoring over live capture frames.
//
// The monitor re-blocks capture frames to the engine's frame geometry,
// discards detections inside the self-mute window that follows the
// assistant's own speech, and doubles as the barge-in trigger while playback
// is running.
package wake

import (
	"sync/atomic"
	"time"
)

// MuteWindow suppresses wake detections for a span after the assistant stops
// speaking, so the tail of its own audio cannot retrigger it. Safe for
// concurrent use; Engage is called from the speak path while Active is
// polled from the monitor loop.
type MuteWindow struct {
	deadline atomic.Int64 // unix nanos
}

// Engage opens (or extends) the window for d from now. A non-positive d is a
// no-op.
func (m *MuteWindow) Engage(d time.Duration) {
	if d <= 0 {
		return
	}
	until := time.Now().Add(d).UnixNano()
	for {
		cur := m.deadline.Load()
		if cur >= until {
			return
		}
		if m.deadline.CompareAndSwap(cur, until) {
			return
		}
	}
}

// Active reports whether the window is currently open.
func (m *MuteWindow) Active() bool {
	return time.Now().UnixNano() < m.deadline.Load()
}
