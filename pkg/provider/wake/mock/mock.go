// Package mock provides a scriptable test double for the wake package.
package mock

import (
	"sync"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/provider/wake"
)

// Engine is a scriptable implementation of wake.Engine.
//
// Detections are consumed per Process call in order; once exhausted, Process
// reports no detection.
type Engine struct {
	mu sync.Mutex

	// Rate is returned by SampleRate. Zero defaults to 16000.
	Rate int

	// Frame is returned by FrameLength. Zero defaults to 512.
	Frame int

	// Detections holds the detection result for successive Process calls.
	Detections []bool

	// ProcessErr, if non-nil, is returned by every Process call.
	ProcessErr error

	// Frames records a copy of every frame submitted to Process.
	Frames []audio.Frame

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int

	next int
}

var _ wake.Engine = (*Engine)(nil)

// SampleRate implements wake.Engine.
func (e *Engine) SampleRate() int {
	if e.Rate == 0 {
		return 16000
	}
	return e.Rate
}

// FrameLength implements wake.Engine.
func (e *Engine) FrameLength() int {
	if e.Frame == 0 {
		return 512
	}
	return e.Frame
}

// Process records the frame and returns the next scripted detection.
func (e *Engine) Process(frame audio.Frame) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := frame
	cp.Samples = append([]int16(nil), frame.Samples...)
	e.Frames = append(e.Frames, cp)

	if e.ProcessErr != nil {
		return false, e.ProcessErr
	}
	if e.next < len(e.Detections) {
		d := e.Detections[e.next]
		e.next++
		return d, nil
	}
	return false, nil
}

// Close records the call.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.CloseCallCount++
	return nil
}
