// Package porcupine implements wake word detection on Picovoice Porcupine.
//
// Porcupine ships a fixed inventory of built-in keywords and dictates its own
// frame geometry (512 samples at 16 kHz). The engine holds a licensed native
// detector instance for the process lifetime.
package porcupine

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	pv "github.com/Picovoice/porcupine/binding/go/v3"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/provider/wake"
)

// Engine is a Porcupine-backed wake.Engine.
type Engine struct {
	mu     sync.Mutex
	inst   pv.Porcupine
	closed bool
}

var _ wake.Engine = (*Engine)(nil)

// New creates a Porcupine detector for cfg.Keyword. The keyword must be one
// of Porcupine's built-in keywords; cfg.AccessKey must carry a valid
// Picovoice access key.
func New(cfg wake.Config) (*Engine, error) {
	if cfg.AccessKey == "" {
		return nil, errors.New("porcupine: access key is required")
	}
	keyword, err := builtInKeyword(cfg.Keyword)
	if err != nil {
		return nil, err
	}

	sensitivity := cfg.Sensitivity
	if sensitivity <= 0 {
		sensitivity = 0.5
	}

	inst := pv.Porcupine{
		AccessKey:       cfg.AccessKey,
		BuiltInKeywords: []pv.BuiltInKeyword{keyword},
		Sensitivities:   []float32{sensitivity},
	}
	if err := inst.Init(); err != nil {
		return nil, fmt.Errorf("porcupine: init detector: %w", err)
	}
	return &Engine{inst: inst}, nil
}

// SampleRate implements [wake.Engine].
func (*Engine) SampleRate() int { return pv.SampleRate }

// FrameLength implements [wake.Engine].
func (*Engine) FrameLength() int { return pv.FrameLength }

// Process implements [wake.Engine].
func (e *Engine) Process(frame audio.Frame) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false, wake.ErrClosed
	}
	if len(frame.Samples) != pv.FrameLength {
		return false, fmt.Errorf("porcupine: frame carries %d samples, want %d",
			len(frame.Samples), pv.FrameLength)
	}

	index, err := e.inst.Process(frame.Samples)
	if err != nil {
		return false, fmt.Errorf("porcupine: process frame: %w", err)
	}
	return index >= 0, nil
}

// Close implements [wake.Engine].
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.inst.Delete()
}

// builtInKeyword maps a configured keyword name onto Porcupine's built-in
// keyword inventory.
func builtInKeyword(name string) (pv.BuiltInKeyword, error) {
	normalised := strings.ToLower(strings.TrimSpace(name))
	for _, kw := range pv.BuiltInKeywords {
		if string(kw) == normalised {
			return kw, nil
		}
	}
	return "", fmt.Errorf("porcupine: %q is not a built-in keyword", name)
}
