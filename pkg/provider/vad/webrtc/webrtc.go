// Package webrtc implements voice activity detection on the WebRTC VAD,
// via the go-webrtcvad cgo binding.
//
// The WebRTC detector operates on raw 16-bit little-endian PCM at 8, 16, 32,
// or 48 kHz with 10, 20, or 30 ms frames. Aggressiveness maps directly onto
// the detector's mode 0-3.
package webrtc

import (
	"fmt"
	"sync"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/provider/vad"
)

// Engine creates WebRTC-backed VAD sessions.
type Engine struct{}

var _ vad.Engine = Engine{}

// New returns a WebRTC VAD engine.
func New() Engine { return Engine{} }

// NewSession implements [vad.Engine]. Each session owns a dedicated detector
// instance; the underlying C state is not shareable across streams.
func (Engine) NewSession(cfg vad.Config) (vad.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	samples := audio.FrameSamples(cfg.SampleRate, cfg.FrameDuration)

	inst, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("webrtc: create detector: %w", err)
	}
	if !inst.ValidRateAndFrameLength(cfg.SampleRate, samples) {
		return nil, fmt.Errorf("webrtc: unsupported rate/frame combination %d Hz / %d samples",
			cfg.SampleRate, samples)
	}
	if err := inst.SetMode(cfg.Aggressiveness); err != nil {
		return nil, fmt.Errorf("webrtc: set mode %d: %w", cfg.Aggressiveness, err)
	}

	return &session{
		inst:    inst,
		rate:    cfg.SampleRate,
		samples: samples,
		buf:     make([]byte, samples*2),
	}, nil
}

type session struct {
	mu      sync.Mutex
	inst    *webrtcvad.VAD
	rate    int
	samples int
	buf     []byte
	closed  bool
}

var _ vad.Session = (*session)(nil)

// IsSpeech implements [vad.Session].
func (s *session) IsSpeech(frame audio.Frame) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, fmt.Errorf("webrtc: session is closed")
	}
	if len(frame.Samples) != s.samples || frame.SampleRate != s.rate {
		return false, vad.ErrFrameSize
	}

	for i, sample := range frame.Samples {
		s.buf[2*i] = byte(sample)
		s.buf[2*i+1] = byte(sample >> 8)
	}

	active, err := s.inst.Process(s.rate, s.buf)
	if err != nil {
		return false, fmt.Errorf("webrtc: process frame: %w", err)
	}
	return active, nil
}

// Reset implements [vad.Session]. The WebRTC detector carries no cross-frame
// smoothing state, so there is nothing to clear.
func (s *session) Reset() {}

// Close implements [vad.Session].
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
