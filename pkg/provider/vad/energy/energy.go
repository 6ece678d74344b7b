// Package energy implements a pure-Go voice activity detector based on RMS
// energy with hysteresis. It needs no cgo and serves as the fallback backend
// when the WebRTC detector is unavailable.
package energy

import (
	"math"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/provider/vad"
)

// Per-mode hysteresis profiles. Higher aggressiveness raises the thresholds
// so marginal noise is classified as silence sooner.
var profiles = [4]profile{
	{speech: 0.008, silence: 0.004, attackFrames: 2},
	{speech: 0.012, silence: 0.006, attackFrames: 2},
	{speech: 0.015, silence: 0.008, attackFrames: 3},
	{speech: 0.022, silence: 0.012, attackFrames: 3},
}

type profile struct {
	speech       float64
	silence      float64
	attackFrames int
}

// Engine creates RMS-energy VAD sessions.
type Engine struct{}

var _ vad.Engine = Engine{}

// New returns an energy VAD engine.
func New() Engine { return Engine{} }

// NewSession implements [vad.Engine].
func (Engine) NewSession(cfg vad.Config) (vad.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &session{
		cfg:     cfg,
		samples: audio.FrameSamples(cfg.SampleRate, cfg.FrameDuration),
		prof:    profiles[cfg.Aggressiveness],
	}, nil
}

// session applies hysteresis on the frame RMS level: a few consecutive loud
// frames switch the state to speech, a drop below the lower threshold
// switches it back. The two-threshold scheme avoids flicker near the
// boundary.
type session struct {
	cfg     vad.Config
	samples int
	prof    profile

	inSpeech    bool
	speechCount int
}

var _ vad.Session = (*session)(nil)

// IsSpeech implements [vad.Session].
func (s *session) IsSpeech(frame audio.Frame) (bool, error) {
	if len(frame.Samples) != s.samples || frame.SampleRate != s.cfg.SampleRate {
		return false, vad.ErrFrameSize
	}

	level := rms(frame.Samples)
	if s.inSpeech {
		if level < s.prof.silence {
			s.inSpeech = false
		}
	} else {
		if level >= s.prof.speech {
			s.speechCount++
			if s.speechCount >= s.prof.attackFrames {
				s.inSpeech = true
				s.speechCount = 0
			}
		} else {
			s.speechCount = 0
		}
	}
	return s.inSpeech, nil
}

// Reset implements [vad.Session].
func (s *session) Reset() {
	s.inSpeech = false
	s.speechCount = 0
}

// Close implements [vad.Session].
func (s *session) Close() error { return nil }

// rms returns the root mean square of the frame normalised to [0, 1].
func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
