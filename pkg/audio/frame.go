// Package audio defines the PCM frame and segment types flowing through the
// Sable capture pipeline.
//
// A [Frame] is the atomic unit of streaming capture and analysis: a fixed-
// duration block of signed 16-bit mono samples at the negotiated sample rate.
// A [Segment] is the ordered sequence of frames collected during one recording
// episode, bounded by capture start and a stop condition.
package audio

import (
	"encoding/binary"
	"time"
)

// Frame is a fixed-duration block of signed 16-bit mono PCM samples.
// Frames are immutable once produced; whichever component is currently
// consuming a frame owns it transiently and must not mutate it.
type Frame struct {
	// Samples is the raw mono PCM payload.
	Samples []int16

	// SampleRate in Hz (e.g., 16000 for STT-optimised capture, 48000 on
	// devices that reject 16 kHz).
	SampleRate int

	// Timestamp marks when this frame was captured, relative to stream start.
	Timestamp time.Duration
}

// Duration returns the play time of the frame at its sample rate.
func (f Frame) Duration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(f.Samples)) * time.Second / time.Duration(f.SampleRate)
}

// FrameSamples returns the per-frame sample count for a frame duration at the
// given rate (e.g., 20 ms at 16 kHz → 320 samples).
func FrameSamples(sampleRate int, frame time.Duration) int {
	return int(int64(sampleRate) * int64(frame) / int64(time.Second))
}

// Segment is an ordered sequence of frames collected during one recording
// episode. It grows monotonically via [Segment.Append] until the caller stops
// appending; frames preserve capture order.
//
// Segment is not safe for concurrent use. The recording gate owns it
// exclusively while open and hands it off immutable once closed.
type Segment struct {
	frames []Frame
}

// Append adds a frame to the end of the segment.
func (s *Segment) Append(f Frame) {
	s.frames = append(s.frames, f)
}

// Frames returns the frames in capture order. The returned slice is the
// segment's backing storage; callers must treat it as read-only.
func (s *Segment) Frames() []Frame {
	return s.frames
}

// Len returns the number of frames in the segment.
func (s *Segment) Len() int {
	return len(s.frames)
}

// Empty reports whether the segment contains no frames.
func (s *Segment) Empty() bool {
	return len(s.frames) == 0
}

// SampleRate returns the sample rate of the segment's frames, or 0 for an
// empty segment. All frames in a segment share one rate.
func (s *Segment) SampleRate() int {
	if len(s.frames) == 0 {
		return 0
	}
	return s.frames[0].SampleRate
}

// Duration returns the total play time of the segment.
func (s *Segment) Duration() time.Duration {
	var d time.Duration
	for _, f := range s.frames {
		d += f.Duration()
	}
	return d
}

// PCM flattens the segment to little-endian 16-bit PCM bytes in capture order.
func (s *Segment) PCM() []byte {
	n := 0
	for _, f := range s.frames {
		n += len(f.Samples)
	}
	out := make([]byte, 0, n*2)
	var b [2]byte
	for _, f := range s.frames {
		for _, sample := range f.Samples {
			binary.LittleEndian.PutUint16(b[:], uint16(sample))
			out = append(out, b[0], b[1])
		}
	}
	return out
}
