package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func TestFrameDuration(t *testing.T) {
	t.Parallel()

	f := Frame{Samples: make([]int16, 320), SampleRate: 16000}
	if got := f.Duration(); got != 20*time.Millisecond {
		t.Fatalf("want 20ms, got %v", got)
	}
}

func TestFrameSamples(t *testing.T) {
	t.Parallel()

	cases := []struct {
		rate  int
		dur   time.Duration
		want  int
	}{
		{16000, 10 * time.Millisecond, 160},
		{16000, 20 * time.Millisecond, 320},
		{16000, 30 * time.Millisecond, 480},
		{48000, 20 * time.Millisecond, 960},
		{8000, 30 * time.Millisecond, 240},
	}
	for _, c := range cases {
		if got := FrameSamples(c.rate, c.dur); got != c.want {
			t.Errorf("FrameSamples(%d, %v) = %d, want %d", c.rate, c.dur, got, c.want)
		}
	}
}

func TestSegmentPreservesCaptureOrder(t *testing.T) {
	t.Parallel()

	var seg Segment
	for i := 0; i < 50; i++ {
		seg.Append(Frame{
			Samples:    []int16{int16(i)},
			SampleRate: 16000,
			Timestamp:  time.Duration(i) * 20 * time.Millisecond,
		})
	}

	frames := seg.Frames()
	if len(frames) != 50 {
		t.Fatalf("want 50 frames, got %d", len(frames))
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].Timestamp <= frames[i-1].Timestamp {
			t.Fatalf("frame %d timestamp %v not after frame %d timestamp %v",
				i, frames[i].Timestamp, i-1, frames[i-1].Timestamp)
		}
		if frames[i].Samples[0] != int16(i) {
			t.Fatalf("frame %d carries payload %d; order not preserved", i, frames[i].Samples[0])
		}
	}
}

func TestSegmentPCMLittleEndian(t *testing.T) {
	t.Parallel()

	var seg Segment
	seg.Append(Frame{Samples: []int16{0x0102, -1}, SampleRate: 16000})

	got := seg.PCM()
	want := []byte{0x02, 0x01, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("PCM = %v, want %v", got, want)
	}
}

func TestSegmentDuration(t *testing.T) {
	t.Parallel()

	var seg Segment
	for i := 0; i < 10; i++ {
		seg.Append(Frame{Samples: make([]int16, 320), SampleRate: 16000})
	}
	if got := seg.Duration(); got != 200*time.Millisecond {
		t.Fatalf("want 200ms, got %v", got)
	}
}

func TestEmptySegment(t *testing.T) {
	t.Parallel()

	var seg Segment
	if !seg.Empty() {
		t.Fatal("new segment should be empty")
	}
	if seg.SampleRate() != 0 {
		t.Fatal("empty segment should report rate 0")
	}
	if len(seg.PCM()) != 0 {
		t.Fatal("empty segment should flatten to zero bytes")
	}
}

func TestWAVHeader(t *testing.T) {
	t.Parallel()

	pcm := []byte{0x01, 0x00, 0x02, 0x00}
	wav := WAV(pcm, 16000)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("want %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("bad RIFF magic: %q %q", wav[0:4], wav[8:12])
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 16000 {
		t.Fatalf("want sample rate 16000, got %d", rate)
	}
	if byteRate := binary.LittleEndian.Uint32(wav[28:32]); byteRate != 32000 {
		t.Fatalf("want byte rate 32000, got %d", byteRate)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); size != uint32(len(pcm)) {
		t.Fatalf("want data size %d, got %d", len(pcm), size)
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Fatal("payload mismatch")
	}
}
