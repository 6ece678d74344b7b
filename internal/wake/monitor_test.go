package wake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sable-voice/sable/pkg/audio"
	wakemock "github.com/sable-voice/sable/pkg/provider/wake/mock"
)

func captureFrame(samples int) audio.Frame {
	return audio.Frame{Samples: make([]int16, samples), SampleRate: 16000}
}

func TestFeedReblocksToEngineFrameLength(t *testing.T) {
	t.Parallel()

	engine := &wakemock.Engine{Frame: 512}
	m := NewMonitor(engine, nil, nil)

	// 320-sample capture frames: blocks complete at frames 2, 4, 5, 8, ...
	for i := 0; i < 8; i++ {
		m.Feed(captureFrame(320))
	}
	if got := len(engine.Frames); got != 5 {
		t.Fatalf("want 5 engine blocks from 2560 samples, got %d", got)
	}
	for i, f := range engine.Frames {
		if len(f.Samples) != 512 {
			t.Fatalf("block %d carries %d samples, want 512", i, len(f.Samples))
		}
	}
}

func TestFeedReportsDetection(t *testing.T) {
	t.Parallel()

	engine := &wakemock.Engine{Frame: 512, Detections: []bool{false, true}}
	m := NewMonitor(engine, nil, nil)

	if m.Feed(captureFrame(512)) {
		t.Fatal("first block should not detect")
	}
	if !m.Feed(captureFrame(512)) {
		t.Fatal("second block should detect")
	}
}

func TestFeedDiscardsDetectionInsideMuteWindow(t *testing.T) {
	t.Parallel()

	engine := &wakemock.Engine{Frame: 512, Detections: []bool{true, true}}
	mute := &MuteWindow{}
	m := NewMonitor(engine, mute, nil)

	mute.Engage(time.Hour)
	if m.Feed(captureFrame(512)) {
		t.Fatal("detection inside the mute window must be discarded")
	}

	// Engine keeps consuming frames either way.
	if len(engine.Frames) != 1 {
		t.Fatalf("engine blocks = %d", len(engine.Frames))
	}
}

func TestFeedSwallowsDetectorFaults(t *testing.T) {
	t.Parallel()

	engine := &wakemock.Engine{Frame: 512, ProcessErr: errors.New("licence expired")}
	m := NewMonitor(engine, nil, nil)

	if m.Feed(captureFrame(512)) {
		t.Fatal("a faulting detector must not report detections")
	}
}

func TestResetDropsPartialBlock(t *testing.T) {
	t.Parallel()

	engine := &wakemock.Engine{Frame: 512}
	m := NewMonitor(engine, nil, nil)

	m.Feed(captureFrame(320))
	m.Reset()
	m.Feed(captureFrame(320))

	// 320 + 320 across a Reset never completes a 512 block.
	if len(engine.Frames) != 0 {
		t.Fatalf("block straddled a Reset: %d blocks", len(engine.Frames))
	}
}

func TestMuteWindowExpires(t *testing.T) {
	t.Parallel()

	var mute MuteWindow
	mute.Engage(10 * time.Millisecond)
	if !mute.Active() {
		t.Fatal("window should be open right after Engage")
	}
	time.Sleep(30 * time.Millisecond)
	if mute.Active() {
		t.Fatal("window should have expired")
	}
}

func TestMuteWindowNeverShrinks(t *testing.T) {
	t.Parallel()

	var mute MuteWindow
	mute.Engage(time.Hour)
	mute.Engage(time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if !mute.Active() {
		t.Fatal("a shorter Engage must not shorten an open window")
	}
}

func TestInterruptSourceLatch(t *testing.T) {
	t.Parallel()

	var intr InterruptSource
	if intr.Raised() {
		t.Fatal("new latch should be clear")
	}
	intr.Raise()
	if !intr.Raised() {
		t.Fatal("latch should hold")
	}
	if !intr.Clear() {
		t.Fatal("Clear should report it was raised")
	}
	if intr.Raised() || intr.Clear() {
		t.Fatal("latch should be clear after Clear")
	}
}

func TestWaitDetects(t *testing.T) {
	t.Parallel()

	engine := &wakemock.Engine{Frame: 512, Detections: []bool{false, false, true}}
	m := NewMonitor(engine, nil, nil)

	frames := make([]audio.Frame, 4)
	for i := range frames {
		frames[i] = captureFrame(512)
	}
	src := newScriptedSource(frames, true)

	detected, err := m.Wait(context.Background(), src)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !detected {
		t.Fatal("want detection")
	}
	if src.stopCount() == 0 {
		t.Error("capture episode was not stopped")
	}
}

func TestGuardRaisesInterrupt(t *testing.T) {
	t.Parallel()

	engine := &wakemock.Engine{Frame: 512, Detections: []bool{true}}
	m := NewMonitor(engine, nil, nil)
	var intr InterruptSource

	src := newScriptedSource([]audio.Frame{captureFrame(512)}, true)
	if err := m.Guard(context.Background(), src, &intr); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	if !intr.Raised() {
		t.Fatal("interrupt should be latched after a mid-playback detection")
	}
}
