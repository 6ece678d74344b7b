package capture

import "testing"

// fakeCaps is a capability set keyed by rate/channel pairs.
type fakeCaps map[[2]int]bool

func (f fakeCaps) Supports(rate, channels int) bool { return f[[2]int{rate, channels}] }

func TestProbePreferredRateWins(t *testing.T) {
	t.Parallel()

	caps := fakeCaps{{16000, 1}: true, {48000, 1}: true}
	sel := Probe(caps, Request{SampleRate: 16000, Channels: 1})
	if sel.SampleRate != 16000 || sel.Channels != 1 || sel.Fallback {
		t.Fatalf("want 16000/1, got %+v", sel)
	}
}

func TestProbeUnsupportedPreferredFallsToLadder(t *testing.T) {
	t.Parallel()

	// 16 kHz rejected, 48 kHz is the first ladder rung that validates.
	caps := fakeCaps{{48000, 1}: true}
	sel := Probe(caps, Request{SampleRate: 16000, Channels: 1})
	if sel.SampleRate != 48000 || sel.Channels != 1 || sel.Fallback {
		t.Fatalf("want 48000/1, got %+v", sel)
	}
}

func TestProbeDeviceDefaultBeforeLadder(t *testing.T) {
	t.Parallel()

	caps := fakeCaps{{22050, 1}: true, {44100, 1}: true}
	sel := Probe(caps, Request{SampleRate: 16000, Channels: 1, DeviceDefaultRate: 22050})
	if sel.SampleRate != 22050 {
		t.Fatalf("device default should win over the ladder, got %+v", sel)
	}
}

func TestProbeChannelFallback(t *testing.T) {
	t.Parallel()

	t.Run("mono to stereo", func(t *testing.T) {
		t.Parallel()
		caps := fakeCaps{{16000, 2}: true}
		sel := Probe(caps, Request{SampleRate: 16000, Channels: 1})
		if sel.SampleRate != 16000 || sel.Channels != 2 {
			t.Fatalf("want 16000/2, got %+v", sel)
		}
	})

	t.Run("stereo to mono", func(t *testing.T) {
		t.Parallel()
		caps := fakeCaps{{16000, 1}: true}
		sel := Probe(caps, Request{SampleRate: 16000, Channels: 2})
		if sel.SampleRate != 16000 || sel.Channels != 1 {
			t.Fatalf("want 16000/1, got %+v", sel)
		}
	})
}

func TestProbeLadderOrder(t *testing.T) {
	t.Parallel()

	// Everything below 32 kHz rejected; the ladder must reach 32000 before 8000.
	caps := fakeCaps{{32000, 1}: true, {8000, 1}: true}
	sel := Probe(caps, Request{SampleRate: 16000, Channels: 1})
	if sel.SampleRate != 32000 {
		t.Fatalf("want 32000 (ladder order), got %+v", sel)
	}
}

func TestProbeExhaustedReturnsFallback(t *testing.T) {
	t.Parallel()

	sel := Probe(fakeCaps{}, Request{SampleRate: 16000, Channels: 1})
	if !sel.Fallback {
		t.Fatal("want Fallback set when nothing validates")
	}
	if sel.SampleRate != 44100 || sel.Channels != 1 {
		t.Fatalf("want exhaustive 44100/1, got %+v", sel)
	}
}

func TestProbeInvalidChannelCountNormalised(t *testing.T) {
	t.Parallel()

	caps := fakeCaps{{16000, 1}: true}
	sel := Probe(caps, Request{SampleRate: 16000, Channels: 7})
	if sel.Channels != 1 {
		t.Fatalf("want channel count normalised to 1, got %+v", sel)
	}
}
