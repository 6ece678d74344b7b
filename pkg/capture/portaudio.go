package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/sable-voice/sable/pkg/audio"
)

// defaultQueueDepth bounds the frame channel when Config.QueueDepth is zero.
const defaultQueueDepth = 16

// PortAudio is a [Source] backed by the PortAudio host API.
//
// The microphone handle is exclusively owned by the producer goroutine for the
// duration of one capture episode; teardown is idempotent via a per-episode
// sync.Once so the stream is stopped and closed exactly once even when a read
// error and Stop race.
type PortAudio struct {
	cfg    Config
	device *portaudio.DeviceInfo
	sel    Selection

	mu       sync.Mutex
	stream   *portaudio.Stream
	frames   chan audio.Frame
	stopOnce *sync.Once
	closed   bool
}

var _ Source = (*PortAudio)(nil)

// NewPortAudio initialises the PortAudio host, resolves the configured input
// device, and negotiates the capture format via [Probe]. A failure here is a
// startup *DeviceError and should terminate the process.
func NewPortAudio(cfg Config) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &DeviceError{Op: "initialise host", Err: err}
	}

	device, err := findInputDevice(cfg.Device)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	sel := Probe(paValidator{device: device}, Request{
		SampleRate:        cfg.SampleRate,
		Channels:          cfg.Channels,
		DeviceDefaultRate: int(device.DefaultSampleRate),
	})

	out := cfg
	out.SampleRate = sel.SampleRate
	out.Channels = sel.Channels
	if out.QueueDepth <= 0 {
		out.QueueDepth = defaultQueueDepth
	}

	return &PortAudio{cfg: out, device: device, sel: sel}, nil
}

// Format returns the negotiated capture format.
func (p *PortAudio) Format() Selection { return p.sel }

// Start implements [Source]. It opens the device stream and spawns the
// producer goroutine for one capture episode.
func (p *PortAudio) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.stream != nil {
		return &DeviceError{Op: "start", Err: fmt.Errorf("capture episode already running")}
	}

	samples := audio.FrameSamples(p.cfg.SampleRate, p.cfg.FrameDuration)
	buffer := make([]int16, samples*p.cfg.Channels)

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   p.device,
			Channels: p.cfg.Channels,
			Latency:  p.device.DefaultLowInputLatency,
		},
		SampleRate:      float64(p.cfg.SampleRate),
		FramesPerBuffer: samples,
	}, buffer)
	if err != nil {
		return &DeviceError{Op: "open stream", Err: err}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return &DeviceError{Op: "start stream", Err: err}
	}

	p.stream = stream
	p.frames = make(chan audio.Frame, p.cfg.QueueDepth)
	p.stopOnce = &sync.Once{}

	go p.produce(ctx, stream, buffer, p.frames, p.stopOnce)
	return nil
}

// Frames implements [Source].
func (p *PortAudio) Frames() <-chan audio.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// produce reads device buffers until cancellation or a device fault, emitting
// one mono frame per read. The channel is closed on exit so consumers observe
// end of stream instead of blocking forever.
func (p *PortAudio) produce(ctx context.Context, stream *portaudio.Stream, buffer []int16, out chan<- audio.Frame, once *sync.Once) {
	defer close(out)
	defer p.release(stream, once)

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := stream.Read(); err != nil {
			// A read fault ends the episode; the orchestrator treats the
			// resulting short (possibly empty) segment as a skipped cycle.
			return
		}

		frame := audio.Frame{
			Samples:    downmix(buffer, p.cfg.Channels),
			SampleRate: p.cfg.SampleRate,
			Timestamp:  time.Since(start),
		}

		select {
		case out <- frame:
		case <-ctx.Done():
			return
		default:
			// Consumer stalled; drop the frame rather than block the device
			// callback path.
		}
	}
}

// Stop implements [Source]. Safe to call repeatedly and concurrently with a
// producer-side exit.
func (p *PortAudio) Stop() error {
	p.mu.Lock()
	stream, once := p.stream, p.stopOnce
	p.stream = nil
	p.mu.Unlock()

	if stream == nil || once == nil {
		return nil
	}
	p.release(stream, once)
	return nil
}

// release stops and closes the stream exactly once.
func (p *PortAudio) release(stream *portaudio.Stream, once *sync.Once) {
	once.Do(func() {
		stream.Stop()
		stream.Close()
		p.mu.Lock()
		if p.stream == stream {
			p.stream = nil
		}
		p.mu.Unlock()
	})
}

// Close implements [Source]. It terminates the PortAudio host after stopping
// any running episode.
func (p *PortAudio) Close() error {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return portaudio.Terminate()
}

// findInputDevice resolves name against the host's input devices, or returns
// the default input device for an empty name.
func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, &DeviceError{Op: "default input device", Err: err}
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, &DeviceError{Op: "enumerate devices", Err: err}
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, &DeviceError{Op: "resolve device", Err: fmt.Errorf("input device %q not found", name)}
}

// downmix converts an interleaved device buffer to a freshly allocated mono
// frame. Stereo is averaged per sample pair.
func downmix(buffer []int16, channels int) []int16 {
	if channels == 1 {
		out := make([]int16, len(buffer))
		copy(out, buffer)
		return out
	}
	out := make([]int16, len(buffer)/2)
	for i := range out {
		l := int32(buffer[2*i])
		r := int32(buffer[2*i+1])
		out[i] = int16((l + r) / 2)
	}
	return out
}

// paValidator adapts PortAudio's format validator to the [Validator] interface
// used by [Probe].
type paValidator struct {
	device *portaudio.DeviceInfo
}

func (v paValidator) Supports(sampleRate, channels int) bool {
	if channels > v.device.MaxInputChannels {
		return false
	}
	probe := make([]int16, audio.FrameSamples(sampleRate, 20*time.Millisecond)*channels)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   v.device,
			Channels: channels,
			Latency:  v.device.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: len(probe) / channels,
	}
	return portaudio.IsFormatSupported(params, probe) == nil
}
