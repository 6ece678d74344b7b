package capture

// Validator answers whether a device supports a sample rate / channel count
// combination. The PortAudio implementation consults the host's format
// validator; tests supply fake capability sets.
type Validator interface {
	Supports(sampleRate, channels int) bool
}

// Request is the preferred capture format supplied by configuration.
type Request struct {
	SampleRate int
	Channels   int

	// DeviceDefaultRate is the device's advertised default sample rate, tried
	// right after the preferred rate. Zero skips that rung.
	DeviceDefaultRate int
}

// Selection is the negotiated capture format. Fallback is true when no
// candidate validated and the exhaustive default was chosen.
type Selection struct {
	SampleRate int
	Channels   int
	Fallback   bool
}

// fallbackRates is the fixed ladder tried after the preferred and device
// default rates, in order.
var fallbackRates = []int{44100, 48000, 22050, 32000, 8000}

const (
	exhaustedRate     = 44100
	exhaustedChannels = 1
)

// Probe walks an explicit ordered list of candidate formats against caps and
// returns the first combination that validates. Candidate order: preferred
// rate, device default rate, then the fixed fallback ladder. For each rate the
// requested channel count is tried first, then the alternate (1→2 or 2→1).
//
// When nothing validates, Probe returns the exhaustive fallback of
// 44100 Hz / 1 channel with Fallback set, mirroring what the device layer
// would have attempted anyway. Probe is a pure function of caps and req.
func Probe(caps Validator, req Request) Selection {
	channels := req.Channels
	if channels != 1 && channels != 2 {
		channels = 1
	}

	rates := make([]int, 0, 2+len(fallbackRates))
	if req.SampleRate > 0 {
		rates = append(rates, req.SampleRate)
	}
	if req.DeviceDefaultRate > 0 {
		rates = append(rates, req.DeviceDefaultRate)
	}
	rates = append(rates, fallbackRates...)

	for _, rate := range rates {
		for _, ch := range []int{channels, alternate(channels)} {
			if caps.Supports(rate, ch) {
				return Selection{SampleRate: rate, Channels: ch}
			}
		}
	}

	return Selection{SampleRate: exhaustedRate, Channels: exhaustedChannels, Fallback: true}
}

func alternate(channels int) int {
	if channels == 1 {
		return 2
	}
	return 1
}
