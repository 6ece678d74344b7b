// Package config provides the configuration schema, loader, and provider
// registry for the Sable voice assistant.
package config

import "time"

// LogLevel controls log verbosity for the assistant process.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Sable.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Audio     AudioConfig     `yaml:"audio"`
	Wake      WakeConfig      `yaml:"wake"`
	VAD       VADConfig       `yaml:"vad"`
	Providers ProvidersConfig `yaml:"providers"`
	Assistant AssistantConfig `yaml:"assistant"`
	History   HistoryConfig   `yaml:"history"`
	Speak     SpeakConfig     `yaml:"speak"`
}

// ServerConfig holds telemetry and logging settings.
type ServerConfig struct {
	// TelemetryAddr is the TCP address the metrics and health endpoints
	// listen on (e.g., ":9090"). Empty disables the telemetry server.
	TelemetryAddr string `yaml:"telemetry_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// AudioConfig describes the preferred capture format. The device layer may
// negotiate a different format when the preferred one is unsupported.
type AudioConfig struct {
	// SampleRate is the preferred capture rate in Hz.
	SampleRate int `yaml:"sample_rate"`

	// Channels is the preferred channel count (1 or 2).
	Channels int `yaml:"channels"`

	// FrameMs is the capture frame duration in milliseconds (10, 20, or 30).
	FrameMs int `yaml:"frame_ms"`

	// Device selects a specific input device by name. Empty selects the
	// platform default.
	Device string `yaml:"device"`
}

// WakeConfig describes wake word monitoring.
type WakeConfig struct {
	// Enabled turns wake word monitoring on. When false the engine is
	// replaced by a never-detecting stand-in.
	Enabled bool `yaml:"enabled"`

	// Keyword is the wake word to listen for (e.g., "jarvis").
	Keyword string `yaml:"keyword"`

	// Sensitivity trades misses against false alarms, in [0.0, 1.0].
	Sensitivity float32 `yaml:"sensitivity"`

	// AccessKey authenticates against the Picovoice licensing service.
	AccessKey string `yaml:"access_key"`

	// SelfMuteMs is how long detections are discarded after the assistant
	// finishes speaking, so the tail of its own output cannot retrigger it.
	SelfMuteMs int `yaml:"self_mute_ms"`
}

// VADConfig describes silence detection for the recording gate.
type VADConfig struct {
	// Name selects the registered VAD engine ("webrtc", "energy", "disabled").
	Name string `yaml:"name"`

	// Aggressiveness tunes how strictly non-speech is filtered, 0-3.
	Aggressiveness int `yaml:"aggressiveness"`

	// SilenceTimeout is the span of trailing silence that ends a recording.
	SilenceTimeout time.Duration `yaml:"silence_timeout"`

	// MaxDuration is the hard ceiling on recording length.
	MaxDuration time.Duration `yaml:"max_duration"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	STT ProviderEntry `yaml:"stt"`
	LLM ProviderEntry `yaml:"llm"`
	TTS ProviderEntry `yaml:"tts"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "deepgram",
	// "groq", "console").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "nova-2",
	// "llama-3.3-70b-versatile").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above.
	Options map[string]any `yaml:"options"`
}

// AssistantConfig tunes the conversation behaviour.
type AssistantConfig struct {
	// SystemPrompt is the persona instruction injected before the
	// conversation history.
	SystemPrompt string `yaml:"system_prompt"`

	// Temperature controls LLM output randomness, in [0.0, 2.0].
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the completion length. Zero uses the provider default.
	MaxTokens int `yaml:"max_tokens"`
}

// HistoryConfig describes conversation persistence.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty keeps history in memory only.
	Path string `yaml:"path"`

	// Recent is how many turns of prior context are replayed into each
	// LLM request.
	Recent int `yaml:"recent"`
}

// SpeakConfig tunes speech output.
type SpeakConfig struct {
	// RateWPM is the console speaker's pacing in words per minute.
	RateWPM int `yaml:"rate_wpm"`
}

// Default returns the configuration Sable starts from before a file is
// overlaid. The values mirror what the assistant ships with: 16 kHz mono
// capture, a 1.5 s silence gate, and the Groq llama model.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			LogLevel: LogInfo,
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			FrameMs:    20,
		},
		Wake: WakeConfig{
			Keyword:     "jarvis",
			Sensitivity: 0.5,
			SelfMuteMs:  500,
		},
		VAD: VADConfig{
			Name:           "webrtc",
			Aggressiveness: 2,
			SilenceTimeout: 1500 * time.Millisecond,
			MaxDuration:    15 * time.Second,
		},
		Providers: ProvidersConfig{
			STT: ProviderEntry{Name: "deepgram", Model: "nova-2"},
			LLM: ProviderEntry{Name: "groq", Model: "llama-3.3-70b-versatile"},
			TTS: ProviderEntry{Name: "console"},
		},
		Assistant: AssistantConfig{
			SystemPrompt: "You are Sable, a helpful voice assistant. Keep replies short " +
				"and speakable, and address the user as Sir.",
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		History: HistoryConfig{
			Recent: 6,
		},
		Speak: SpeakConfig{
			RateWPM: 170,
		},
	}
}

// FrameDuration returns the configured frame length as a time.Duration.
func (a AudioConfig) FrameDuration() time.Duration {
	return time.Duration(a.FrameMs) * time.Millisecond
}

// SelfMute returns the configured self-mute window as a time.Duration.
func (w WakeConfig) SelfMute() time.Duration {
	return time.Duration(w.SelfMuteMs) * time.Millisecond
}
