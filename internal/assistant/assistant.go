// Package assistant runs the interaction loop: wait for the wake word,
// record an utterance, transcribe it, generate a reply, speak it.
//
// The orchestrator owns exactly one pipeline state at a time. Downstream
// failures never abort a cycle; the worst outcome is a spoken apology and a
// return to wake listening.
package assistant

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sable-voice/sable/internal/history"
	"github.com/sable-voice/sable/internal/listen"
	"github.com/sable-voice/sable/internal/observe"
	"github.com/sable-voice/sable/internal/speak"
	"github.com/sable-voice/sable/internal/wake"
	"github.com/sable-voice/sable/pkg/capture"
	"github.com/sable-voice/sable/pkg/provider/llm"
	"github.com/sable-voice/sable/pkg/provider/stt"
)

// State is the orchestrator's position in the interaction cycle. Only the
// orchestrator mutates it; observers read it through [Orchestrator.State].
type State int32

const (
	// StateWakeListening means the assistant is waiting for the keyword.
	StateWakeListening State = iota

	// StateCapturing means an utterance is being recorded.
	StateCapturing

	// StateAwaitingSTT means a recording is out for transcription.
	StateAwaitingSTT

	// StateAwaitingLLM means a transcript is out for reply generation.
	StateAwaitingLLM

	// StateSpeaking means a reply is being played back.
	StateSpeaking
)

// String returns a log-friendly name for the state.
func (s State) String() string {
	switch s {
	case StateWakeListening:
		return "wake_listening"
	case StateCapturing:
		return "capturing"
	case StateAwaitingSTT:
		return "awaiting_stt"
	case StateAwaitingLLM:
		return "awaiting_llm"
	case StateSpeaking:
		return "speaking"
	}
	return "unknown"
}

// Default apology lines, overridable via [Config].
const (
	// DefaultGenerationApology is spoken when reply generation fails.
	DefaultGenerationApology = "Neural Core error. I cannot fetch that right now, Sir."

	// DefaultCycleApology is spoken when any other stage of a cycle fails.
	DefaultCycleApology = "I'm having trouble processing that request, Sir."
)

// Config tunes one orchestrator.
type Config struct {
	// SystemPrompt is the persona prompt sent with every completion.
	SystemPrompt string

	// Temperature and MaxTokens are forwarded to the LLM provider.
	Temperature float64
	MaxTokens   int

	// RecentTurns is how many history turns accompany each prompt.
	// Default: 6.
	RecentTurns int

	// WakeEnabled gates the keyword phases. When false the assistant records
	// continuously and barge-in is unavailable.
	WakeEnabled bool

	// SelfMute is how long wake detections are suppressed around playback.
	SelfMute time.Duration

	// GenerationApology and CycleApology replace the reply when a stage
	// fails. Empty values fall back to the defaults.
	GenerationApology string
	CycleApology      string

	// STTLabel and LLMLabel name the providers in metrics.
	STTLabel string
	LLMLabel string
}

func (c *Config) applyDefaults() {
	if c.RecentTurns <= 0 {
		c.RecentTurns = 6
	}
	if c.GenerationApology == "" {
		c.GenerationApology = DefaultGenerationApology
	}
	if c.CycleApology == "" {
		c.CycleApology = DefaultCycleApology
	}
	if c.STTLabel == "" {
		c.STTLabel = "stt"
	}
	if c.LLMLabel == "" {
		c.LLMLabel = "llm"
	}
}

// Deps are the collaborators an orchestrator drives. Monitor, Interrupts and
// Mute may be nil when Config.WakeEnabled is false.
type Deps struct {
	Source     capture.Source
	Monitor    *wake.Monitor
	Interrupts *wake.InterruptSource
	Mute       *wake.MuteWindow
	Recorder   *listen.Recorder
	STT        stt.Provider
	LLM        llm.Provider
	Speaker    *speak.Controller
	History    history.Store
	Metrics    *observe.Metrics
	Logger     *slog.Logger
}

// Orchestrator runs interaction cycles until its context ends.
type Orchestrator struct {
	cfg Config

	src     capture.Source
	monitor *wake.Monitor
	intr    *wake.InterruptSource
	mute    *wake.MuteWindow
	rec     *listen.Recorder
	stt     stt.Provider
	llm     llm.Provider
	speaker *speak.Controller
	store   history.Store
	metrics *observe.Metrics
	log     *slog.Logger

	// retryDelay paces the run loop after failed or empty episodes.
	// Shortened in tests.
	retryDelay time.Duration

	state  atomic.Int32
	cycles atomic.Int64
}

// New builds an orchestrator. Metrics falls back to the package default and
// Logger to slog.Default.
func New(cfg Config, deps Deps) *Orchestrator {
	cfg.applyDefaults()
	if deps.Metrics == nil {
		deps.Metrics = observe.DefaultMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Metrics.RecordStateChange(context.Background(), "", StateWakeListening.String())
	return &Orchestrator{
		cfg:        cfg,
		retryDelay: retryDelay,
		src:        deps.Source,
		monitor:    deps.Monitor,
		intr:       deps.Interrupts,
		mute:       deps.Mute,
		rec:        deps.Recorder,
		stt:        deps.STT,
		llm:        deps.LLM,
		speaker:    deps.Speaker,
		store:      deps.History,
		metrics:    deps.Metrics,
		log:        deps.Logger,
	}
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Cycles returns how many interaction cycles have run to completion,
// including no-op and degraded ones.
func (o *Orchestrator) Cycles() int64 {
	return o.cycles.Load()
}

func (o *Orchestrator) setState(s State) {
	prev := State(o.state.Swap(int32(s)))
	if prev != s {
		o.metrics.RecordStateChange(context.Background(), prev.String(), s.String())
	}
}
