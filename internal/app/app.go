// Package app wires all Sable subsystems into a running assistant.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run executes the interaction loop, and Shutdown tears
// everything down in order.
//
// For testing, inject doubles via functional options (WithHistory,
// WithMetrics). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sable-voice/sable/internal/assistant"
	"github.com/sable-voice/sable/internal/config"
	"github.com/sable-voice/sable/internal/health"
	"github.com/sable-voice/sable/internal/history"
	"github.com/sable-voice/sable/internal/listen"
	"github.com/sable-voice/sable/internal/observe"
	"github.com/sable-voice/sable/internal/resilience"
	"github.com/sable-voice/sable/internal/speak"
	"github.com/sable-voice/sable/internal/wake"
	"github.com/sable-voice/sable/pkg/capture"
	"github.com/sable-voice/sable/pkg/provider/llm"
	"github.com/sable-voice/sable/pkg/provider/stt"
	"github.com/sable-voice/sable/pkg/provider/tts"
	"github.com/sable-voice/sable/pkg/provider/vad"
	wakeprov "github.com/sable-voice/sable/pkg/provider/wake"
)

// Providers holds one implementation per pipeline slot. Populated by main.go
// via the config registry. Wake may be nil when wake monitoring is disabled;
// everything else is required.
type Providers struct {
	Source  capture.Source
	VAD     vad.Engine
	Wake    wakeprov.Engine
	STT     stt.Provider
	LLM     llm.Provider
	Speaker tts.Speaker
}

// App owns all subsystem lifetimes and runs the Sable voice pipeline.
type App struct {
	cfg       *config.Config
	providers *Providers

	store  history.Store
	orch   *assistant.Orchestrator
	hp     *health.Handler
	metric *observe.Metrics

	// llmFallbacks are extra generation backends tried when the primary
	// fails, in the order added.
	llmFallbacks []namedLLM

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

type namedLLM struct {
	name     string
	provider llm.Provider
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithHistory injects a conversation store instead of opening one from config.
func WithHistory(s history.Store) Option {
	return func(a *App) { a.store = s }
}

// WithMetrics injects a metrics instance instead of the package default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metric = m }
}

// WithLLMFallback adds a secondary generation backend tried when the primary
// fails. May be given multiple times; order is priority order.
func WithLLMFallback(name string, p llm.Provider) Option {
	return func(a *App) {
		a.llmFallbacks = append(a.llmFallbacks, namedLLM{name: name, provider: p})
	}
}

// New wires the pipeline together. The providers struct comes from main.go
// (populated via the config registry).
func New(cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	a := &App{
		cfg:       cfg,
		providers: providers,
		hp:        health.NewHandler(),
	}
	for _, o := range opts {
		o(a)
	}

	if err := a.checkProviders(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if a.metric == nil {
		a.metric = observe.DefaultMetrics()
	}

	if err := a.initHistory(); err != nil {
		return nil, fmt.Errorf("app: init history: %w", err)
	}

	a.initOrchestrator()

	a.hp.AddProbe("history", health.HistoryProbe(a.store))

	return a, nil
}

// checkProviders validates the provider slots against the config.
func (a *App) checkProviders() error {
	if a.providers == nil {
		return fmt.Errorf("providers are required")
	}
	if a.providers.Source == nil {
		return fmt.Errorf("capture source is required")
	}
	if a.providers.VAD == nil {
		return fmt.Errorf("vad engine is required")
	}
	if a.providers.STT == nil {
		return fmt.Errorf("stt provider is required")
	}
	if a.providers.LLM == nil {
		return fmt.Errorf("llm provider is required")
	}
	if a.providers.Speaker == nil {
		return fmt.Errorf("speaker is required")
	}
	if a.cfg.Wake.Enabled && a.providers.Wake == nil {
		return fmt.Errorf("wake engine is required when wake.enabled is true")
	}
	return nil
}

// initHistory opens the conversation store: SQLite when a path is configured,
// in-memory otherwise.
func (a *App) initHistory() error {
	if a.store != nil {
		return nil // injected
	}

	if path := a.cfg.History.Path; path != "" {
		store, err := history.OpenSQLite(path)
		if err != nil {
			return err
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
		slog.Info("conversation history opened", "path", path)
		return nil
	}

	slog.Warn("history.path is empty, conversation log will not survive restarts")
	a.store = history.NewMemStore()
	return nil
}

// initOrchestrator assembles the interaction pipeline around the providers:
// breaker-guarded STT, a fallback chain for generation, the wake monitor and
// self-mute window, the recorder, and the playback controller.
func (a *App) initOrchestrator() {
	mute := &wake.MuteWindow{}
	intr := &wake.InterruptSource{}

	var monitor *wake.Monitor
	if a.cfg.Wake.Enabled {
		monitor = wake.NewMonitor(a.providers.Wake, mute, slog.Default())
		a.closers = append(a.closers, a.providers.Wake.Close)
	}

	recorder := listen.NewRecorder(a.providers.Source, a.providers.VAD, listen.Config{
		SampleRate:     a.cfg.Audio.SampleRate,
		FrameDuration:  a.cfg.Audio.FrameDuration(),
		Aggressiveness: a.cfg.VAD.Aggressiveness,
		SilenceTimeout: a.cfg.VAD.SilenceTimeout,
		MaxDuration:    a.cfg.VAD.MaxDuration,
	}, slog.Default())

	guardedSTT := resilience.GuardSTT(a.providers.STT, resilience.BreakerConfig{
		Name: a.cfg.Providers.STT.Name,
	})

	chain := resilience.NewLLMChain().
		Add(a.cfg.Providers.LLM.Name, a.providers.LLM, resilience.BreakerConfig{})
	for _, fb := range a.llmFallbacks {
		chain.Add(fb.name, fb.provider, resilience.BreakerConfig{})
		slog.Info("llm fallback registered", "name", fb.name)
	}

	controller := speak.NewController(
		a.providers.Speaker, intr, mute, a.cfg.Wake.SelfMute(), slog.Default())

	a.orch = assistant.New(assistant.Config{
		SystemPrompt: a.cfg.Assistant.SystemPrompt,
		Temperature:  a.cfg.Assistant.Temperature,
		MaxTokens:    a.cfg.Assistant.MaxTokens,
		RecentTurns:  a.cfg.History.Recent,
		WakeEnabled:  a.cfg.Wake.Enabled,
		SelfMute:     a.cfg.Wake.SelfMute(),
		STTLabel:     a.cfg.Providers.STT.Name,
		LLMLabel:     a.cfg.Providers.LLM.Name,
	}, assistant.Deps{
		Source:     a.providers.Source,
		Monitor:    monitor,
		Interrupts: intr,
		Mute:       mute,
		Recorder:   recorder,
		STT:        guardedSTT,
		LLM:        chain,
		Speaker:    controller,
		History:    a.store,
		Metrics:    a.metric,
	})

	a.closers = append(a.closers, a.providers.Source.Close)
}

// Health returns the handler main registers on the telemetry mux.
func (a *App) Health() *health.Handler {
	return a.hp
}

// Run marks the app ready and blocks in the interaction loop until ctx is
// cancelled or the capture stream ends.
func (a *App) Run(ctx context.Context) error {
	slog.Info("assistant running",
		"wake_enabled", a.cfg.Wake.Enabled,
		"keyword", a.cfg.Wake.Keyword,
		"stt", a.cfg.Providers.STT.Name,
		"llm", a.cfg.Providers.LLM.Name,
	)
	a.hp.SetReady()
	return a.orch.Run(ctx)
}

// Shutdown tears down all subsystems in order. It respects the context
// deadline: if ctx expires before all closers finish, remaining closers are
// skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down",
			"closers", len(a.closers),
			"interactions", a.orch.Cycles(),
		)

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "error", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
