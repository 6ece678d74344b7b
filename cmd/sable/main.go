// Command sable is the main entry point for the Sable voice assistant.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sable-voice/sable/internal/app"
	"github.com/sable-voice/sable/internal/config"
	"github.com/sable-voice/sable/internal/observe"
	"github.com/sable-voice/sable/pkg/capture"
	"github.com/sable-voice/sable/pkg/provider/llm"
	"github.com/sable-voice/sable/pkg/provider/llm/anyllm"
	"github.com/sable-voice/sable/pkg/provider/stt"
	"github.com/sable-voice/sable/pkg/provider/stt/deepgram"
	"github.com/sable-voice/sable/pkg/provider/tts"
	"github.com/sable-voice/sable/pkg/provider/tts/console"
	"github.com/sable-voice/sable/pkg/provider/vad"
	"github.com/sable-voice/sable/pkg/provider/vad/energy"
	"github.com/sable-voice/sable/pkg/provider/vad/webrtc"
	"github.com/sable-voice/sable/pkg/provider/wake"
	"github.com/sable-voice/sable/pkg/provider/wake/porcupine"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "sable: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "sable: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	slog.Info("sable starting",
		"config", *configPath,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "sable",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg, cfg)

	// ── Instantiate providers ─────────────────────────────────────────────────
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	application, err := app.New(cfg, providers)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	// ── Telemetry HTTP server (optional) ──────────────────────────────────────
	var telemetrySrv *http.Server
	if addr := cfg.Server.TelemetryAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		application.Health().Register(mux)

		telemetrySrv = &http.Server{Addr: addr, Handler: mux}
		go func() {
			slog.Info("telemetry server listening", "addr", addr)
			if err := telemetrySrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("telemetry server error", "err", err)
			}
		}()
	}

	slog.Info("assistant ready — press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	if telemetrySrv != nil {
		if err := telemetrySrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry server shutdown error", "err", err)
		}
	}

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// builtinProviders maps provider category names to the implementations that
// ship with Sable. Used for startup logging.
var builtinProviders = map[string][]string{
	"stt":  {"deepgram"},
	"llm":  {"groq", "openai", "anthropic", "ollama"},
	"tts":  {"console"},
	"vad":  {"webrtc", "energy", "disabled"},
	"wake": {"porcupine", "disabled"},
}

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives its config block and constructs the provider from the
// real implementation packages. cfg supplies cross-cutting knobs that live
// outside the provider entries, like the console speaking rate.
func registerBuiltinProviders(reg *config.Registry, cfg *config.Config) {
	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("deepgram", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, deepgram.WithBaseURL(entry.BaseURL))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, deepgram.WithLanguage(lang))
		}
		return deepgram.New(entry.APIKey, opts...)
	})

	// ── LLM ───────────────────────────────────────────────────────────────────
	// groq, openai and anthropic share the same pattern: API key + optional
	// BaseURL override.
	for _, providerName := range []string{"groq", "openai", "anthropic"} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.NewOllama(entry.Model, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("console", func(entry config.ProviderEntry) (tts.Speaker, error) {
		return console.New(console.WithRate(cfg.Speak.RateWPM)), nil
	})

	// ── VAD ───────────────────────────────────────────────────────────────────

	reg.RegisterVAD("webrtc", func(config.VADConfig) (vad.Engine, error) {
		return webrtc.New(), nil
	})
	reg.RegisterVAD("energy", func(config.VADConfig) (vad.Engine, error) {
		return energy.New(), nil
	})
	reg.RegisterVAD("disabled", func(config.VADConfig) (vad.Engine, error) {
		return vad.Disabled{}, nil
	})

	// ── Wake ──────────────────────────────────────────────────────────────────

	reg.RegisterWake("porcupine", func(wc config.WakeConfig) (wake.Engine, error) {
		return porcupine.New(wake.Config{
			Keyword:     wc.Keyword,
			Sensitivity: wc.Sensitivity,
			AccessKey:   wc.AccessKey,
		})
	})
	reg.RegisterWake("disabled", func(config.WakeConfig) (wake.Engine, error) {
		return wake.Disabled{}, nil
	})

	for kind, names := range builtinProviders {
		for _, name := range names {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// buildProviders instantiates all providers named in cfg plus the capture
// source, and returns them in an [app.Providers] struct.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ps := &app.Providers{}

	source, err := capture.NewPortAudio(capture.Config{
		SampleRate:    cfg.Audio.SampleRate,
		Channels:      cfg.Audio.Channels,
		FrameDuration: cfg.Audio.FrameDuration(),
		Device:        cfg.Audio.Device,
	})
	if err != nil {
		return nil, fmt.Errorf("open capture source: %w", err)
	}
	ps.Source = source
	sel := source.Format()
	slog.Info("capture device selected",
		"sample_rate", sel.SampleRate,
		"channels", sel.Channels,
	)

	ps.STT, err = reg.CreateSTT(cfg.Providers.STT)
	if err != nil {
		return nil, fmt.Errorf("create stt provider %q: %w", cfg.Providers.STT.Name, err)
	}
	slog.Info("provider created", "kind", "stt", "name", cfg.Providers.STT.Name)

	ps.LLM, err = reg.CreateLLM(cfg.Providers.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm provider %q: %w", cfg.Providers.LLM.Name, err)
	}
	slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name)

	ps.Speaker, err = reg.CreateTTS(cfg.Providers.TTS)
	if err != nil {
		return nil, fmt.Errorf("create tts provider %q: %w", cfg.Providers.TTS.Name, err)
	}
	slog.Info("provider created", "kind", "tts", "name", cfg.Providers.TTS.Name)

	ps.VAD, err = reg.CreateVAD(cfg.VAD)
	if err != nil {
		return nil, fmt.Errorf("create vad engine %q: %w", cfg.VAD.Name, err)
	}
	slog.Info("vad engine created", "name", cfg.VAD.Name)

	wakeName := "disabled"
	if cfg.Wake.Enabled {
		wakeName = "porcupine"
	}
	ps.Wake, err = reg.CreateWake(wakeName, cfg.Wake)
	if err != nil {
		return nil, fmt.Errorf("create wake engine %q: %w", wakeName, err)
	}
	slog.Info("wake engine created", "name", wakeName, "keyword", cfg.Wake.Keyword)

	return ps, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║          Sable — startup summary      ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("STT", cfg.Providers.STT.Name, cfg.Providers.STT.Model)
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	printProvider("TTS", cfg.Providers.TTS.Name, cfg.Providers.TTS.Model)
	printProvider("VAD", cfg.VAD.Name, "")
	if cfg.Wake.Enabled {
		printProvider("Wake", "porcupine", cfg.Wake.Keyword)
	} else {
		printProvider("Wake", "", "")
	}
	if cfg.History.Path != "" {
		printProvider("History", cfg.History.Path, "")
	} else {
		printProvider("History", "in-memory", "")
	}
	if cfg.Server.TelemetryAddr != "" {
		printProvider("Telemetry", cfg.Server.TelemetryAddr, "")
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
