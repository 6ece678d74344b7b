package app

import (
	"context"
	"testing"
	"time"

	"github.com/sable-voice/sable/internal/config"
	"github.com/sable-voice/sable/internal/history"
	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/capture"
	llmmock "github.com/sable-voice/sable/pkg/provider/llm/mock"
	sttmock "github.com/sable-voice/sable/pkg/provider/stt/mock"
	ttsmock "github.com/sable-voice/sable/pkg/provider/tts/mock"
	vadmock "github.com/sable-voice/sable/pkg/provider/vad/mock"
	wakemock "github.com/sable-voice/sable/pkg/provider/wake/mock"
)

// nullSource is a capture source whose stream never produces frames.
type nullSource struct {
	ch         chan audio.Frame
	closeCalls int
}

var _ capture.Source = (*nullSource)(nil)

func newNullSource() *nullSource {
	return &nullSource{ch: make(chan audio.Frame)}
}

func (s *nullSource) Start(context.Context) error { return nil }
func (s *nullSource) Frames() <-chan audio.Frame  { return s.ch }
func (s *nullSource) Stop() error                 { return nil }

func (s *nullSource) Close() error {
	s.closeCalls++
	return nil
}

func testProviders() *Providers {
	return &Providers{
		Source:  newNullSource(),
		VAD:     &vadmock.Engine{Session: &vadmock.Session{}},
		Wake:    &wakemock.Engine{},
		STT:     &sttmock.Provider{},
		LLM:     &llmmock.Provider{},
		Speaker: &ttsmock.Speaker{},
	}
}

func TestNewWiresPipeline(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	a, err := New(cfg, testProviders(), WithHistory(history.NewMemStore()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Health() == nil {
		t.Error("Health handler missing")
	}
}

func TestNewRejectsMissingProviders(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	tests := []struct {
		name   string
		mutate func(*Providers)
	}{
		{"no source", func(p *Providers) { p.Source = nil }},
		{"no vad", func(p *Providers) { p.VAD = nil }},
		{"no stt", func(p *Providers) { p.STT = nil }},
		{"no llm", func(p *Providers) { p.LLM = nil }},
		{"no speaker", func(p *Providers) { p.Speaker = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := testProviders()
			tc.mutate(p)
			if _, err := New(cfg, p, WithHistory(history.NewMemStore())); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestNewRequiresWakeEngineWhenEnabled(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Wake.Enabled = true
	cfg.Wake.AccessKey = "key"
	p := testProviders()
	p.Wake = nil

	if _, err := New(cfg, p, WithHistory(history.NewMemStore())); err == nil {
		t.Error("want error when wake is enabled without an engine")
	}
}

func TestRunObservesCancellation(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	a, err := New(cfg, testProviders(), WithHistory(history.NewMemStore()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("Run returned nil on cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not observe cancellation")
	}
}

func TestShutdownRunsClosersOnce(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Wake.Enabled = true
	cfg.Wake.AccessKey = "key"
	p := testProviders()
	src := p.Source.(*nullSource)
	eng := p.Wake.(*wakemock.Engine)

	a, err := New(cfg, p, WithHistory(history.NewMemStore()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := a.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := a.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}

	if src.closeCalls != 1 {
		t.Errorf("source closed %d times, want 1", src.closeCalls)
	}
	if eng.CloseCallCount != 1 {
		t.Errorf("wake engine closed %d times, want 1", eng.CloseCallCount)
	}
}

func TestShutdownHonoursDeadline(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	a, err := New(cfg, testProviders(), WithHistory(history.NewMemStore()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Shutdown(ctx); err == nil {
		t.Error("Shutdown with expired context should return its error")
	}
}
