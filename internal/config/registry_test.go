package config

import (
	"errors"
	"testing"

	"github.com/sable-voice/sable/pkg/provider/stt"
	sttmock "github.com/sable-voice/sable/pkg/provider/stt/mock"
	"github.com/sable-voice/sable/pkg/provider/vad"
)

func TestRegistryCreateSTT(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	var gotEntry ProviderEntry
	reg.RegisterSTT("fake", func(entry ProviderEntry) (stt.Provider, error) {
		gotEntry = entry
		return &sttmock.Provider{}, nil
	})

	p, err := reg.CreateSTT(ProviderEntry{Name: "fake", APIKey: "k"})
	if err != nil {
		t.Fatalf("CreateSTT: %v", err)
	}
	if p == nil {
		t.Fatal("nil provider")
	}
	if gotEntry.APIKey != "k" {
		t.Errorf("factory received entry %+v", gotEntry)
	}
}

func TestRegistryUnregisteredName(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if _, err := reg.CreateSTT(ProviderEntry{Name: "nope"}); !errors.Is(err, ErrProviderNotRegistered) {
		t.Fatalf("want ErrProviderNotRegistered, got %v", err)
	}
	if _, err := reg.CreateLLM(ProviderEntry{Name: "nope"}); !errors.Is(err, ErrProviderNotRegistered) {
		t.Fatalf("want ErrProviderNotRegistered, got %v", err)
	}
	if _, err := reg.CreateVAD(VADConfig{Name: "nope"}); !errors.Is(err, ErrProviderNotRegistered) {
		t.Fatalf("want ErrProviderNotRegistered, got %v", err)
	}
}

func TestRegistryOverwrite(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.RegisterVAD("disabled", func(VADConfig) (vad.Engine, error) { return nil, errors.New("first") })
	reg.RegisterVAD("disabled", func(VADConfig) (vad.Engine, error) { return vad.Disabled{}, nil })

	eng, err := reg.CreateVAD(VADConfig{Name: "disabled"})
	if err != nil {
		t.Fatalf("CreateVAD: %v", err)
	}
	if _, ok := eng.(vad.Disabled); !ok {
		t.Fatalf("second registration should win, got %T", eng)
	}
}
