package deepgram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/provider/stt"
)

const resultBody = `{
	"results": {
		"channels": [
			{"alternatives": [{"transcript": "turn off the lights", "confidence": 0.98}]}
		]
	}
}`

func TestTranscribe(t *testing.T) {
	t.Parallel()

	var gotAuth, gotContentType string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = r.URL.Query()
		w.Write([]byte(resultBody))
	}))
	defer srv.Close()

	p, err := New("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := p.Transcribe(context.Background(), audio.WAV([]byte{0, 0}, 16000))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "turn off the lights" {
		t.Fatalf("transcript = %q", text)
	}
	if gotAuth != "Token test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotContentType != "audio/wav" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if got := gotQuery["model"]; len(got) != 1 || got[0] != "nova-2" {
		t.Errorf("model query = %v", got)
	}
	if got := gotQuery["punctuate"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("punctuate query = %v", got)
	}
}

func TestTranscribeAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, _ := New("bad-key", WithBaseURL(srv.URL))
	_, err := p.Transcribe(context.Background(), audio.WAV([]byte{0, 0}, 16000))

	var apiErr *stt.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *stt.APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
}

func TestTranscribeEmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"channels":[]}}`))
	}))
	defer srv.Close()

	p, _ := New("test-key", WithBaseURL(srv.URL))
	text, err := p.Transcribe(context.Background(), audio.WAV([]byte{0, 0}, 16000))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "" {
		t.Fatalf("want empty transcript, got %q", text)
	}
}

func TestTranscribeEmptyPayloadRejected(t *testing.T) {
	t.Parallel()

	p, _ := New("test-key")
	if _, err := p.Transcribe(context.Background(), nil); !errors.Is(err, stt.ErrEmptyAudio) {
		t.Fatalf("want ErrEmptyAudio, got %v", err)
	}
}

func TestTranscribeContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	p, _ := New("test-key", WithBaseURL(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Transcribe(ctx, audio.WAV([]byte{0, 0}, 16000)); err == nil {
		t.Fatal("want error on cancelled context")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("want error for empty api key")
	}
}
