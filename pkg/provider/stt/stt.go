// Package stt defines the Provider interface for speech-to-text backends.
//
// Sable transcribes whole utterances: a recording is captured, closed by the
// silence gate, and submitted as one WAV payload. The Provider abstraction is
// therefore batch-oriented rather than streaming, which keeps backends down
// to a single authenticated request.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyAudio is returned when the submitted payload carries no samples.
var ErrEmptyAudio = errors.New("stt: audio payload is empty")

// APIError reports a non-success response from a transcription service. The
// status code distinguishes auth failures and rate limits from transient
// server errors.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stt: api returned status %d: %s", e.StatusCode, e.Body)
}

// Provider is the abstraction over any speech-to-text backend.
type Provider interface {
	// Transcribe submits a complete WAV-encoded utterance and returns its
	// transcript. An empty or unintelligible utterance yields an empty string
	// and a nil error; failures to reach or be understood by the service
	// return an error, typically an *APIError.
	Transcribe(ctx context.Context, wav []byte) (string, error)
}
