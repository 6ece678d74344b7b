// Package tts defines the Speaker interface for speech output backends.
//
// A Speaker renders one chunk of text at a time. Chunked delivery is what
// makes playback interruptible: the speak controller checks for an interrupt
// between chunks, so a backend never needs to abort mid-utterance on its own.
//
// Implementations must be safe for concurrent use, though the controller
// serialises calls for a single playback.
package tts

import "context"

// Speaker renders text chunks as audible (or visible) speech.
type Speaker interface {
	// Say renders one chunk and returns when the chunk has been delivered.
	// Cancelling ctx abandons the chunk as quickly as the backend allows.
	Say(ctx context.Context, chunk string) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, chunk string) error

// Say implements Speaker.
func (f SpeakerFunc) Say(ctx context.Context, chunk string) error { return f(ctx, chunk) }
