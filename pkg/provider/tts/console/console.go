// Package console implements a Speaker that writes chunks to a terminal,
// paced at a speaking rate so playback timing behaves like real speech. It is
// the default backend on hosts without a synthesis engine.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sable-voice/sable/pkg/provider/tts"
)

const defaultWordsPerMinute = 170

// Option is a functional option for configuring the Speaker.
type Option func(*Speaker)

// WithWriter redirects output. The default is os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(s *Speaker) {
		s.w = w
	}
}

// WithRate sets the pacing in words per minute. Zero or negative disables
// pacing entirely, which is what tests want.
func WithRate(wordsPerMinute int) Option {
	return func(s *Speaker) {
		s.wpm = wordsPerMinute
	}
}

// Speaker writes each chunk on its own line and sleeps for the time a voice
// would take to say it.
type Speaker struct {
	w   io.Writer
	wpm int
}

var _ tts.Speaker = (*Speaker)(nil)

// New returns a console speaker.
func New(opts ...Option) *Speaker {
	s := &Speaker{w: os.Stdout, wpm: defaultWordsPerMinute}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Say implements [tts.Speaker].
func (s *Speaker) Say(ctx context.Context, chunk string) error {
	if _, err := fmt.Fprintln(s.w, chunk); err != nil {
		return fmt.Errorf("console: write chunk: %w", err)
	}
	if s.wpm <= 0 {
		return nil
	}

	words := len(strings.Fields(chunk))
	if words == 0 {
		return nil
	}
	pause := time.Duration(words) * time.Minute / time.Duration(s.wpm)

	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
