package wake

import (
	"context"
	"sync"

	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/capture"
)

// scriptedSource feeds a fixed frame sequence for monitor tests.
type scriptedSource struct {
	mu      sync.Mutex
	frames  chan audio.Frame
	stopped int
}

var _ capture.Source = (*scriptedSource)(nil)

func newScriptedSource(frames []audio.Frame, closeAfter bool) *scriptedSource {
	ch := make(chan audio.Frame, len(frames)+1)
	for _, f := range frames {
		ch <- f
	}
	if closeAfter {
		close(ch)
	}
	return &scriptedSource{frames: ch}
}

func (s *scriptedSource) Start(ctx context.Context) error { return nil }
func (s *scriptedSource) Frames() <-chan audio.Frame      { return s.frames }
func (s *scriptedSource) Close() error                    { return nil }

func (s *scriptedSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
	return nil
}

func (s *scriptedSource) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
