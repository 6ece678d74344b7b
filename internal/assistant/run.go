package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sable-voice/sable/internal/listen"
	"github.com/sable-voice/sable/internal/observe"
	"github.com/sable-voice/sable/internal/speak"
	"github.com/sable-voice/sable/pkg/audio"
	"github.com/sable-voice/sable/pkg/provider/llm"
)

// retryDelay spaces out retries after a failed wake episode or a skipped
// cycle so a broken device does not spin the loop.
const retryDelay = time.Second

// cycleStatus tells the run loop what became of a cycle.
type cycleStatus int

const (
	// cycleRan means the cycle reached the pipeline, however it ended.
	cycleRan cycleStatus = iota

	// cycleSkipped means nothing was captured; worth a retry after a pause.
	cycleSkipped

	// cycleStreamEnded means the capture stream closed for good.
	cycleStreamEnded
)

// Run drives interaction cycles until ctx ends or the capture stream closes
// for good. All per-cycle goroutines are joined before each cycle finishes.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer func() {
		o.log.Info("assistant stopped", "interactions", o.cycles.Load())
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		o.setState(StateWakeListening)

		if o.cfg.WakeEnabled {
			detected, err := o.monitor.Wait(ctx, o.src)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				o.log.Warn("wake listening episode failed", "error", err)
				if err := o.pause(ctx); err != nil {
					return err
				}
				continue
			}
			if !detected {
				o.log.Info("capture stream ended, shutting down")
				return nil
			}
			o.metrics.WakeDetections.Add(ctx, 1)
			o.log.Info("wake word detected")
		}

		status := o.runCycle(ctx)
		o.cycles.Add(1)

		// Without a wake stage there is nothing to block on between
		// cycles, so a dead source must end the loop or slow it down.
		if !o.cfg.WakeEnabled {
			switch status {
			case cycleStreamEnded:
				o.log.Info("capture stream ended, shutting down")
				return nil
			case cycleSkipped:
				if err := o.pause(ctx); err != nil {
					return err
				}
			}
		}
	}
}

// pause sleeps for the retry delay unless ctx ends first.
func (o *Orchestrator) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(o.retryDelay):
		return nil
	}
}

// runCycle executes one detection-to-reply cycle. It never returns an error;
// every failure degrades to a skipped cycle or a spoken apology.
func (o *Orchestrator) runCycle(ctx context.Context) cycleStatus {
	ctx, span := observe.StartSpan(ctx, "assistant.cycle")
	defer span.End()
	log := observe.Logger(ctx)

	seg, status := o.capture(ctx, log)
	if status != cycleRan {
		return status
	}

	transcript, ok := o.transcribe(ctx, log, seg)
	if !ok {
		o.speakReply(ctx, log, o.cfg.CycleApology, true)
		return cycleRan
	}
	if strings.TrimSpace(transcript) == "" {
		log.Info("no speech detected, skipping cycle")
		o.metrics.RecordCycle(ctx, "skipped")
		return cycleRan
	}
	log.Info("transcript received", "text", transcript)

	reply, degraded := o.generate(ctx, log, transcript)
	o.remember(ctx, log, transcript, reply)
	o.speakReply(ctx, log, reply, degraded)
	return cycleRan
}

// capture records one utterance. A status other than cycleRan means the cycle
// is over before it started.
func (o *Orchestrator) capture(ctx context.Context, log *slog.Logger) (audio.Segment, cycleStatus) {
	o.setState(StateCapturing)

	start := time.Now()
	seg, reason, err := o.rec.Record(ctx)
	o.metrics.RecordingDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() == nil {
			log.Warn("recording failed", "error", err)
			o.metrics.RecordCycle(ctx, "skipped")
		}
		return audio.Segment{}, cycleSkipped
	}
	if seg.Empty() {
		log.Info("empty recording, skipping cycle", "reason", reason.String())
		o.metrics.RecordCycle(ctx, "skipped")
		if reason == listen.ReasonSourceClosed {
			return audio.Segment{}, cycleStreamEnded
		}
		return audio.Segment{}, cycleSkipped
	}

	log.Debug("utterance recorded",
		"duration", seg.Duration(),
		"reason", reason.String(),
	)
	return seg, cycleRan
}

// transcribe sends the recording out for transcription. A false return means
// the transcription service failed, not that the user said nothing.
func (o *Orchestrator) transcribe(ctx context.Context, log *slog.Logger, seg audio.Segment) (string, bool) {
	o.setState(StateAwaitingSTT)

	wav := audio.WAV(seg.PCM(), seg.SampleRate())

	start := time.Now()
	transcript, err := o.stt.Transcribe(ctx, wav)
	o.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		o.metrics.RecordProviderError(ctx, o.cfg.STTLabel, "stt")
		log.Error("transcription failed", "error", err)
		return "", false
	}
	o.metrics.RecordProviderRequest(ctx, o.cfg.STTLabel, "stt", "ok")
	return transcript, true
}

// generate asks the LLM for a reply over the transcript plus recent history.
// On failure it substitutes the apology line and reports degraded=true.
func (o *Orchestrator) generate(ctx context.Context, log *slog.Logger, transcript string) (reply string, degraded bool) {
	o.setState(StateAwaitingLLM)

	req := llm.CompletionRequest{
		SystemPrompt: o.cfg.SystemPrompt,
		Messages:     o.contextMessages(ctx, log, transcript),
		Temperature:  o.cfg.Temperature,
		MaxTokens:    o.cfg.MaxTokens,
	}

	start := time.Now()
	resp, err := o.llm.Complete(ctx, req)
	o.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		o.metrics.RecordProviderError(ctx, o.cfg.LLMLabel, "llm")
		log.Error("reply generation failed", "error", err)
		return o.cfg.GenerationApology, true
	}
	o.metrics.RecordProviderRequest(ctx, o.cfg.LLMLabel, "llm", "ok")
	return resp.Content, false
}

// contextMessages assembles the prompt: the last N history turns followed by
// the fresh transcript as a user message. A history failure shrinks the
// context instead of failing the cycle.
func (o *Orchestrator) contextMessages(ctx context.Context, log *slog.Logger, transcript string) []llm.Message {
	var msgs []llm.Message

	turns, err := o.store.Recent(ctx, o.cfg.RecentTurns)
	if err != nil {
		log.Warn("history read failed, prompting without context", "error", err)
	}
	for _, turn := range turns {
		msgs = append(msgs, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: transcript})
}

// remember appends the exchange to the conversation log, best effort.
func (o *Orchestrator) remember(ctx context.Context, log *slog.Logger, transcript, reply string) {
	if err := o.store.Append(ctx, llm.RoleUser, transcript); err != nil {
		log.Warn("history append failed", "role", llm.RoleUser, "error", err)
	}
	if err := o.store.Append(ctx, llm.RoleAssistant, reply); err != nil {
		log.Warn("history append failed", "role", llm.RoleAssistant, "error", err)
	}
}

// speakReply plays the reply with a barge-in guard listening alongside, then
// records the cycle outcome.
func (o *Orchestrator) speakReply(ctx context.Context, log *slog.Logger, reply string, degraded bool) {
	o.setState(StateSpeaking)
	if o.mute != nil {
		o.mute.Engage(o.cfg.SelfMute)
	}

	start := time.Now()
	outcome, err := o.speakGuarded(ctx, reply)
	o.metrics.SpeakDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil && ctx.Err() == nil {
		log.Warn("playback failed", "error", err)
	}

	switch {
	case outcome == speak.Interrupted:
		o.metrics.Interrupts.Add(ctx, 1)
		o.metrics.RecordCycle(ctx, "interrupted")
	case degraded:
		o.metrics.RecordCycle(ctx, "fallback")
	default:
		o.metrics.RecordCycle(ctx, "completed")
	}
}

// speakGuarded runs playback while a wake episode listens for barge-in. Both
// goroutines are joined before it returns.
func (o *Orchestrator) speakGuarded(ctx context.Context, reply string) (speak.Outcome, error) {
	if !o.cfg.WakeEnabled || o.monitor == nil {
		return o.speaker.Speak(ctx, reply)
	}

	guardCtx, stopGuard := context.WithCancel(ctx)
	defer stopGuard()

	var g errgroup.Group
	g.Go(func() error {
		err := o.monitor.Guard(guardCtx, o.src, o.intr)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	outcome, err := o.speaker.Speak(ctx, reply)

	stopGuard()
	if gerr := g.Wait(); gerr != nil && ctx.Err() == nil {
		o.log.Warn("barge-in guard failed", "error", gerr)
	}
	return outcome, err
}
