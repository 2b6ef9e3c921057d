package transcription

import (
	"context"
	"sync"

	"go.uber.org/zap"

	apperr "github.com/recapd/recapd/errors"
	"github.com/recapd/recapd/internal/domain/entities"
	"github.com/recapd/recapd/internal/infrastructure/cache"
	"github.com/recapd/recapd/internal/infrastructure/external/speech"
	"github.com/recapd/recapd/pkg/ai"
)

// Engine is the remote transcription surface the orchestrator drives
type Engine interface {
	Transcribe(ctx context.Context, req ai.TranscribeRequest) (*ai.TranscribeResponse, error)
}

// Summarizer produces (and caches) a summary for a transcript
type Summarizer interface {
	Summarize(ctx context.Context, transcriptText, recordingIdentity string) (string, error)
}

// ChatReset drops any in-memory chat state derived from a recording.
// Retranscription deletes the chat sidecar; this keeps the read-through
// view honest about it.
type ChatReset interface {
	Invalidate(identity string)
}

// Orchestrator is the per-recording state machine. It decides cache hit
// or miss, drives the remote-then-fallback selection, persists results,
// flags incompleteness, and exposes continue/retry operations. At most
// one attempt is in flight per recording at any time.
type Orchestrator struct {
	identity   string
	engine     Engine
	fallback   speech.Recognizer
	prober     speech.DurationProber
	store      *cache.SidecarStore
	summarizer Summarizer
	chatReset  ChatReset
	sink       EventSink
	logger     *zap.Logger

	// below the threshold a transcript is flagged as likely truncated.
	// Tunable policy, not a contract.
	minCharsPerSec float64

	mu           sync.Mutex
	state        State
	inFlight     bool
	continuing   bool
	incomplete   bool
	transcript   *entities.SavedTranscript
	segments     []entities.TranscriptSegment
	summary      string
	summaryError string
	failure      string
	charsPerSec  float64
}

// Options bundles the orchestrator's collaborators. Everything is
// injected; there is no process-wide state.
type Options struct {
	Identity       string
	Engine         Engine
	Fallback       speech.Recognizer
	Prober         speech.DurationProber
	Store          *cache.SidecarStore
	Summarizer     Summarizer
	ChatReset      ChatReset
	Sink           EventSink
	Logger         *zap.Logger
	MinCharsPerSec float64
}

// NewOrchestrator creates the state machine for one recording identity
func NewOrchestrator(opts Options) *Orchestrator {
	sink := opts.Sink
	if sink == nil {
		sink = NoopSink{}
	}
	minRate := opts.MinCharsPerSec
	if minRate <= 0 {
		minRate = 1.0
	}
	return &Orchestrator{
		identity:       opts.Identity,
		engine:         opts.Engine,
		fallback:       opts.Fallback,
		prober:         opts.Prober,
		store:          opts.Store,
		summarizer:     opts.Summarizer,
		chatReset:      opts.ChatReset,
		sink:           sink,
		logger:         opts.Logger,
		minCharsPerSec: minRate,
		state:          StateIdle,
	}
}

// Snapshot returns the current observable state
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Segments returns the current display segments
func (o *Orchestrator) Segments() []entities.TranscriptSegment {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]entities.TranscriptSegment, len(o.segments))
	copy(out, o.segments)
	return out
}

// Start runs the pipeline for this recording. With force=false a cached
// transcript is loaded without any network call; otherwise the engine
// is asked, falling back to on-device recognition when the engine is
// unreachable. A call while an attempt is already in flight is a no-op.
func (o *Orchestrator) Start(ctx context.Context, force bool) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil
	}

	o.setStateLocked(StateCacheCheck)

	if !force {
		if hit, err := o.loadFromCacheLocked(ctx); err != nil {
			o.mu.Unlock()
			return err
		} else if hit {
			needSummary := o.summary == ""
			o.mu.Unlock()
			if needSummary {
				o.summarize(ctx)
			}
			return nil
		}
	}

	o.inFlight = true
	o.setStateLocked(StateConnecting)
	o.mu.Unlock()

	return o.transcribe(ctx, force)
}

// Retranscribe discards the persisted transcript, chat history and
// summary, resets all derived state, and re-runs the miss path. This is
// the only way to replace a stale transcript.
func (o *Orchestrator) Retranscribe(ctx context.Context) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil
	}

	for _, key := range []string{
		o.store.TranscriptKey(o.identity),
		o.store.ChatKey(o.identity),
		o.store.SummaryKey(o.identity),
	} {
		if err := o.store.Delete(key); err != nil {
			o.mu.Unlock()
			return err
		}
	}

	if o.chatReset != nil {
		o.chatReset.Invalidate(o.identity)
	}

	o.transcript = nil
	o.segments = nil
	o.summary = ""
	o.summaryError = ""
	o.failure = ""
	o.incomplete = false
	o.charsPerSec = 0

	o.inFlight = true
	o.setStateLocked(StateConnecting)
	o.mu.Unlock()

	return o.transcribe(ctx, true)
}

// Continue re-enters the miss path without touching the cache, asking
// the engine to reprocess. Used when a transcript was flagged as
// incomplete. There is no resumption token in the engine contract;
// this is a full fresh attempt surfaced under a continuing label.
func (o *Orchestrator) Continue(ctx context.Context) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil
	}
	o.inFlight = true
	o.continuing = true
	o.setStateLocked(StateConnecting)
	o.mu.Unlock()

	return o.transcribe(ctx, true)
}

// loadFromCacheLocked attempts the cache-hit path. Caller holds o.mu.
func (o *Orchestrator) loadFromCacheLocked(ctx context.Context) (bool, error) {
	data, ok, err := o.store.Read(o.store.TranscriptKey(o.identity))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	saved := cache.DecodeTranscript(data)
	o.transcript = saved
	o.segments = MergeSegments(saved.FullText, saved.Segments)
	o.assessCompletenessLocked(ctx)
	o.loadSummaryLocked()
	o.setStateLocked(StateLoaded)

	if o.logger != nil {
		o.logger.Info("transcript loaded from cache",
			zap.String("recording", o.identity),
			zap.Int("segments", len(o.segments)),
			zap.Bool("incomplete", o.incomplete),
		)
	}
	return true, nil
}

// transcribe runs the miss path: remote engine first, on-device
// recognizer when the engine is unreachable
func (o *Orchestrator) transcribe(ctx context.Context, force bool) error {
	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.continuing = false
		o.mu.Unlock()
	}()

	o.mu.Lock()
	o.setStateLocked(StateTranscribing)
	o.mu.Unlock()

	resp, err := o.engine.Transcribe(ctx, ai.TranscribeRequest{
		RecordingIdentity: o.identity,
		Force:             force,
	})
	if err == nil {
		return o.complete(ctx, resp.Transcript, speakerSegments(resp))
	}

	if !apperr.IsConnectivity(err) {
		// server-side failure: surface the engine's message, no fallback
		o.fail(err.Error())
		return err
	}

	if o.logger != nil {
		o.logger.Warn("engine unreachable, switching to on-device recognition",
			zap.String("recording", o.identity),
			zap.Error(err),
		)
	}

	o.mu.Lock()
	o.setStateLocked(StateFallback)
	o.mu.Unlock()

	text, ferr := o.fallback.Recognize(ctx, o.identity)
	if ferr != nil {
		o.fail(ferr.Error())
		return ferr
	}
	// the fallback has no diarization; segments get the synthetic
	// timeline and no speakers
	return o.complete(ctx, text, nil)
}

// complete persists the result and finishes the run. Empty text is a
// terminal failure ("no speech detected"), never retried automatically.
func (o *Orchestrator) complete(ctx context.Context, text string, segments []entities.SpeakerSegment) error {
	if text == "" {
		err := apperr.ErrEmptyResult()
		o.fail(err.Message)
		return err
	}

	saved := entities.NewSavedTranscript(text, segments)
	blob, err := cache.EncodeTranscript(saved)
	if err != nil {
		o.fail(err.Error())
		return err
	}
	if err := o.store.Write(o.store.TranscriptKey(o.identity), blob); err != nil {
		o.fail(err.Error())
		return err
	}

	o.mu.Lock()
	o.transcript = saved
	o.segments = MergeSegments(saved.FullText, saved.Segments)
	o.failure = ""
	o.assessCompletenessLocked(ctx)
	o.setStateLocked(StateComplete)
	o.mu.Unlock()

	if o.logger != nil {
		o.logger.Info("transcription complete",
			zap.String("recording", o.identity),
			zap.Int("chars", len(text)),
			zap.Int("segments", len(segments)),
		)
	}

	o.summarize(ctx)
	return nil
}

// summarize triggers summarization for the current transcript. A
// failure becomes observable state with manual retry; it never
// propagates as a fault.
func (o *Orchestrator) summarize(ctx context.Context) {
	o.mu.Lock()
	if o.summarizer == nil || o.transcript == nil || o.transcript.IsEmpty() {
		o.mu.Unlock()
		return
	}
	text := o.transcript.FullText
	o.mu.Unlock()

	summary, err := o.summarizer.Summarize(ctx, text, o.identity)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.summaryError = err.Error()
		if o.logger != nil {
			o.logger.Error("summarization failed",
				zap.String("recording", o.identity),
				zap.Error(err),
			)
		}
	} else {
		o.summary = summary
		o.summaryError = ""
	}
	o.publishLocked()
}

// RetrySummary re-runs summarization after a surfaced failure
func (o *Orchestrator) RetrySummary(ctx context.Context) {
	o.summarize(ctx)
}

// assessCompletenessLocked applies the chars-per-second heuristic.
// Caller holds o.mu. A failed duration probe leaves the flag unset
// rather than guessing.
func (o *Orchestrator) assessCompletenessLocked(ctx context.Context) {
	o.incomplete = false
	o.charsPerSec = 0
	if o.transcript == nil || o.prober == nil {
		return
	}
	duration, err := o.prober.Duration(ctx, o.identity)
	if err != nil || duration <= 0 {
		return
	}
	rate := float64(len(o.transcript.FullText)) / duration
	o.charsPerSec = rate
	o.incomplete = rate < o.minCharsPerSec
}

// loadSummaryLocked pulls a cached summary into the read-through view.
// Caller holds o.mu.
func (o *Orchestrator) loadSummaryLocked() {
	data, ok, err := o.store.Read(o.store.SummaryKey(o.identity))
	if err != nil || !ok {
		return
	}
	o.summary = string(data)
}

func (o *Orchestrator) fail(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failure = message
	o.setStateLocked(StateFailed)
	if o.logger != nil {
		o.logger.Error("transcription failed",
			zap.String("recording", o.identity),
			zap.String("reason", message),
		)
	}
}

// setStateLocked transitions and publishes. Caller holds o.mu, which is
// what serializes the observable stream per recording.
func (o *Orchestrator) setStateLocked(s State) {
	o.state = s
	o.publishLocked()
}

func (o *Orchestrator) publishLocked() {
	o.sink.TranscriptionUpdated(o.snapshotLocked())
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{
		Identity:     o.identity,
		State:        o.state,
		Continuing:   o.continuing,
		Incomplete:   o.incomplete,
		SegmentCount: len(o.segments),
		Summary:      o.summary,
		SummaryError: o.summaryError,
		Failure:      o.failure,
		CharsPerSec:  o.charsPerSec,
	}
	if o.transcript != nil {
		snap.FullText = o.transcript.FullText
	}
	return snap
}

func speakerSegments(resp *ai.TranscribeResponse) []entities.SpeakerSegment {
	if len(resp.SpeakerSegments) == 0 {
		return nil
	}
	out := make([]entities.SpeakerSegment, 0, len(resp.SpeakerSegments))
	for _, s := range resp.SpeakerSegments {
		out = append(out, entities.SpeakerSegment{
			Text:    s.Text,
			Start:   s.Start,
			End:     s.End,
			Speaker: s.Speaker,
		})
	}
	return out
}
