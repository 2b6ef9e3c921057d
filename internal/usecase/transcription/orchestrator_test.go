package transcription

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	apperr "github.com/recapd/recapd/errors"
	"github.com/recapd/recapd/internal/domain/entities"
	"github.com/recapd/recapd/internal/infrastructure/cache"
	"github.com/recapd/recapd/pkg/ai"
)

type fakeEngine struct {
	mu    sync.Mutex
	calls int
	resp  *ai.TranscribeResponse
	err   error
	// block, when non-nil, holds the call open until closed
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func (f *fakeEngine) Transcribe(ctx context.Context, req ai.TranscribeRequest) (*ai.TranscribeResponse, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecognizer struct {
	text  string
	err   error
	calls int32
}

func (f *fakeRecognizer) Recognize(ctx context.Context, audioPath string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.text, f.err
}

type fixedDuration float64

func (d fixedDuration) Duration(ctx context.Context, audioPath string) (float64, error) {
	return float64(d), nil
}

type fakeSummarizer struct {
	mu      sync.Mutex
	calls   int
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text, identity string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type recordingSink struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recordingSink) TranscriptionUpdated(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
}

func (r *recordingSink) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.State
	}
	return out
}

type fixture struct {
	orch  *Orchestrator
	eng   *fakeEngine
	rec   *fakeRecognizer
	sum   *fakeSummarizer
	store *cache.SidecarStore
	sink  *recordingSink
	path  string
}

func newFixture(t *testing.T, eng *fakeEngine, duration float64) *fixture {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "rec1.m4a")
	store := cache.NewSidecarStore(cache.Config{RecordingsRoot: root})
	rec := &fakeRecognizer{text: "fallback words here"}
	sum := &fakeSummarizer{summary: "a summary"}
	sink := &recordingSink{}
	orch := NewOrchestrator(Options{
		Identity:       path,
		Engine:         eng,
		Fallback:       rec,
		Prober:         fixedDuration(duration),
		Store:          store,
		Summarizer:     sum,
		Sink:           sink,
		MinCharsPerSec: 1.0,
	})
	return &fixture{orch: orch, eng: eng, rec: rec, sum: sum, store: store, sink: sink, path: path}
}

func TestStart_MissThenCacheHit(t *testing.T) {
	eng := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: "hello world"}}
	f := newFixture(t, eng, 1) // 11 chars / 1s, above threshold

	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	snap := f.orch.Snapshot()
	if snap.State != StateComplete {
		t.Fatalf("state = %s, want complete", snap.State)
	}
	if snap.FullText != "hello world" {
		t.Fatalf("transcript = %q", snap.FullText)
	}
	if f.sum.calls != 1 {
		t.Fatalf("summarizer calls = %d, want 1", f.sum.calls)
	}
	if !f.store.Exists(f.store.TranscriptKey(f.path)) {
		t.Fatal("transcript sidecar not persisted")
	}

	// second start must come from cache: no second engine call, identical text
	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if got := eng.callCount(); got != 1 {
		t.Fatalf("engine calls = %d, want 1", got)
	}
	snap2 := f.orch.Snapshot()
	if snap2.State != StateLoaded {
		t.Fatalf("state = %s, want loaded", snap2.State)
	}
	if snap2.FullText != snap.FullText {
		t.Fatalf("cached transcript differs: %q vs %q", snap2.FullText, snap.FullText)
	}
}

func TestStart_CacheHitWithExistingSidecar(t *testing.T) {
	eng := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: "should not be called"}}
	f := newFixture(t, eng, 1)

	// pre-populate as if a prior process transcribed
	blob, _ := cache.EncodeTranscript(entities.NewSavedTranscript("cached text here", nil))
	if err := f.store.Write(f.store.TranscriptKey(f.path), blob); err != nil {
		t.Fatal(err)
	}

	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if eng.callCount() != 0 {
		t.Fatal("engine called despite cache hit")
	}
	snap := f.orch.Snapshot()
	if snap.State != StateLoaded || snap.FullText != "cached text here" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	// no summary sidecar existed, so summarization runs
	if f.sum.calls != 1 {
		t.Fatalf("summarizer calls = %d, want 1", f.sum.calls)
	}
}

func TestStart_ConnectivityFailureFallsBack(t *testing.T) {
	eng := &fakeEngine{err: apperr.ErrConnectivity(context.DeadlineExceeded)}
	f := newFixture(t, eng, 1)

	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if atomic.LoadInt32(&f.rec.calls) != 1 {
		t.Fatal("fallback recognizer not invoked")
	}
	snap := f.orch.Snapshot()
	if snap.State != StateComplete {
		t.Fatalf("state = %s, want complete", snap.State)
	}
	if snap.FullText != "fallback words here" {
		t.Fatalf("transcript = %q", snap.FullText)
	}
	// fallback segments carry no speakers
	for _, seg := range f.orch.Segments() {
		if seg.Speaker != "" {
			t.Fatalf("fallback segment has speaker %q", seg.Speaker)
		}
	}
}

func TestStart_ServerErrorDoesNotFallBack(t *testing.T) {
	eng := &fakeEngine{err: apperr.ErrServer("model exploded")}
	f := newFixture(t, eng, 1)

	if err := f.orch.Start(context.Background(), false); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&f.rec.calls) != 0 {
		t.Fatal("fallback invoked for a non-connectivity failure")
	}
	snap := f.orch.Snapshot()
	if snap.State != StateFailed {
		t.Fatalf("state = %s, want failed", snap.State)
	}
	if snap.Failure == "" {
		t.Fatal("failure message not surfaced")
	}
}

func TestStart_EmptyTranscriptIsTerminal(t *testing.T) {
	eng := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: ""}}
	f := newFixture(t, eng, 1)

	err := f.orch.Start(context.Background(), false)
	if !apperr.IsEmptyResult(err) {
		t.Fatalf("expected EMPTY_RESULT, got %v", err)
	}
	snap := f.orch.Snapshot()
	if snap.State != StateFailed {
		t.Fatalf("state = %s, want failed", snap.State)
	}
	if f.sum.calls != 0 {
		t.Fatal("summarization triggered for empty transcript")
	}
	if f.store.Exists(f.store.TranscriptKey(f.path)) {
		t.Fatal("empty transcript was persisted")
	}
}

func TestCompletenessHeuristic(t *testing.T) {
	// 30 chars over 60 seconds = 0.5 chars/sec, below 1.0
	thirty := "abcdefghijklmnopqrstuvwxyz1234"
	eng := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: thirty}}
	f := newFixture(t, eng, 60)
	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if snap := f.orch.Snapshot(); !snap.Incomplete {
		t.Fatalf("0.5 chars/sec not flagged incomplete: %+v", snap)
	}

	// 120 chars over 60 seconds = 2.0 chars/sec, fine
	oneTwenty := thirty + thirty + thirty + thirty
	eng2 := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: oneTwenty}}
	f2 := newFixture(t, eng2, 60)
	if err := f2.orch.Start(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if snap := f2.orch.Snapshot(); snap.Incomplete {
		t.Fatalf("2.0 chars/sec wrongly flagged incomplete: %+v", snap)
	}
}

func TestRetranscribe_DeletesArtifactsAndRefetches(t *testing.T) {
	eng := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: "first version text"}}
	f := newFixture(t, eng, 1)

	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	// plant a chat sidecar that must die with the transcript
	if err := f.store.Write(f.store.ChatKey(f.path), []byte(`{"messages":[]}`)); err != nil {
		t.Fatal(err)
	}

	eng.resp = &ai.TranscribeResponse{Transcript: "second version text"}
	if err := f.orch.Retranscribe(context.Background()); err != nil {
		t.Fatal(err)
	}

	if eng.callCount() != 2 {
		t.Fatalf("engine calls = %d, want 2", eng.callCount())
	}
	if f.store.Exists(f.store.ChatKey(f.path)) {
		t.Fatal("chat sidecar survived retranscription")
	}
	snap := f.orch.Snapshot()
	if snap.FullText != "second version text" {
		t.Fatalf("transcript = %q", snap.FullText)
	}
}

func TestContinue_KeepsCacheAndRefetches(t *testing.T) {
	eng := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: "short"}}
	f := newFixture(t, eng, 60) // flagged incomplete

	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if !f.orch.Snapshot().Incomplete {
		t.Fatal("expected incomplete flag")
	}

	eng.resp = &ai.TranscribeResponse{Transcript: "a much longer transcript that covers the full recording now"}
	if err := f.orch.Continue(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := f.orch.Snapshot()
	if snap.State != StateComplete || snap.Incomplete {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestStart_SecondCallWhileInFlightIsNoop(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	eng := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: "hello world"}, block: block, started: started}
	f := newFixture(t, eng, 1)

	done := make(chan error, 1)
	go func() { done <- f.orch.Start(context.Background(), false) }()

	// wait for the first call to reach the engine
	<-started

	// second start must return immediately without a second engine call
	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatalf("concurrent start errored: %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if eng.callCount() != 1 {
		t.Fatalf("engine calls = %d, want 1", eng.callCount())
	}
}

func TestSummaryFailureIsObservableAndRetryable(t *testing.T) {
	eng := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: "hello world"}}
	f := newFixture(t, eng, 1)
	f.sum.err = apperr.ErrServer("summarizer overloaded")

	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	snap := f.orch.Snapshot()
	if snap.State != StateComplete {
		t.Fatalf("summary failure must not fail transcription: %+v", snap)
	}
	if snap.SummaryError == "" {
		t.Fatal("summary error not surfaced")
	}

	f.sum.mu.Lock()
	f.sum.err = nil
	f.sum.mu.Unlock()
	f.orch.RetrySummary(context.Background())
	snap = f.orch.Snapshot()
	if snap.Summary != "a summary" || snap.SummaryError != "" {
		t.Fatalf("retry did not recover: %+v", snap)
	}
}

func TestEventOrdering(t *testing.T) {
	eng := &fakeEngine{resp: &ai.TranscribeResponse{Transcript: "hello world"}}
	f := newFixture(t, eng, 1)
	if err := f.orch.Start(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	states := f.sink.states()
	want := []State{StateCacheCheck, StateConnecting, StateTranscribing, StateComplete}
	idx := 0
	for _, s := range states {
		if idx < len(want) && s == want[idx] {
			idx++
		}
	}
	if idx != len(want) {
		t.Fatalf("state sequence %v missing ordered subsequence %v", states, want)
	}
}
