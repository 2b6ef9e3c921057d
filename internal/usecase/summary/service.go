package summary

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperr "github.com/recapd/recapd/errors"
	"github.com/recapd/recapd/internal/infrastructure/cache"
	"github.com/recapd/recapd/pkg/ai"
)

// EngineSummarizer is the slice of the engine client this service uses
type EngineSummarizer interface {
	Summarize(ctx context.Context, req ai.SummarizeRequest) (string, error)
	DailySummarize(ctx context.Context, req ai.DailySummarizeRequest) (string, error)
}

// Service wraps the engine's summarization with sidecar caching and a
// per-recording in-flight guard. The engine itself never dedupes;
// callers are rejected here while an identical request is running.
type Service struct {
	engine EngineSummarizer
	store  *cache.SidecarStore
	logger *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService creates a summarization service
func NewService(engine EngineSummarizer, store *cache.SidecarStore, logger *zap.Logger) *Service {
	return &Service{
		engine:   engine,
		store:    store,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Summarize returns the summary for a recording's transcript,
// cache-first. Each engine call carries a freshly generated session id
// so the engine's conversational memory treats every summarization as
// an independent request.
func (s *Service) Summarize(ctx context.Context, transcriptText, recordingIdentity string) (string, error) {
	key := s.store.SummaryKey(recordingIdentity)
	if data, ok, err := s.store.Read(key); err != nil {
		return "", err
	} else if ok {
		return string(data), nil
	}

	s.mu.Lock()
	if _, busy := s.inFlight[recordingIdentity]; busy {
		s.mu.Unlock()
		return "", apperr.ErrAlreadyExists("summarization for this recording").
			WithDetail("recording", recordingIdentity)
	}
	s.inFlight[recordingIdentity] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, recordingIdentity)
		s.mu.Unlock()
	}()

	summary, err := s.engine.Summarize(ctx, ai.SummarizeRequest{
		Transcript:        transcriptText,
		RecordingIdentity: recordingIdentity,
		SessionID:         uuid.New().String(),
	})
	if err != nil {
		return "", err
	}

	// .summary sidecars are raw text
	if err := s.store.Write(key, []byte(summary)); err != nil {
		return "", err
	}
	if s.logger != nil {
		s.logger.Info("summary cached",
			zap.String("recording", recordingIdentity),
			zap.Int("chars", len(summary)),
		)
	}
	return summary, nil
}

// SummarizeDay produces one combined report over a day's transcripts.
// No caching and no per-document dedup happen here; the caller owns the
// set. The session id is fresh for the same reason as Summarize.
func (s *Service) SummarizeDay(ctx context.Context, transcripts []string, dateLabel string) (string, error) {
	return s.engine.DailySummarize(ctx, ai.DailySummarizeRequest{
		Transcripts: transcripts,
		DateLabel:   dateLabel,
		SessionID:   uuid.New().String(),
	})
}
