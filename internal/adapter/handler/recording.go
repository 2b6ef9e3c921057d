package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/recapd/recapd/errors"
	recordingdto "github.com/recapd/recapd/internal/adapter/dto/recording"
	"github.com/recapd/recapd/internal/adapter/repository"
	"github.com/recapd/recapd/internal/infrastructure/cache"
	"github.com/recapd/recapd/internal/usecase/transcription"
)

// Recording exposes the transcription pipeline over HTTP
type Recording struct {
	hub        *transcription.Hub
	recordings *repository.RecordingRepository
	store      *cache.SidecarStore
	logger     *zap.Logger
}

func NewRecording(
	hub *transcription.Hub,
	recordings *repository.RecordingRepository,
	store *cache.SidecarStore,
	logger *zap.Logger,
) *Recording {
	return &Recording{
		hub:        hub,
		recordings: recordings,
		store:      store,
		logger:     logger,
	}
}

// resolve returns the orchestrator for a recording, or NOT_FOUND when
// neither the audio file nor a cached transcript exists for it.
func (h *Recording) resolve(path string) (*transcription.Orchestrator, error) {
	if !h.recordings.Exists(path) && !h.store.Exists(h.store.TranscriptKey(path)) {
		return nil, errors.ErrRecordingNotFound(path)
	}
	return h.hub.Get(path), nil
}

// Transcribe starts the pipeline for one recording. The work continues
// in the background; the response carries the state observed so far.
func (h *Recording) Transcribe(c echo.Context) error {
	var req recordingdto.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	orch, err := h.resolve(req.Path)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	// The pipeline outlives the request; it must not die with the
	// client connection.
	go func() {
		if err := orch.Start(context.Background(), req.Force); err != nil {
			h.logger.Error("transcription.start", zap.String("recording", req.Path), zap.Error(err))
		}
	}()

	return HandleAccepted(h.logger, c, h.status(orch))
}

// Retranscribe discards the transcript, summary and chat for a
// recording and re-runs the pipeline from scratch
func (h *Recording) Retranscribe(c echo.Context) error {
	var req recordingdto.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	orch, err := h.resolve(req.Path)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	go func() {
		if err := orch.Retranscribe(context.Background()); err != nil {
			h.logger.Error("transcription.retranscribe", zap.String("recording", req.Path), zap.Error(err))
		}
	}()

	return HandleAccepted(h.logger, c, h.status(orch))
}

// Continue asks the engine for a fresh attempt on a recording whose
// transcript was flagged as incomplete, keeping the current cache.
func (h *Recording) Continue(c echo.Context) error {
	var req recordingdto.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	orch, err := h.resolve(req.Path)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	go func() {
		if err := orch.Continue(context.Background()); err != nil {
			h.logger.Error("transcription.continue", zap.String("recording", req.Path), zap.Error(err))
		}
	}()

	return HandleAccepted(h.logger, c, h.status(orch))
}

// Status reports the observable pipeline state for one recording
func (h *Recording) Status(c echo.Context) error {
	var req recordingdto.StatusRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	orch, err := h.resolve(req.Path)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, h.status(orch))
}

// RetrySummary re-runs only the summarization step for a recording
// whose transcript loaded but whose summary failed
func (h *Recording) RetrySummary(c echo.Context) error {
	var req recordingdto.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	orch, err := h.resolve(req.Path)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	go orch.RetrySummary(context.Background())

	return HandleAccepted(h.logger, c, h.status(orch))
}

// List returns every audio recording found under the configured root
func (h *Recording) List(c echo.Context) error {
	recs, err := h.recordings.List()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	return HandleSuccess(h.logger, c, recs)
}

func (h *Recording) status(orch *transcription.Orchestrator) recordingdto.StatusResponse {
	return recordingdto.StatusResponse{
		Snapshot: orch.Snapshot(),
		Segments: orch.Segments(),
	}
}
