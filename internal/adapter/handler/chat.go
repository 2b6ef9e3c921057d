package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/recapd/recapd/errors"
	"github.com/recapd/recapd/internal/adapter/dto/chatdto"
	"github.com/recapd/recapd/internal/usecase/chat"
)

// Chat exposes recording-scoped and global chat sessions over HTTP
type Chat struct {
	manager *chat.Manager
	logger  *zap.Logger
}

func NewChat(manager *chat.Manager, logger *zap.Logger) *Chat {
	return &Chat{manager: manager, logger: logger}
}

func (h *Chat) session(path string, global bool) (*chat.Session, error) {
	if global {
		return h.manager.Global(), nil
	}
	if path == "" {
		return nil, errors.ErrMissingRecordingPath()
	}
	return h.manager.Recording(path), nil
}

// Send appends one user turn to a session and returns the reply. Engine
// failures still produce a reply: an assistant-role message describing
// the failure, kept in history like any other turn.
func (h *Chat) Send(c echo.Context) error {
	var req chatdto.SendRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	sess, err := h.session(req.Path, req.Global)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	reply, err := sess.Send(c.Request().Context(), req.Message)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, chatdto.SendResponse{Reply: reply})
}

// History returns every message of a session, oldest first
func (h *Chat) History(c echo.Context) error {
	var req chatdto.HistoryRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	sess, err := h.session(req.Path, req.Global)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	messages, err := sess.History()
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, chatdto.HistoryResponse{Messages: messages})
}
