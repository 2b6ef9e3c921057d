package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recapd/recapd/pkg/ai"
)

// Router holds all handlers
type Router struct {
	engine           *ai.EngineClient
	recordingHandler *Recording
	chatHandler      *Chat
	reportHandler    *Report
}

// NewRouter creates a new router with all handlers
func NewRouter(engine *ai.EngineClient, recording *Recording, chat *Chat, report *Report) *Router {
	return &Router{
		engine:           engine,
		recordingHandler: recording,
		chatHandler:      chat,
		reportHandler:    report,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupRecordingRoutes(v1)
	rt.setupChatRoutes(v1)
	rt.setupReportRoutes(v1)
}

func (rt *Router) setupRecordingRoutes(g *echo.Group) {
	recordings := g.Group("/recordings")

	recordings.GET("", rt.recordingHandler.List)
	recordings.GET("/status", rt.recordingHandler.Status)
	recordings.POST("/transcribe", rt.recordingHandler.Transcribe)
	recordings.POST("/retranscribe", rt.recordingHandler.Retranscribe)
	recordings.POST("/continue", rt.recordingHandler.Continue)
	recordings.POST("/summary/retry", rt.recordingHandler.RetrySummary)
}

func (rt *Router) setupChatRoutes(g *echo.Group) {
	chats := g.Group("/chat")

	chats.POST("", rt.chatHandler.Send)
	chats.GET("/history", rt.chatHandler.History)
}

func (rt *Router) setupReportRoutes(g *echo.Group) {
	reports := g.Group("/reports")

	reports.GET("", rt.reportHandler.List)
	reports.POST("/generate", rt.reportHandler.Generate)
}

// healthCheck reports service liveness and engine reachability. The
// service stays up when the engine is down; callers see it here.
func (rt *Router) healthCheck(c echo.Context) error {
	engineStatus := "ok"
	if err := rt.engine.Health(c.Request().Context()); err != nil {
		engineStatus = "unreachable"
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"engine": engineStatus,
	})
}
