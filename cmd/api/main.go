package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/recapd/recapd/pkg/validator"

	"github.com/recapd/recapd/internal/adapter/handler"
	"github.com/recapd/recapd/internal/adapter/repository"
	"github.com/recapd/recapd/internal/infrastructure/cache"
	"github.com/recapd/recapd/internal/infrastructure/external/speech"
	"github.com/recapd/recapd/internal/scheduler"
	"github.com/recapd/recapd/internal/usecase/chat"
	"github.com/recapd/recapd/internal/usecase/summary"
	"github.com/recapd/recapd/internal/usecase/transcription"
	pkgai "github.com/recapd/recapd/pkg/ai"
	"github.com/recapd/recapd/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Engine client for the local inference server
	log.Println("🤖 Initializing engine client...")
	engine := pkgai.NewEngineClient(&cfg.Engine)
	if cfg.Engine.RequireAtStartup {
		log.Printf("⏳ Waiting for engine at %s ...", cfg.Engine.BaseURL)
		if err := engine.WaitHealthy(context.Background(), cfg.Engine.StartupHealthWait); err != nil {
			log.Fatalf("Engine did not become healthy: %v", err)
		}
		log.Println("✅ Engine is healthy")
	} else if err := engine.Health(context.Background()); err != nil {
		log.Printf("⚠️  Engine unreachable at startup (continuing, fallback available): %v", err)
	}

	// Sidecar store: transcripts, summaries and chats live next to the
	// recordings they belong to
	log.Println("📦 Initializing sidecar store...")
	store := cache.NewSidecarStore(cache.Config{
		RecordingsRoot:   cfg.Recordings.Root,
		SharedSummaryDir: cfg.Recordings.SharedSummaryDir,
		GlobalChatPath:   cfg.Recordings.GlobalChatPath,
	})

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	loc := time.Local
	recordings := repository.NewRecordingRepository(cfg.Recordings.Root, loc)
	reports := repository.NewReportRepository(cfg.Reports.Dir, loc)

	// Summarization and chat services
	log.Println("📝 Initializing summarization service...")
	summarySvc := summary.NewService(engine, store, logger)
	aggregator := summary.NewAggregator(summarySvc, recordings, reports, store, logger)

	log.Println("💬 Initializing chat manager...")
	chatMgr := chat.NewManager(engine, store, chat.NewSidecarTranscripts(store), logger)

	// On-device fallback recognizer and duration probe
	log.Println("🎙️  Initializing fallback recognizer...")
	fallback := speech.NewCommandRecognizer(&cfg.Fallback, logger)
	prober := speech.NewFFProbeDuration(cfg.Fallback.ProbeCommand)

	// Transcription hub: one orchestrator per recording
	log.Println("🎛️  Initializing transcription hub...")
	hub := transcription.NewHub(transcription.HubOptions{
		Engine:         engine,
		Fallback:       fallback,
		Prober:         prober,
		Store:          store,
		Summarizer:     summarySvc,
		ChatReset:      chatMgr,
		Sink:           transcription.LoggingSink{Logger: logger},
		Logger:         logger,
		MinCharsPerSec: cfg.Recordings.MinCharsPerSec,
	})

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(
		engine,
		handler.NewRecording(hub, recordings, store, logger),
		handler.NewChat(chatMgr, logger),
		handler.NewReport(aggregator, reports, loc, logger),
	)
	router.Setup(e)

	// Daily report scheduler
	log.Println("📅 Starting daily report scheduler...")
	sched := scheduler.New(aggregator, loc, logger)
	if err := sched.Start(cfg.Reports.CronSpec); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
