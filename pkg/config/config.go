package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Engine     EngineConfig
	Recordings RecordingsConfig
	Reports    ReportsConfig
	Fallback   FallbackConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// EngineConfig holds the local transcription/LLM engine configuration.
// Transcription carries a long timeout to accommodate large audio;
// summarization and chat are bounded at around two minutes.
type EngineConfig struct {
	BaseURL           string        `envconfig:"ENGINE_URL" default:"http://127.0.0.1:5005"`
	TranscribeTimeout time.Duration `envconfig:"ENGINE_TRANSCRIBE_TIMEOUT" default:"10m"`
	SummarizeTimeout  time.Duration `envconfig:"ENGINE_SUMMARIZE_TIMEOUT" default:"2m"`
	ChatTimeout       time.Duration `envconfig:"ENGINE_CHAT_TIMEOUT" default:"2m"`
	StartupHealthWait time.Duration `envconfig:"ENGINE_HEALTH_WAIT" default:"30s"`
	RequireAtStartup  bool          `envconfig:"ENGINE_REQUIRED" default:"false"`
}

// RecordingsConfig describes where recordings and their sidecar caches
// live. SharedSummaryDir, when set, redirects summary sidecars to a
// fixed directory so they stay discoverable when the recordings root
// itself is sandbox-relative. No environment sniffing happens at
// runtime; this is purely injected configuration.
type RecordingsConfig struct {
	Root             string  `envconfig:"RECORDINGS_ROOT" default:"./recordings"`
	SharedSummaryDir string  `envconfig:"SHARED_SUMMARY_DIR" default:""`
	GlobalChatPath   string  `envconfig:"GLOBAL_CHAT_PATH" default:""`
	MinCharsPerSec   float64 `envconfig:"MIN_CHARS_PER_SEC" default:"1.0"`
}

// ReportsConfig holds daily report configuration
type ReportsConfig struct {
	Dir      string `envconfig:"REPORTS_DIR" default:"./reports"`
	CronSpec string `envconfig:"REPORTS_CRON" default:"0 21 * * *"`
}

// FallbackConfig configures the on-device recognizer used when the
// engine is unreachable
type FallbackConfig struct {
	Command      string        `envconfig:"FALLBACK_COMMAND" default:"whisper-cli"`
	ModelPath    string        `envconfig:"FALLBACK_MODEL" default:""`
	Timeout      time.Duration `envconfig:"FALLBACK_TIMEOUT" default:"10m"`
	ProbeCommand string        `envconfig:"DURATION_PROBE_COMMAND" default:"ffprobe"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.BaseURL == "" {
		return fmt.Errorf("ENGINE_URL must not be empty")
	}
	if c.Recordings.Root == "" {
		return fmt.Errorf("RECORDINGS_ROOT must not be empty")
	}
	if c.Recordings.MinCharsPerSec < 0 {
		return fmt.Errorf("MIN_CHARS_PER_SEC must not be negative")
	}
	return nil
}
