package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.BaseURL != "http://127.0.0.1:5005" {
		t.Errorf("Engine.BaseURL = %q", cfg.Engine.BaseURL)
	}
	if cfg.Engine.TranscribeTimeout != 10*time.Minute {
		t.Errorf("Engine.TranscribeTimeout = %v", cfg.Engine.TranscribeTimeout)
	}
	if cfg.Recordings.MinCharsPerSec != 1.0 {
		t.Errorf("Recordings.MinCharsPerSec = %v", cfg.Recordings.MinCharsPerSec)
	}
	if cfg.Reports.CronSpec != "0 21 * * *" {
		t.Errorf("Reports.CronSpec = %q", cfg.Reports.CronSpec)
	}
	if cfg.Fallback.Command != "whisper-cli" {
		t.Errorf("Fallback.Command = %q", cfg.Fallback.Command)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENGINE_URL", "http://10.0.0.2:7000")
	t.Setenv("RECORDINGS_ROOT", "/data/recordings")
	t.Setenv("MIN_CHARS_PER_SEC", "0.5")
	t.Setenv("REPORTS_CRON", "30 20 * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.BaseURL != "http://10.0.0.2:7000" {
		t.Errorf("Engine.BaseURL = %q", cfg.Engine.BaseURL)
	}
	if cfg.Recordings.Root != "/data/recordings" {
		t.Errorf("Recordings.Root = %q", cfg.Recordings.Root)
	}
	if cfg.Recordings.MinCharsPerSec != 0.5 {
		t.Errorf("Recordings.MinCharsPerSec = %v", cfg.Recordings.MinCharsPerSec)
	}
	if cfg.Reports.CronSpec != "30 20 * * *" {
		t.Errorf("Reports.CronSpec = %q", cfg.Reports.CronSpec)
	}
}

func TestValidateRejectsNegativeRate(t *testing.T) {
	t.Setenv("MIN_CHARS_PER_SEC", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for negative MIN_CHARS_PER_SEC")
	}
}
