package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/recapd/recapd/pkg/config"
)

// Recognizer produces a plain-text transcript from an audio file using
// on-device models. This path has no diarization: segments synthesized
// from its output never carry speaker labels.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath string) (string, error)
}

// CommandRecognizer shells out to a local whisper-style CLI. The
// recognizer models are external; this only knows how to invoke the
// binary and read its stdout.
type CommandRecognizer struct {
	command string
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCommandRecognizer creates a recognizer from fallback config
func NewCommandRecognizer(cfg *config.FallbackConfig, logger *zap.Logger) *CommandRecognizer {
	return &CommandRecognizer{
		command: cfg.Command,
		model:   cfg.ModelPath,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Recognize transcribes the audio file, returning plain text
func (r *CommandRecognizer) Recognize(ctx context.Context, audioPath string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := []string{"-nt"}
	if r.model != "" {
		args = append(args, "-m", r.model)
	}
	args = append(args, "-f", audioPath)

	cmd := exec.CommandContext(ctx, r.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("local recognizer failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(stdout.String())
	if r.logger != nil {
		r.logger.Info("local recognition finished",
			zap.String("audio", audioPath),
			zap.Int("chars", len(text)),
			zap.Duration("took", time.Since(start)),
		)
	}
	return text, nil
}
