package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DurationProber measures an audio file's duration in seconds. The
// completeness heuristic divides transcript length by this value.
type DurationProber interface {
	Duration(ctx context.Context, audioPath string) (float64, error)
}

// FFProbeDuration asks ffprobe for the container duration
type FFProbeDuration struct {
	command string
}

// NewFFProbeDuration creates a prober using the given ffprobe binary
func NewFFProbeDuration(command string) *FFProbeDuration {
	if command == "" {
		command = "ffprobe"
	}
	return &FFProbeDuration{command: command}
}

// Duration returns the audio duration in seconds
func (p *FFProbeDuration) Duration(ctx context.Context, audioPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.command,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("duration probe failed: %w", err)
	}
	return parseDuration(stdout.String())
}

func parseDuration(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("duration probe returned no value")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("duration probe returned %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration probe returned negative value %f", d)
	}
	return d, nil
}
