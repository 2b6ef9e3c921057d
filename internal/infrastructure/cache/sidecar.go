package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sidecar extensions. Keys are always derived from the recording path
// by suffix substitution, never by hashing, so cache artifacts stay
// colocated with the source file and die with a rename.
const (
	extTranscript = ".transcript"
	extSummary    = ".summary"
	extChat       = ".chat"
)

// Config describes where sidecar artifacts live. SharedSummaryDir,
// when set, redirects summary sidecars into one fixed directory so
// they remain discoverable even when the recordings root is
// sandbox-relative.
type Config struct {
	RecordingsRoot   string
	SharedSummaryDir string
	GlobalChatPath   string
}

// SidecarStore persists opaque byte blobs keyed by paths derived from a
// recording's identity. It never interprets content.
type SidecarStore struct {
	cfg  Config
	memo *memoryView
}

// NewSidecarStore creates a sidecar store for the given layout
func NewSidecarStore(cfg Config) *SidecarStore {
	return &SidecarStore{cfg: cfg, memo: newMemoryView()}
}

// TranscriptKey derives the transcript sidecar path for a recording
func (s *SidecarStore) TranscriptKey(recordingPath string) string {
	return replaceExt(recordingPath, extTranscript)
}

// SummaryKey derives the summary sidecar path for a recording. With a
// shared summary directory configured the sidecar moves there, named
// after the recording's base name.
func (s *SidecarStore) SummaryKey(recordingPath string) string {
	if s.cfg.SharedSummaryDir != "" {
		base := filepath.Base(replaceExt(recordingPath, extSummary))
		return filepath.Join(s.cfg.SharedSummaryDir, base)
	}
	return replaceExt(recordingPath, extSummary)
}

// ChatKey derives the chat-history sidecar path for a recording
func (s *SidecarStore) ChatKey(recordingPath string) string {
	return replaceExt(recordingPath, extChat)
}

// GlobalChatKey is the fixed key for the global-scope conversation,
// independent of any recording
func (s *SidecarStore) GlobalChatKey() string {
	if s.cfg.GlobalChatPath != "" {
		return s.cfg.GlobalChatPath
	}
	return filepath.Join(s.cfg.RecordingsRoot, "global"+extChat)
}

// Write persists a blob under key. The write is atomic from the
// reader's perspective: content lands in a temp file first and is
// renamed into place.
func (s *SidecarStore) Write(key string, value []byte) error {
	dir := filepath.Dir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(key)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, key); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish cache blob: %w", err)
	}

	s.memo.set(key, value)
	return nil
}

// Read returns the blob for key, or ok=false when absent
func (s *SidecarStore) Read(key string) ([]byte, bool, error) {
	if b, ok := s.memo.get(key); ok {
		return b, true, nil
	}
	b, err := os.ReadFile(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache blob: %w", err)
	}
	s.memo.set(key, b)
	return b, true, nil
}

// Exists reports whether a blob is present under key
func (s *SidecarStore) Exists(key string) bool {
	if _, ok := s.memo.get(key); ok {
		return true
	}
	_, err := os.Stat(key)
	return err == nil
}

// Delete removes the blob under key. Absent keys are not an error.
func (s *SidecarStore) Delete(key string) error {
	s.memo.delete(key)
	if err := os.Remove(key); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache blob: %w", err)
	}
	return nil
}

// replaceExt substitutes the path's extension. Paths without an
// extension get the suffix appended.
func replaceExt(path, newExt string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + newExt
}
