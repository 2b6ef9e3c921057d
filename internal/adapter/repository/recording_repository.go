package repository

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/recapd/recapd/internal/domain/entities"
)

// audio extensions the lister recognizes as recordings
var audioExtensions = map[string]bool{
	".m4a":  true,
	".wav":  true,
	".mp3":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

// RecordingRepository lists recordings from the configured root
// directory. It is explicitly constructed and injected; nothing in the
// pipeline reaches for a process-wide lister.
type RecordingRepository struct {
	root string
	loc  *time.Location
}

// NewRecordingRepository creates a repository over the recordings root.
// Day boundaries use the given location, defaulting to local time.
func NewRecordingRepository(root string, loc *time.Location) *RecordingRepository {
	if loc == nil {
		loc = time.Local
	}
	return &RecordingRepository{root: root, loc: loc}
}

// List returns every recording under the root, oldest first
func (r *RecordingRepository) List() ([]entities.Recording, error) {
	var out []entities.Recording
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !audioExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, entities.Recording{
			Path:      path,
			CreatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListByDate returns the recordings created on the given calendar day
func (r *RecordingRepository) ListByDate(date time.Time) ([]entities.Recording, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}
	var out []entities.Recording
	for _, rec := range all {
		if entities.SameDay(rec.CreatedAt, date, r.loc) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Exists reports whether a recording file is present
func (r *RecordingRepository) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
