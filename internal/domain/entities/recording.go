package entities

import (
	"path/filepath"
	"time"
)

// Recording identifies one audio artifact on disk. The path is the
// stable identity every cache key and engine request is derived from;
// renaming the file invalidates its sidecar caches.
type Recording struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Name returns the recording's base file name
func (r Recording) Name() string {
	return filepath.Base(r.Path)
}
