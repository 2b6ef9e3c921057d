package chat

import "github.com/recapd/recapd/internal/infrastructure/cache"

// SidecarTranscripts resolves first-turn context straight from the
// transcript sidecars
type SidecarTranscripts struct {
	store *cache.SidecarStore
}

// NewSidecarTranscripts creates a transcript source over the store
func NewSidecarTranscripts(store *cache.SidecarStore) SidecarTranscripts {
	return SidecarTranscripts{store: store}
}

// TranscriptText returns the cached transcript text for a recording
func (s SidecarTranscripts) TranscriptText(identity string) (string, bool) {
	data, ok, err := s.store.Read(s.store.TranscriptKey(identity))
	if err != nil || !ok {
		return "", false
	}
	saved := cache.DecodeTranscript(data)
	if saved.IsEmpty() {
		return "", false
	}
	return saved.FullText, true
}
