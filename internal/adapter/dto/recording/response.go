package recording

import (
	"github.com/recapd/recapd/internal/domain/entities"
	"github.com/recapd/recapd/internal/usecase/transcription"
)

// StatusResponse is the observable pipeline state plus display segments
type StatusResponse struct {
	transcription.Snapshot
	Segments []entities.TranscriptSegment `json:"segments,omitempty"`
}
