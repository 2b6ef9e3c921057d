package entities

// SpeakerSegment is a contiguous speech interval attributed to one
// speaker, as produced by the engine's diarization
type SpeakerSegment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// TranscriptSegment is one time-stamped piece of transcript text used
// for playback-synchronized highlighting. Speaker is empty when the
// segment came from the on-device fallback or a synthetic timeline.
type TranscriptSegment struct {
	Text            string  `json:"text"`
	StartSeconds    float64 `json:"start_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`
	Speaker         string  `json:"speaker,omitempty"`
}

// SavedTranscript is the persisted transcript model. Written once per
// recording; replaced only by an explicit retranscription.
type SavedTranscript struct {
	FullText string           `json:"transcript"`
	Segments []SpeakerSegment `json:"speaker_segments,omitempty"`
}

// IsEmpty reports whether the transcript carries no text at all
func (t SavedTranscript) IsEmpty() bool {
	return t.FullText == ""
}

// NewSavedTranscript creates a transcript from engine output
func NewSavedTranscript(text string, segments []SpeakerSegment) *SavedTranscript {
	return &SavedTranscript{
		FullText: text,
		Segments: segments,
	}
}
