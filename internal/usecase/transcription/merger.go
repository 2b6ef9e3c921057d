package transcription

import (
	"strings"

	"github.com/recapd/recapd/internal/domain/entities"
)

// Synthetic timeline pacing used when no real timing exists. The
// resulting evenly spaced "karaoke" timeline is an approximation for
// display only; its timestamps are not audio-accurate.
const (
	syntheticStartStep   = 0.4
	syntheticSegDuration = 0.35
)

// MergeSegments converts a flat transcript plus optional diarized
// intervals into the ordered segment sequence used for
// playback-synchronized highlighting.
//
// With intervals present each maps directly to one segment, preserving
// the upstream time order. Without them (fallback path, legacy caches)
// the text is split on whitespace and every token gets a synthetic
// slot on the fixed-pace timeline, with no speaker attribution.
func MergeSegments(fullText string, intervals []entities.SpeakerSegment) []entities.TranscriptSegment {
	if len(intervals) > 0 {
		out := make([]entities.TranscriptSegment, 0, len(intervals))
		for _, iv := range intervals {
			duration := iv.End - iv.Start
			if duration < 0 {
				duration = 0
			}
			out = append(out, entities.TranscriptSegment{
				Text:            iv.Text,
				StartSeconds:    iv.Start,
				DurationSeconds: duration,
				Speaker:         iv.Speaker,
			})
		}
		return out
	}

	tokens := strings.Fields(fullText)
	out := make([]entities.TranscriptSegment, 0, len(tokens))
	for i, tok := range tokens {
		out = append(out, entities.TranscriptSegment{
			Text:            tok,
			StartSeconds:    float64(i) * syntheticStartStep,
			DurationSeconds: syntheticSegDuration,
		})
	}
	return out
}
