package transcription

import "go.uber.org/zap"

// State names one phase of the per-recording pipeline
type State string

const (
	StateIdle         State = "idle"
	StateCacheCheck   State = "cache_check"
	StateLoaded       State = "loaded"
	StateConnecting   State = "connecting"
	StateTranscribing State = "transcribing"
	StateFallback     State = "fallback"
	StateComplete     State = "complete"
	StateFailed       State = "failed"
)

// Snapshot is one observable point-in-time view of a recording's
// pipeline. Snapshots for a given recording are published in strict
// order; consumers never see transitions out of sequence.
type Snapshot struct {
	Identity     string  `json:"identity"`
	State        State   `json:"state"`
	Continuing   bool    `json:"continuing,omitempty"`
	Incomplete   bool    `json:"incomplete,omitempty"`
	FullText     string  `json:"transcript,omitempty"`
	SegmentCount int     `json:"segment_count"`
	Summary      string  `json:"summary,omitempty"`
	SummaryError string  `json:"summary_error,omitempty"`
	Failure      string  `json:"failure,omitempty"`
	CharsPerSec  float64 `json:"chars_per_sec,omitempty"`
}

// EventSink observes pipeline snapshots. Implementations must be cheap;
// they run on the publishing path.
type EventSink interface {
	TranscriptionUpdated(snap Snapshot)
}

// NoopSink discards all events
type NoopSink struct{}

func (NoopSink) TranscriptionUpdated(Snapshot) {}

// LoggingSink mirrors every snapshot into structured logs
type LoggingSink struct {
	Logger *zap.Logger
}

func (s LoggingSink) TranscriptionUpdated(snap Snapshot) {
	s.Logger.Info("transcription.state",
		zap.String("recording", snap.Identity),
		zap.String("state", string(snap.State)),
		zap.Bool("incomplete", snap.Incomplete),
		zap.String("failure", snap.Failure),
	)
}
