package recording

// TranscribeRequest starts (or re-runs) the pipeline for one recording
type TranscribeRequest struct {
	Path  string `json:"path" validate:"required"`
	Force bool   `json:"force"`
}

// StatusRequest identifies the recording whose pipeline state is wanted
type StatusRequest struct {
	Path string `query:"path" validate:"required"`
}
