package chatdto

// SendRequest is one conversational turn. Path selects the
// recording-scoped session; Global selects the corpus-wide one.
type SendRequest struct {
	Message string `json:"message" validate:"required"`
	Path    string `json:"path,omitempty"`
	Global  bool   `json:"global,omitempty"`
}

// HistoryRequest identifies the session whose history is wanted
type HistoryRequest struct {
	Path   string `query:"path"`
	Global bool   `query:"global"`
}
