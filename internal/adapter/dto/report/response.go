package report

import "github.com/recapd/recapd/internal/domain/entities"

// GenerateResponse wraps the report for a day. Generated is true only
// when this call created the report; a pre-existing report and a day
// without transcripts both come back false.
type GenerateResponse struct {
	Generated bool                  `json:"generated"`
	Report    *entities.DailyReport `json:"report,omitempty"`
}

// ListResponse is every persisted daily report, newest first
type ListResponse struct {
	Reports []entities.DailyReport `json:"reports"`
}
