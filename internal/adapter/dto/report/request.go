package report

// GenerateRequest asks for the daily report of one calendar day
type GenerateRequest struct {
	Date string `json:"date" validate:"required,datelabel"`
}
