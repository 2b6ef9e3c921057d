package entities

import (
	"time"

	"github.com/google/uuid"
)

// ReportTask is a task extracted from a daily report. The core pipeline
// persists reports with an empty task list; extraction happens
// elsewhere.
type ReportTask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// DailyReport aggregates all of one calendar day's recordings into a
// single markdown report. At most one exists per day.
type DailyReport struct {
	ID              string       `json:"id"`
	Date            time.Time    `json:"date"`
	MarkdownContent string       `json:"markdownContent"`
	ExtractedTasks  []ReportTask `json:"extractedTasks"`
	CreatedAt       time.Time    `json:"created_at"`
}

// NewDailyReport creates a report for the given day
func NewDailyReport(date time.Time, markdown string) *DailyReport {
	return &DailyReport{
		ID:              uuid.New().String(),
		Date:            date,
		MarkdownContent: markdown,
		ExtractedTasks:  []ReportTask{},
		CreatedAt:       time.Now(),
	}
}

// SameDay reports whether two timestamps fall on the same calendar day
// in the given location
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
