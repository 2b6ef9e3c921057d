package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperr "github.com/recapd/recapd/errors"
	"github.com/recapd/recapd/internal/domain/entities"
)

const reportExt = ".report.json"

// ReportRepository persists daily reports as one JSON file per report,
// named by calendar day.
type ReportRepository struct {
	dir string
	loc *time.Location
}

// NewReportRepository creates a repository under dir
func NewReportRepository(dir string, loc *time.Location) *ReportRepository {
	if loc == nil {
		loc = time.Local
	}
	return &ReportRepository{dir: dir, loc: loc}
}

func (r *ReportRepository) pathFor(date time.Time) string {
	return filepath.Join(r.dir, date.In(r.loc).Format("2006-01-02")+reportExt)
}

// Save writes a report. One report per day: an existing file for the
// same day is an error, not an overwrite.
func (r *ReportRepository) Save(report *entities.DailyReport) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	path := r.pathFor(report.Date)
	if _, err := os.Stat(path); err == nil {
		return apperr.ErrAlreadyExists("report for " + report.Date.In(r.loc).Format("2006-01-02"))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// GetByDate loads the report for a calendar day, ok=false when absent
func (r *ReportRepository) GetByDate(date time.Time) (*entities.DailyReport, bool, error) {
	data, err := os.ReadFile(r.pathFor(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read report: %w", err)
	}
	var report entities.DailyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, true, nil
}

// List returns all persisted reports, newest day first
func (r *ReportRepository) List() ([]entities.DailyReport, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	var out []entities.DailyReport
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), reportExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read report: %w", err)
		}
		var report entities.DailyReport
		if err := json.Unmarshal(data, &report); err != nil {
			// skip blobs that are not reports
			continue
		}
		out = append(out, report)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
