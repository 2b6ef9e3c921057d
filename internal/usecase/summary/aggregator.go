package summary

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/recapd/recapd/internal/domain/entities"
	"github.com/recapd/recapd/internal/infrastructure/cache"
)

// RecordingSource lists recordings created on a calendar day
type RecordingSource interface {
	ListByDate(date time.Time) ([]entities.Recording, error)
}

// ReportStore persists daily reports, one file per report
type ReportStore interface {
	GetByDate(date time.Time) (*entities.DailyReport, bool, error)
	Save(report *entities.DailyReport) error
}

// DaySummarizer is the slice of Service the aggregator needs
type DaySummarizer interface {
	SummarizeDay(ctx context.Context, transcripts []string, dateLabel string) (string, error)
}

// Aggregator rolls all of one day's cached transcripts into a single
// daily report. A day that already has a report is never regenerated.
type Aggregator struct {
	summarizer DaySummarizer
	recordings RecordingSource
	reports    ReportStore
	store      *cache.SidecarStore
	logger     *zap.Logger
}

// NewAggregator creates a daily aggregator
func NewAggregator(
	summarizer DaySummarizer,
	recordings RecordingSource,
	reports ReportStore,
	store *cache.SidecarStore,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		summarizer: summarizer,
		recordings: recordings,
		reports:    reports,
		store:      store,
		logger:     logger,
	}
}

// GenerateIfMissing builds the report for date unless one already
// exists. The bool reports whether a report was created by this call;
// a pre-existing report comes back with false. Days without any
// transcribed recordings produce no report and no error. Task
// extraction is out of scope here; reports start with an empty task
// list.
func (a *Aggregator) GenerateIfMissing(ctx context.Context, date time.Time) (*entities.DailyReport, bool, error) {
	if existing, ok, err := a.reports.GetByDate(date); err != nil {
		return nil, false, err
	} else if ok {
		return existing, false, nil
	}

	recs, err := a.recordings.ListByDate(date)
	if err != nil {
		return nil, false, err
	}

	transcripts := make([]string, 0, len(recs))
	for _, rec := range recs {
		data, ok, err := a.store.Read(a.store.TranscriptKey(rec.Path))
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		saved := cache.DecodeTranscript(data)
		if saved.IsEmpty() {
			continue
		}
		transcripts = append(transcripts, saved.FullText)
	}

	if len(transcripts) == 0 {
		if a.logger != nil {
			a.logger.Info("no transcripts for day, skipping report",
				zap.String("date", date.Format("2006-01-02")),
			)
		}
		return nil, false, nil
	}

	dateLabel := date.Format("2006-01-02")
	markdown, err := a.summarizer.SummarizeDay(ctx, transcripts, dateLabel)
	if err != nil {
		return nil, false, err
	}

	report := entities.NewDailyReport(date, markdown)
	if err := a.reports.Save(report); err != nil {
		return nil, false, err
	}
	if a.logger != nil {
		a.logger.Info("daily report generated",
			zap.String("date", dateLabel),
			zap.Int("recordings", len(transcripts)),
		)
	}
	return report, true, nil
}
