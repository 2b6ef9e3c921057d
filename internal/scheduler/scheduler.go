package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/recapd/recapd/internal/usecase/summary"
)

// Scheduler triggers the daily report at a fixed local time. Generation
// is idempotent per day, so a restart after the trigger fired does not
// produce a second report.
type Scheduler struct {
	cron       *cron.Cron
	aggregator *summary.Aggregator
	loc        *time.Location
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler bound to the local timezone
func New(aggregator *summary.Aggregator, loc *time.Location, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		aggregator: aggregator,
		loc:        loc,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start registers the daily trigger and starts the cron loop. spec is a
// standard 5-field cron expression.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		date := time.Now().In(s.loc)
		s.logger.Info("scheduler.daily_report.trigger",
			zap.String("date", date.Format("2006-01-02")),
		)

		report, created, err := s.aggregator.GenerateIfMissing(s.ctx, date)
		switch {
		case err != nil:
			s.logger.Error("scheduler.daily_report.failed", zap.Error(err))
		case report == nil:
			s.logger.Info("scheduler.daily_report.skipped",
				zap.String("reason", "no transcripts for the day"),
			)
		case !created:
			s.logger.Info("scheduler.daily_report.skipped",
				zap.String("reason", "report already exists"),
				zap.String("report_id", report.ID),
			)
		default:
			s.logger.Info("scheduler.daily_report.generated",
				zap.String("report_id", report.ID),
			)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler.started", zap.String("spec", spec))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.cancel()
	s.logger.Info("scheduler.stopped")
}
