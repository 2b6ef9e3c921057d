package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/recapd/recapd/errors"
	reportdto "github.com/recapd/recapd/internal/adapter/dto/report"
	"github.com/recapd/recapd/internal/adapter/repository"
	"github.com/recapd/recapd/internal/usecase/summary"
)

// Report exposes daily report generation and listing over HTTP
type Report struct {
	aggregator *summary.Aggregator
	reports    *repository.ReportRepository
	loc        *time.Location
	logger     *zap.Logger
}

func NewReport(
	aggregator *summary.Aggregator,
	reports *repository.ReportRepository,
	loc *time.Location,
	logger *zap.Logger,
) *Report {
	return &Report{
		aggregator: aggregator,
		reports:    reports,
		loc:        loc,
		logger:     logger,
	}
}

// Generate produces the report for one calendar day, or returns the
// already persisted one. A day without transcripts yields no report.
func (h *Report) Generate(c echo.Context) error {
	var req reportdto.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("date must be YYYY-MM-DD"))
	}

	rep, created, err := h.aggregator.GenerateIfMissing(c.Request().Context(), date)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, reportdto.GenerateResponse{
		Generated: created,
		Report:    rep,
	})
}

// List returns every persisted daily report, newest first
func (h *Report) List(c echo.Context) error {
	reports, err := h.reports.List()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	return HandleSuccess(h.logger, c, reportdto.ListResponse{Reports: reports})
}
