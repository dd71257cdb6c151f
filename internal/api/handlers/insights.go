package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/api/middleware"
	"github.com/IshpreetSingh8264/InflowBackend/internal/archive"
	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"github.com/IshpreetSingh8264/InflowBackend/internal/extract"
	infraBQ "github.com/IshpreetSingh8264/InflowBackend/internal/infra/bigquery"
	"github.com/rs/zerolog"
)

// InsightSink persists pipeline runs. Nil means runs are not persisted.
type InsightSink interface {
	SaveCategoryRun(ctx context.Context, userID string, result extract.CategoryResult) (string, error)
	ListRecentRuns(ctx context.Context, userID string, limit int) ([]*infraBQ.InsightRunRow, error)
}

// InsightsHandler exposes the extraction pipelines over HTTP.
type InsightsHandler struct {
	reader      domain.TransactionReader
	categorizer *extract.Categorizer
	summarizer  *extract.Summarizer
	sink        InsightSink
	archiver    *archive.Archiver
	log         zerolog.Logger
}

// NewInsightsHandler creates an insights handler. sink and archiver may be
// nil when persistence or archiving is not configured.
func NewInsightsHandler(reader domain.TransactionReader, categorizer *extract.Categorizer, summarizer *extract.Summarizer, sink InsightSink, archiver *archive.Archiver, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		reader:      reader,
		categorizer: categorizer,
		summarizer:  summarizer,
		sink:        sink,
		archiver:    archiver,
		log:         log,
	}
}

// Categories handles POST /api/insights/categories. The pipeline never
// fails outright; degraded output is still a 200.
func (h *InsightsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	from, to := monthWindow(r)
	txs, err := h.reader.ListTransactions(r.Context(), userID, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	result := h.categorizer.Categorize(r.Context(), txs)

	if result.Raw != "" {
		h.archiver.Store(r.Context(), userID, "categories", result.Raw)
	}
	if h.sink != nil {
		if _, err := h.sink.SaveCategoryRun(r.Context(), userID, result); err != nil {
			h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to persist category run")
		}
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// Summary handles POST /api/insights/summary. Optional month and year query
// parameters select the window; the default is the current calendar month.
func (h *InsightsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	from, to := monthWindow(r)
	txs, err := h.reader.ListTransactions(r.Context(), userID, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	result := h.summarizer.Summarize(r.Context(), txs)

	if result.Raw != "" {
		h.archiver.Store(r.Context(), userID, "summary", result.Raw)
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// Runs handles GET /api/insights/runs. With no sink configured it returns an
// empty list rather than an error.
func (h *InsightsHandler) Runs(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	runs := []*infraBQ.InsightRunRow{}
	if h.sink != nil {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		var err error
		runs, err = h.sink.ListRecentRuns(r.Context(), userID, limit)
		if err != nil {
			h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list category runs")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to list runs")
			return
		}
		if runs == nil {
			runs = []*infraBQ.InsightRunRow{}
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// monthWindow resolves the [from, to) calendar-month window from the
// request's month and year query parameters, defaulting to the current
// month. Out-of-range values fall back to the default.
func monthWindow(r *http.Request) (time.Time, time.Time) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	if v, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && v >= 1970 && v <= 9999 {
		year = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && v >= 1 && v <= 12 {
		month = v
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
