package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"opsboard/internal/billboard"
	"opsboard/internal/core"
	"opsboard/internal/storage"
)

const summaryCacheKey = "billboard"

// handleBillboard serves the week-over-week summary. Responses are cached
// for the configured TTL so the TV-mode poll loop costs one backend read per
// window.
func (s *Server) handleBillboard(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.summaryCache.Get(summaryCacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.composer.Billboard(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Billboard composition failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compose billboard")
		return
	}

	s.summaryCache.SetWithTTL(summaryCacheKey, summary, s.summaryTTL)
	writeJSON(w, http.StatusOK, summary)
}

// handleTimeseries serves chart buckets. Query parameters:
// source (service_jobs|delivery_tickets, default service_jobs),
// granularity (daily|weekly|monthly, default weekly),
// from/to (YYYY-MM-DD, default the last eight whole weeks),
// compare (true to fetch the preceding window of equal length).
func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	source := billboard.Source(q.Get("source"))
	if source == "" {
		source = billboard.SourceServiceJobs
	}
	g := core.Granularity(q.Get("granularity"))
	if g == "" {
		g = core.Weekly
	}

	now := time.Now()
	from := core.WeekStart(now.AddDate(0, 0, -7*7))
	to := core.WeekEnd(now)

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return
		}
		from = d.Time
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return
		}
		to = d.Time
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not precede from")
		return
	}

	compare := q.Get("compare") == "true" || q.Get("compare") == "1"

	cacheKey := fmt.Sprintf("%s|%s|%s|%s|%t",
		source, g, from.Format("2006-01-02"), to.Format("2006-01-02"), compare)
	if cached, ok := s.timeseriesCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	ts, err := s.composer.Timeseries(r.Context(), source, g, from, to, compare)
	if err != nil {
		if errors.Is(err, billboard.ErrUnknownSource) || errors.Is(err, billboard.ErrUnknownGranularity) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Timeseries composition failed",
			"error", err, "source", source, "granularity", g)
		writeError(w, http.StatusInternalServerError, "failed to compose timeseries")
		return
	}

	s.timeseriesCache.Set(cacheKey, ts)
	writeJSON(w, http.StatusOK, ts)
}

// handleCompleteJob marks a service job completed and invalidates the
// summary cache so the billboard reflects the change on the next poll.
func (s *Server) handleCompleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	if err := s.jobs.CompleteJob(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("job %d not found", id))
			return
		}
		slog.ErrorContext(r.Context(), "Job completion failed", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete job")
		return
	}

	s.summaryCache.Delete(summaryCacheKey)

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"status": string(core.JobCompleted),
	})
}
