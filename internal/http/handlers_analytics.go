package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"budgetbalancer/internal/core"
)

// dateRange pulls start_date/end_date from the query, both required and
// both YYYY-MM-DD.
func dateRange(w http.ResponseWriter, r *http.Request) (start, end string, ok bool) {
	start = r.URL.Query().Get("start_date")
	end = r.URL.Query().Get("end_date")
	if core.ValidateDate(start) != nil || core.ValidateDate(end) != nil {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required in YYYY-MM-DD format")
		return "", "", false
	}
	return start, end, true
}

func writeRawJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleSpendingByCategory(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	accountID := queryInt64(r, "account_id")

	key := "spending:" + start + ":" + end
	if accountID != nil {
		key += ":" + strconv.FormatInt(*accountID, 10)
	}
	if body, found := s.analyticsCache.Get(key); found {
		writeRawJSON(w, body)
		return
	}

	report, err := s.analytics.SpendingByCategory(r.Context(), start, end, accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	body, err := json.Marshal(report)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.analyticsCache.Set(key, body)
	writeRawJSON(w, body)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "daily"
	}
	switch interval {
	case "daily", "weekly", "monthly":
	default:
		writeError(w, http.StatusBadRequest, "interval must be daily, weekly or monthly")
		return
	}

	trends, err := s.analytics.Trends(r.Context(), start, end, interval, queryInt64(r, "category_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "current_month"
	}
	switch period {
	case "current_month", "last_30_days", "current_year":
	default:
		writeError(w, http.StatusBadRequest, "period must be current_month, last_30_days or current_year")
		return
	}

	key := "dashboard:" + period
	if body, found := s.analyticsCache.Get(key); found {
		writeRawJSON(w, body)
		return
	}

	summary, err := s.analytics.Dashboard(r.Context(), period)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	body, err := json.Marshal(summary)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.analyticsCache.Set(key, body)
	writeRawJSON(w, body)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	var (
		data []byte
		err  error
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		data, err = s.exporter.SpendingReportCSV(r.Context(), start, end)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="spending_report.csv"`)
	case "text":
		data, err = s.exporter.SpendingReportText(r.Context(), start, end)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="spending_report.txt"`)
	default:
		writeError(w, http.StatusBadRequest, "format must be csv or text")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	var in core.NewSpendingTarget
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	// Surface a clean 404 instead of a foreign key failure.
	if _, err := s.storage.GetCategory(r.Context(), in.CategoryID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	target, err := s.storage.CreateSpendingTarget(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, target)
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := s.storage.ListSpendingTargets(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

func (s *Server) handleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in struct {
		Amount  *float64 `json:"amount,omitempty"`
		EndDate *string  `json:"end_date,omitempty"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Amount == nil && in.EndDate == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if in.Amount != nil && *in.Amount <= 0 {
		writeServiceError(w, r, core.ErrInvalidAmount)
		return
	}
	if in.EndDate != nil {
		if err := core.ValidateDate(*in.EndDate); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	target, err := s.storage.UpdateSpendingTarget(r.Context(), id, in.Amount, in.EndDate)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (s *Server) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.storage.DeleteSpendingTarget(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTargetProgress reports target progress for an explicit date range
// or a named period (monthly, quarterly, yearly).
func (s *Server) handleTargetProgress(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	if period := r.URL.Query().Get("period"); period != "" {
		var err error
		start, end, err = s.targets.PeriodRange(core.TargetPeriod(period))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if core.ValidateDate(start) != nil || core.ValidateDate(end) != nil {
		writeError(w, http.StatusBadRequest, "provide period or start_date and end_date")
		return
	}

	progress, err := s.targets.Progress(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
