package http

import (
	"net/http"
	"strconv"

	"budgetbalancer/internal/core"
	applog "budgetbalancer/internal/log"
	"budgetbalancer/internal/services"
)

type csvMappingPayload struct {
	Date        string  `json:"date"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Merchant    *string `json:"merchant,omitempty"`
}

func (p csvMappingPayload) toMapping() services.CSVMapping {
	return services.CSVMapping{
		Date:        p.Date,
		Amount:      p.Amount,
		Description: p.Description,
		Merchant:    p.Merchant,
	}
}

func (s *Server) handleCSVHeaders(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	headers, err := services.CSVHeaders(in.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Headers []string `json:"headers"`
	}{Headers: headers})
}

func (s *Server) handleCSVImport(w http.ResponseWriter, r *http.Request) {
	if !s.importLimiter.Allow() {
		wait := s.importLimiter.Wait()
		w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
		writeError(w, http.StatusTooManyRequests, "import already in progress, retry shortly")
		return
	}

	var in struct {
		AccountID int64             `json:"account_id"`
		Content   string            `json:"content"`
		Mapping   csvMappingPayload `json:"mapping"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.AccountID < 1 {
		writeError(w, http.StatusBadRequest, "invalid account_id")
		return
	}
	if in.Mapping.Date == "" || in.Mapping.Amount == "" || in.Mapping.Description == "" {
		writeError(w, http.StatusBadRequest, "mapping requires date, amount and description columns")
		return
	}

	// The account must exist before parsing megabytes of CSV.
	if _, err := s.storage.GetAccount(r.Context(), in.AccountID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	stats, err := s.importer.Import(r.Context(), in.AccountID, in.Content, in.Mapping.toMapping())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "CSV import finished",
		applog.FieldAccountID, in.AccountID,
		applog.FieldRows, stats.Total,
		"imported", stats.Imported,
		"duplicates", stats.Duplicates)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSaveMapping(w http.ResponseWriter, r *http.Request) {
	var in core.NewColumnMapping
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	mapping, err := s.storage.SaveColumnMapping(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapping)
}

func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := s.storage.ListColumnMappings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappings)
}

func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	source := r.PathValue("source")
	if source == "" {
		writeError(w, http.StatusBadRequest, "missing source name")
		return
	}
	mapping, err := s.storage.GetColumnMapping(r.Context(), source)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping)
}

func (s *Server) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.storage.DeleteColumnMapping(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
