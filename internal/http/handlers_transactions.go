package http

import (
	"net/http"
	"strconv"
	"strings"

	"budgetbalancer/internal/services"
	"budgetbalancer/internal/storage"
)

func queryInt64(r *http.Request, name string) *int64 {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return &n
	}
	return nil
}

func queryString(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

func queryIntDefault(r *http.Request, name string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func transactionFilter(r *http.Request) storage.TransactionFilter {
	return storage.TransactionFilter{
		AccountID:  queryInt64(r, "account_id"),
		CategoryID: queryInt64(r, "category_id"),
		StartDate:  queryString(r, "start_date"),
		EndDate:    queryString(r, "end_date"),
		Search:     queryString(r, "search"),
		Page:       queryIntDefault(r, "page", 1),
		PageSize:   queryIntDefault(r, "page_size", 0),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f := transactionFilter(r)
	transactions, total, err := s.storage.ListTransactions(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Transactions any   `json:"transactions"`
		Total        int64 `json:"total"`
		Page         int   `json:"page"`
	}{Transactions: transactions, Total: total, Page: f.Page})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tx, err := s.storage.GetTransaction(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransactionCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in struct {
		CategoryID int64 `json:"category_id"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.CategoryID < 1 {
		writeError(w, http.StatusBadRequest, "invalid category_id")
		return
	}

	tx, err := s.storage.UpdateTransactionCategory(r.Context(), id, in.CategoryID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusOK, tx)
}

// handleCategorizeTransaction re-runs the rules for one transaction and
// stores the result.
func (s *Server) handleCategorizeTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tx, err := s.storage.GetTransaction(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	rules, err := s.storage.ListRules(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	categoryID := services.NewCategorizer(rules).Categorize(tx.Merchant, tx.Description)
	if _, err := s.storage.UpdateTransactionCategory(r.Context(), id, categoryID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()

	writeJSON(w, http.StatusOK, struct {
		CategoryID int64 `json:"category_id"`
	}{CategoryID: categoryID})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.storage.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		data []byte
		err  error
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		data, err = s.exporter.TransactionsCSV(r.Context(), transactionFilter(r))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	case "json":
		data, err = s.exporter.TransactionsJSON(r.Context(), transactionFilter(r))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.json"`)
	default:
		writeError(w, http.StatusBadRequest, "format must be csv or json")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
