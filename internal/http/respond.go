package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"budgetbalancer/internal/core"
	applog "budgetbalancer/internal/log"
	"budgetbalancer/internal/payoff"
	"budgetbalancer/internal/services"
	"budgetbalancer/internal/storage"
)

// Request bodies are small JSON documents; CSV content rides inside one,
// so the cap leaves room above the importer's own file limit.
const maxBodyBytes = core.MaxCSVFileSize + 1<<20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	// Reject trailing garbage after the document.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, http.StatusBadRequest, "request body must contain a single JSON document")
		return false
	}
	return true
}

// pathID parses the {id} path segment.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain errors onto HTTP statuses. Anything
// unrecognized is treated as an internal failure and logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rateErr     *core.InterestRateError
		strategyErr *payoff.InvalidStrategyError
		fundsErr    *payoff.InsufficientFundsError
		exceedErr   *payoff.PayoffExceededError
		paymentErr  *services.PaymentError
		columnErr   *services.MissingColumnError
		sizeErr     *services.FileTooLargeError
		rowsErr     *services.TooManyRowsError
		amountErr   *services.AmountTooLargeError
	)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrPredefinedCategory):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &sizeErr):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &rowsErr),
		errors.As(err, &amountErr),
		errors.As(err, &rateErr),
		errors.As(err, &fundsErr),
		errors.As(err, &exceedErr),
		errors.As(err, &paymentErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &strategyErr),
		errors.As(err, &columnErr),
		errors.Is(err, services.ErrInvalidCSV),
		errors.Is(err, payoff.ErrNoDebts),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyPattern),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidBalance),
		errors.Is(err, core.ErrInvalidMinPayment):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
