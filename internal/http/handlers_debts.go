package http

import (
	"net/http"

	"budgetbalancer/internal/core"
)

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var in core.NewDebt
	if !decodeJSON(w, r, &in) {
		return
	}

	debt, err := s.debts.CreateDebt(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, debt)
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.debts.ListDebts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in struct {
		Balance      *float64 `json:"balance,omitempty"`
		InterestRate *float64 `json:"interest_rate,omitempty"`
		MinPayment   *float64 `json:"min_payment,omitempty"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Balance == nil && in.InterestRate == nil && in.MinPayment == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	debt, err := s.debts.UpdateDebt(r.Context(), id, in.Balance, in.InterestRate, in.MinPayment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusOK, debt)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.debts.DeleteDebt(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in struct {
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
		PlanID *int64  `json:"plan_id,omitempty"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	result, err := s.debts.RecordPayment(r.Context(), id, in.Amount, in.Date, in.PlanID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleDebtProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	progress, err := s.debts.Progress(r.Context(), id, startDate, endDate)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handlePaymentSchedule(w http.ResponseWriter, r *http.Request) {
	months := queryIntDefault(r, "months", 1)
	schedules, err := s.debts.Schedule(r.Context(), months)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Strategy      string  `json:"strategy"`
		MonthlyAmount float64 `json:"monthly_amount"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	plan, err := s.debts.CreatePlan(r.Context(), in.Strategy, in.MonthlyAmount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.debts.ListPlans(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	plan, err := s.debts.GetPlan(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleCompareStrategies(w http.ResponseWriter, r *http.Request) {
	var in struct {
		MonthlyAmount float64 `json:"monthly_amount"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	comparison, err := s.debts.CompareStrategies(r.Context(), in.MonthlyAmount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}
