package http

import (
	"net/http"

	"budgetbalancer/internal/core"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in core.NewAccount
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	account, err := s.storage.CreateAccount(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.storage.ListAccounts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	account, err := s.storage.GetAccount(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in struct {
		Name    *string  `json:"name,omitempty"`
		Balance *float64 `json:"balance,omitempty"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Name == nil && in.Balance == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	account, err := s.storage.UpdateAccount(r.Context(), id, in.Name, in.Balance)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.storage.DeleteAccount(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	writeJSON(w, http.StatusOK, map[string]int64{"deleted_transactions": deleted})
}
