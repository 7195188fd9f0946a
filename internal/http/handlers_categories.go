package http

import (
	"net/http"
	"strings"

	"budgetbalancer/internal/core"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in core.NewCategory
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	category, err := s.storage.CreateCategory(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var typeFilter *core.CategoryType
	switch t := core.CategoryType(r.URL.Query().Get("type")); t {
	case "":
	case core.Predefined, core.Custom:
		typeFilter = &t
	default:
		writeError(w, http.StatusBadRequest, "type must be predefined or custom")
		return
	}

	categories, err := s.storage.ListCategories(r.Context(), typeFilter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Name *string `json:"name"`
		Icon *string `json:"icon"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Name == nil && in.Icon == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		writeServiceError(w, r, core.ErrEmptyName)
		return
	}

	category, err := s.storage.UpdateCategory(r.Context(), id, in.Name, in.Icon)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.storage.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var in core.NewCategoryRule
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if _, err := s.storage.GetCategory(r.Context(), in.CategoryID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	rule, err := s.storage.CreateRule(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Pattern    *string `json:"pattern"`
		CategoryID *int64  `json:"category_id"`
		Priority   *int64  `json:"priority"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Pattern == nil && in.CategoryID == nil && in.Priority == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if in.Pattern != nil && strings.TrimSpace(*in.Pattern) == "" {
		writeServiceError(w, r, core.ErrEmptyPattern)
		return
	}
	if in.CategoryID != nil {
		if _, err := s.storage.GetCategory(r.Context(), *in.CategoryID); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	rule, err := s.storage.UpdateRule(r.Context(), id, in.Pattern, in.CategoryID, in.Priority)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.storage.ListRules(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.storage.DeleteRule(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
