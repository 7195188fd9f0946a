package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"budgetbalancer/internal/middleware/ratelimit"
	"budgetbalancer/internal/services"
	"budgetbalancer/internal/storage"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	opts := DefaultOptions()
	opts.ImportInterval = time.Millisecond
	srv := NewServer("127.0.0.1:0", repo, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz = %d, want 200", rec.Code)
	}
}

func TestAccountLifecycle(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]any{
		"name": "Main Checking", "type": "checking", "initial_balance": 1500.0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[map[string]any](t, rec)
	id := int64(created["id"].(float64))

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/accounts/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/accounts/%d", id), map[string]any{
		"balance": 2000.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[map[string]any](t, rec)
	if updated["balance"].(float64) != 2000 {
		t.Errorf("balance = %v, want 2000", updated["balance"])
	}

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/accounts/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	deleted := decodeBody[map[string]any](t, rec)
	if deleted["deleted_transactions"].(float64) != 0 {
		t.Errorf("deleted_transactions = %v, want 0", deleted["deleted_transactions"])
	}

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/accounts/%d", id), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]any{
		"name": "", "type": "checking",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty name = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]any{
		"name": "X", "type": "checking", "bogus": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field = %d, want 400", rec.Code)
	}
}

func createAccount(t *testing.T, srv *Server) int64 {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]any{
		"name": "Test", "type": "checking", "initial_balance": 100.0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account = %d: %s", rec.Code, rec.Body.String())
	}
	return int64(decodeBody[map[string]any](t, rec)["id"].(float64))
}

func TestCSVImportFlow(t *testing.T) {
	srv := testServer(t)
	accountID := createAccount(t, srv)

	content := "Date,Amount,Description\n" +
		"2026-01-05,-42.50,STARBUCKS COFFEE\n" +
		"2026-01-06,-100.00,WALMART\n"

	rec := doJSON(t, srv, http.MethodPost, "/api/csv/headers", map[string]any{"content": content})
	if rec.Code != http.StatusOK {
		t.Fatalf("headers = %d: %s", rec.Code, rec.Body.String())
	}
	headers := decodeBody[struct {
		Headers []string `json:"headers"`
	}](t, rec)
	if len(headers.Headers) != 3 {
		t.Fatalf("got %d headers, want 3", len(headers.Headers))
	}

	time.Sleep(2 * time.Millisecond) // clear the import interval
	rec = doJSON(t, srv, http.MethodPost, "/api/csv/import", map[string]any{
		"account_id": accountID,
		"content":    content,
		"mapping":    map[string]any{"date": "Date", "amount": "Amount", "description": "Description"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("import = %d: %s", rec.Code, rec.Body.String())
	}
	stats := decodeBody[services.ImportStats](t, rec)
	if stats.Imported != 2 {
		t.Errorf("imported = %d, want 2", stats.Imported)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	page := decodeBody[struct {
		Total int64 `json:"total"`
	}](t, rec)
	if page.Total != 2 {
		t.Errorf("total = %d, want 2", page.Total)
	}
}

func TestCSVImportThrottled(t *testing.T) {
	srv := testServer(t)
	srv.importLimiter = ratelimit.NewIntervalLimiter(time.Hour)

	body := map[string]any{
		"account_id": createAccount(t, srv),
		"content":    "Date,Amount,Description\n2026-01-05,-1.00,X\n",
		"mapping":    map[string]any{"date": "Date", "amount": "Amount", "description": "Description"},
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/csv/import", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("first import = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/csv/import", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second import = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestDebtPlanEndpoints(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/debts", map[string]any{
		"name": "Card", "balance": 1000.0, "interest_rate": 20.0, "min_payment": 25.0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create debt = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/debts", map[string]any{
		"name": "Bad", "balance": 100.0, "interest_rate": 150.0, "min_payment": 5.0,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad rate = %d, want 422", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/plans", map[string]any{
		"strategy": "avalanche", "monthly_amount": 200.0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plan = %d: %s", rec.Code, rec.Body.String())
	}
	plan := decodeBody[map[string]any](t, rec)
	planID := int64(plan["plan_id"].(float64))

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/plans/%d", planID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get plan = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/plans", map[string]any{
		"strategy": "hybrid", "monthly_amount": 200.0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad strategy = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/plans/compare", map[string]any{
		"monthly_amount": 200.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("compare = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDashboardCached(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/analytics/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard = %d: %s", rec.Code, rec.Body.String())
	}
	first := rec.Body.String()

	if _, found := srv.analyticsCache.Get("dashboard:current_month"); !found {
		t.Fatal("dashboard response not cached")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/analytics/dashboard", nil)
	if rec.Body.String() != first {
		t.Error("cached response differs")
	}

	// A write invalidates the cache.
	createAccount(t, srv)
	if _, found := srv.analyticsCache.Get("dashboard:current_month"); found {
		t.Error("cache survived a write")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/analytics/dashboard?period=fortnight", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad period = %d, want 400", rec.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options header")
	}
}

func TestCategoryAndRuleEndpoints(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/categories", map[string]any{"name": "Hobby"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category = %d: %s", rec.Code, rec.Body.String())
	}
	categoryID := int64(decodeBody[map[string]any](t, rec)["id"].(float64))

	rec = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/categories/%d", categoryID),
		map[string]any{"name": "Hobbies"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update category = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[map[string]any](t, rec)["name"]; got != "Hobbies" {
		t.Errorf("name = %v, want Hobbies", got)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/categories/1", map[string]any{"name": "Food"})
	if rec.Code != http.StatusConflict {
		t.Errorf("update predefined = %d, want 409", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/categories?type=custom", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list custom = %d", rec.Code)
	}
	if customs := decodeBody[[]map[string]any](t, rec); len(customs) != 1 {
		t.Errorf("got %d custom categories, want 1", len(customs))
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/categories?type=weird", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type filter = %d, want 400", rec.Code)
	}

	// Rules against a missing category are rejected up front.
	rec = doJSON(t, srv, http.MethodPost, "/api/rules",
		map[string]any{"pattern": "craft store", "category_id": 9999, "priority": 1})
	if rec.Code != http.StatusNotFound {
		t.Errorf("rule with missing category = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/rules",
		map[string]any{"pattern": "craft store", "category_id": categoryID, "priority": 1})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rule = %d: %s", rec.Code, rec.Body.String())
	}
	ruleID := int64(decodeBody[map[string]any](t, rec)["id"].(float64))

	rec = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/rules/%d", ruleID),
		map[string]any{"priority": 42})
	if rec.Code != http.StatusOK {
		t.Fatalf("update rule = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[map[string]any](t, rec)["priority"].(float64); got != 42 {
		t.Errorf("priority = %v, want 42", got)
	}

	rec = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/rules/%d", ruleID),
		map[string]any{"category_id": 9999})
	if rec.Code != http.StatusNotFound {
		t.Errorf("rule update to missing category = %d, want 404", rec.Code)
	}
}

func TestExportFormats(t *testing.T) {
	srv := testServer(t)
	accountID := createAccount(t, srv)

	time.Sleep(2 * time.Millisecond) // clear the import interval
	rec := doJSON(t, srv, http.MethodPost, "/api/csv/import", map[string]any{
		"account_id": accountID,
		"content": "Date,Amount,Description\n" +
			"2026-01-05,-42.50,STARBUCKS COFFEE\n" +
			"2026-01-06,-100.00,WALMART\n",
		"mapping": map[string]any{"date": "Date", "amount": "Amount", "description": "Description"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("import = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/export?format=json", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("json export = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
	if exported := decodeBody[[]map[string]any](t, rec); len(exported) != 2 {
		t.Errorf("exported %d transactions, want 2", len(exported))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/export?format=xml", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown transaction format = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet,
		"/api/analytics/report?start_date=2026-01-01&end_date=2026-01-31&format=text", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("text report = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q, want text/plain", ct)
	}
	if !strings.Contains(rec.Body.String(), "Total Spending") {
		t.Errorf("text report missing summary line: %q", rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet,
		"/api/analytics/report?start_date=2026-01-01&end_date=2026-01-31&format=pdf", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown report format = %d, want 400", rec.Code)
	}
}
