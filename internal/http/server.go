// Package http exposes the application as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetbalancer/internal/cache"
	applog "budgetbalancer/internal/log"
	"budgetbalancer/internal/middleware/ratelimit"
	"budgetbalancer/internal/middleware/security"
	"budgetbalancer/internal/middleware/trace"
	"budgetbalancer/internal/services"
	"budgetbalancer/internal/storage"
)

// Options configures the server beyond its listen address.
type Options struct {
	// Minimum gap between CSV imports.
	ImportInterval time.Duration

	// Per-client request budget for mutating methods.
	RateLimitPerMinute int

	// Analytics response cache.
	CacheTTL  time.Duration
	CacheSize int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		ImportInterval:     2 * time.Second,
		RateLimitPerMinute: 120,
		CacheTTL:           5 * time.Minute,
		CacheSize:          256,
	}
}

// Server wires storage, services, and middleware behind a ServeMux.
type Server struct {
	http.Server

	storage   *storage.SQLiteRepository
	importer  *services.Importer
	analytics *services.Analytics
	targets   *services.TargetTracker
	debts     *services.DebtService
	exporter  *services.Exporter
	logger    *applog.Logger

	limiter       *ratelimit.Limiter
	importLimiter *ratelimit.IntervalLimiter
	resolver      *security.Resolver

	// Cached JSON bodies for the read-heavy analytics endpoints,
	// invalidated by any write that changes their inputs.
	analyticsCache *cache.LRUCache[[]byte]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, repo *storage.SQLiteRepository, opts Options) *Server {
	if opts.ImportInterval <= 0 {
		opts.ImportInterval = DefaultOptions().ImportInterval
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = DefaultOptions().RateLimitPerMinute
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultOptions().CacheTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultOptions().CacheSize
	}

	s := &Server{
		storage:   repo,
		importer:  services.NewImporter(repo),
		analytics: services.NewAnalytics(repo),
		targets:   services.NewTargetTracker(repo),
		debts:     services.NewDebtService(repo),
		exporter:  services.NewExporter(repo),
		logger:    applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP),

		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		importLimiter:  ratelimit.NewIntervalLimiter(opts.ImportInterval),
		resolver:       security.NewResolver(),
		analyticsCache: cache.NewLRUCache[[]byte](opts.CacheSize, opts.CacheTTL),
		cacheManager:   cache.NewManager(),
	}
	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.resolver.ClientIP)

	var handler http.Handler = mux
	handler = s.limitMutations(handler)
	handler = applog.Middleware(s.logger)(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)
	mux.HandleFunc("POST /api/rules", s.handleCreateRule)
	mux.HandleFunc("GET /api/rules", s.handleListRules)
	mux.HandleFunc("PUT /api/rules/{id}", s.handleUpdateRule)
	mux.HandleFunc("DELETE /api/rules/{id}", s.handleDeleteRule)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/export", s.handleExportTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}/category", s.handleUpdateTransactionCategory)
	mux.HandleFunc("POST /api/transactions/{id}/categorize", s.handleCategorizeTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /api/csv/headers", s.handleCSVHeaders)
	mux.HandleFunc("POST /api/csv/import", s.handleCSVImport)
	mux.HandleFunc("POST /api/csv/mappings", s.handleSaveMapping)
	mux.HandleFunc("GET /api/csv/mappings", s.handleListMappings)
	mux.HandleFunc("GET /api/csv/mappings/{source}", s.handleGetMapping)
	mux.HandleFunc("DELETE /api/csv/mappings/{id}", s.handleDeleteMapping)

	mux.HandleFunc("POST /api/debts", s.handleCreateDebt)
	mux.HandleFunc("GET /api/debts", s.handleListDebts)
	mux.HandleFunc("PUT /api/debts/{id}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", s.handleDeleteDebt)
	mux.HandleFunc("POST /api/debts/{id}/payments", s.handleRecordPayment)
	mux.HandleFunc("GET /api/debts/{id}/progress", s.handleDebtProgress)
	mux.HandleFunc("GET /api/debts/schedule", s.handlePaymentSchedule)

	mux.HandleFunc("POST /api/plans", s.handleCreatePlan)
	mux.HandleFunc("GET /api/plans", s.handleListPlans)
	mux.HandleFunc("GET /api/plans/{id}", s.handleGetPlan)
	mux.HandleFunc("POST /api/plans/compare", s.handleCompareStrategies)

	mux.HandleFunc("GET /api/analytics/spending", s.handleSpendingByCategory)
	mux.HandleFunc("GET /api/analytics/trends", s.handleTrends)
	mux.HandleFunc("GET /api/analytics/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/analytics/report", s.handleExportReport)

	mux.HandleFunc("POST /api/targets", s.handleCreateTarget)
	mux.HandleFunc("GET /api/targets", s.handleListTargets)
	mux.HandleFunc("PUT /api/targets/{id}", s.handleUpdateTarget)
	mux.HandleFunc("DELETE /api/targets/{id}", s.handleDeleteTarget)
	mux.HandleFunc("GET /api/targets/progress", s.handleTargetProgress)
}

// limitMutations applies the per-client limiter to mutating methods only;
// reads stay cheap and unthrottled.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.resolver.ClientIP, nil)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.storage.ListCategories(r.Context(), nil); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateAnalytics drops cached analytics responses after a write that
// changes their inputs.
func (s *Server) invalidateAnalytics() {
	s.analyticsCache.DeletePrefix("spending:")
	s.analyticsCache.DeletePrefix("dashboard:")
}

// Shutdown stops background routines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
