// Package http serves the ledger JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"zenledger/internal/assistant"
	"zenledger/internal/core"
	applog "zenledger/internal/log"
	"zenledger/internal/middleware/ratelimit"
	"zenledger/internal/middleware/security"
	"zenledger/internal/middleware/trace"
	"zenledger/internal/snapshot"
	"zenledger/internal/store"
)

// Ledger is the service the handlers drive.
type Ledger interface {
	Snapshot() store.Snapshot
	Transaction(id string) (core.Transaction, bool)
	Preferences() core.Preferences

	AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	AddAccount(ctx context.Context, a core.Account) (core.Account, error)
	UpdateAccount(ctx context.Context, id string, patch store.AccountPatch) (core.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	AddTag(ctx context.Context, t core.Tag) (core.Tag, error)
	UpdateTag(ctx context.Context, id string, patch store.TagPatch) (core.Tag, error)
	SetBudget(ctx context.Context, id string, limit *float64) (core.Tag, error)
	AddSubTag(ctx context.Context, id, name string) (core.Tag, error)
	RemoveSubTag(ctx context.Context, id, name string) (core.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	ResetTags(ctx context.Context) ([]core.Tag, error)

	Restore(ctx context.Context, doc snapshot.Document) (store.Restored, error)
	SetPreferences(ctx context.Context, p core.Preferences) (core.Preferences, error)
}

type Assistant interface {
	Ask(ctx context.Context, input string) (assistant.Response, error)
}

// Pinger reports whether the persistence backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr               string
	Ledger             Ledger
	Assistant          Assistant // nil disables /api/assistant
	Ready              Pinger    // nil makes /readyz always ready
	Location           *time.Location
	RateLimitPerMinute int
	Logger             *applog.Logger
	Now                func() time.Time
}

type Server struct {
	http.Server
	ledger    Ledger
	assistant Assistant
	ready     Pinger
	loc       *time.Location
	now       func() time.Time
	logger    *applog.Logger
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		ledger:    opts.Ledger,
		assistant: opts.Assistant,
		ready:     opts.Ready,
		loc:       opts.Location,
		now:       opts.Now,
		logger:    logger,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}

	rlCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}
	s.limiter = ratelimit.NewLimiter(rlCfg)

	detector := security.NewDetector()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(detector.ExtractClientIP, logger)
	limit := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
			WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
	})

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = limit(h)
	h = detector.Middleware(logger)(h)
	h = headers.Middleware(h)
	h = tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("PATCH /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("GET /api/tags", s.handleListTags)
	mux.HandleFunc("POST /api/tags", s.handleCreateTag)
	mux.HandleFunc("POST /api/tags/reset", s.handleResetTags)
	mux.HandleFunc("PATCH /api/tags/{id}", s.handleUpdateTag)
	mux.HandleFunc("DELETE /api/tags/{id}", s.handleDeleteTag)
	mux.HandleFunc("PUT /api/tags/{id}/budget", s.handleSetBudget)
	mux.HandleFunc("POST /api/tags/{id}/subtags", s.handleAddSubTag)
	mux.HandleFunc("DELETE /api/tags/{id}/subtags/{name}", s.handleRemoveSubTag)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/stats/summary", s.handleSummary)
	mux.HandleFunc("GET /api/stats/series", s.handleSeries)
	mux.HandleFunc("GET /api/stats/trend", s.handleTrend)

	mux.HandleFunc("GET /api/export/snapshot", s.handleExportSnapshot)
	mux.HandleFunc("POST /api/import/snapshot", s.handleImportSnapshot)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export/xlsx", s.handleExportXLSX)

	mux.HandleFunc("POST /api/assistant", s.handleAsk)
	mux.HandleFunc("POST /api/assistant/accept", s.handleAcceptDraft)

	mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /api/preferences", s.handleSetPreferences)
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
