// Package http serves the ledger's JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/repository"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// Deps are the collaborators the handlers call.
type Deps struct {
	Store   *storage.Store
	Repos   *repository.Repositories
	Reports *services.ReportService
	Backup  *services.BackupService
	Logger  *log.Logger
}

type Options struct {
	RateLimitPerMinute int
	// TrustedProxies are CIDRs, beyond the private ranges, whose
	// forwarding headers are believed.
	TrustedProxies []string
}

type Server struct {
	http.Server
	deps    Deps
	logger  *log.Logger
	limiter *ratelimit.Limiter
}

func NewServer(addr string, deps Deps, opts Options) (*Server, error) {
	resolver, err := security.NewClientIPResolver(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		deps:    deps,
		logger:  log.OrDefault(deps.Logger).WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(resolver.ClientIP, s.rateLimited)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = log.Middleware(s.logger, resolver.ClientIP)(handler)
	handler = recoverer(s.logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/payment-methods", s.handleListPaymentMethods)
	mux.HandleFunc("POST /api/payment-methods", s.handleCreatePaymentMethod)
	mux.HandleFunc("PUT /api/payment-methods/{id}", s.handleUpdatePaymentMethod)
	mux.HandleFunc("DELETE /api/payment-methods/{id}", s.handleDeletePaymentMethod)

	mux.HandleFunc("GET /api/transactions", s.handleQueryTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /api/transactions/delete", s.handleDeleteTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("PUT /api/config", s.handleUpdateConfig)

	mux.HandleFunc("GET /api/reports", s.handleReport)

	mux.HandleFunc("GET /api/backup", s.handleExport)
	mux.HandleFunc("POST /api/backup", s.handleImport)
	mux.HandleFunc("POST /api/reset", s.handleReset)
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version, err := s.deps.Store.SchemaVersion()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "schemaVersion": version})
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded", Code: "rate_limited"})
}

func recoverer(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "Handler panic",
						"panic", rec, log.FieldPath, r.URL.Path, log.FieldRequestID, log.RequestID(r.Context()))
					writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
