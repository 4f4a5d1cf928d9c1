package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"shekinah-backend/internal/auth"
	"shekinah-backend/internal/cart"
	"shekinah-backend/internal/checkout"
	"shekinah-backend/internal/store/catalog"
	"shekinah-backend/internal/store/orders"
)

// Deps carries the application components the router serves. They are built
// and owned by the entry point and injected here.
type Deps struct {
	Catalog  *catalog.Store
	Orders   *orders.Store
	Carts    *cart.Sessions
	Checkout *checkout.Flow
	Auth     *auth.Service
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	db         *pgxpool.Pool
}

// New builds a Server with all routes wired.
func New(addr string, logger *zap.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*Server, error) {
	router := buildRouter(logger, db, deps, corsOrigins)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
		db:         db,
	}, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
