package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shekinah-backend/internal/auth"
	"shekinah-backend/internal/cart"
	"shekinah-backend/internal/checkout"
	"shekinah-backend/internal/config"
	"shekinah-backend/internal/db"
	"shekinah-backend/internal/httpserver"
	"shekinah-backend/internal/logging"
	adminrepo "shekinah-backend/internal/repository/admin"
	orderrepo "shekinah-backend/internal/repository/order"
	productrepo "shekinah-backend/internal/repository/product"
	"shekinah-backend/internal/store/catalog"
	"shekinah-backend/internal/store/orders"
	"shekinah-backend/internal/watch"
)

func main() {
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	adminRepo := adminrepo.NewPostgres(dbpool)

	watcher := watch.NewPostgres(dbpool, logger)

	catalogStore := catalog.New(productRepo, watcher, logger)
	go catalogStore.Run(ctx)

	ordersStore := orders.New(orderRepo, watcher, logger)

	authSvc := auth.New(adminRepo, cfg.JWTSecret, cfg.SessionTTL, logger)
	authSvc.OnAdminPresence(func(active bool) {
		ordersStore.SetPrivileged(ctx, active)
	})

	sessions := cart.NewSessions()
	go sessions.PurgeLoop(ctx.Done(), 30*time.Minute)
	go sweepLoop(ctx, authSvc)

	flow := checkout.New(ordersStore, catalogStore, cfg.WhatsAppNumber, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:  catalogStore,
		Orders:   ordersStore,
		Carts:    sessions,
		Checkout: flow,
		Auth:     authSvc,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

// sweepLoop ages out expired admin sessions so the orders mirror tears down
// even when nobody calls logout.
func sweepLoop(ctx context.Context, svc *auth.Service) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.Sweep()
		}
	}
}
