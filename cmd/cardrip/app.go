package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cardrip/cardrip/internal/db"
	"github.com/cardrip/cardrip/internal/handlers"
	"github.com/cardrip/cardrip/internal/logger"
	"github.com/cardrip/cardrip/internal/repository/postgres"
	"github.com/cardrip/cardrip/internal/service/batchstage"
	"github.com/cardrip/cardrip/internal/service/fulfillment"
	"github.com/cardrip/cardrip/internal/service/operator"
	"github.com/cardrip/cardrip/internal/service/wallet"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	operatorService, err := operator.NewService(operator.Config{SecretKey: c.SecretKey}, operator.DefaultHasher, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating operator service. Err: %w", err)
	}
	batchService := batchstage.NewService(storage)
	fulfillmentService := fulfillment.NewService(storage)
	walletService := wallet.NewService(storage)

	mux := handlers.NewRouter(
		operatorService,
		batchService,
		fulfillmentService,
		walletService,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
