// Package app wires configuration, logging, storage, the user service and
// its HTTP and gRPC transports together, and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/userapp/internal/config"
	"github.com/patric-chuzhbe/userapp/internal/db/jsondb"
	"github.com/patric-chuzhbe/userapp/internal/db/memorystorage"
	"github.com/patric-chuzhbe/userapp/internal/db/postgresdb"
	"github.com/patric-chuzhbe/userapp/internal/db/sqlitedb"
	"github.com/patric-chuzhbe/userapp/internal/db/storage"
	"github.com/patric-chuzhbe/userapp/internal/grpcserver"
	"github.com/patric-chuzhbe/userapp/internal/logger"
	"github.com/patric-chuzhbe/userapp/internal/models"
	"github.com/patric-chuzhbe/userapp/internal/router"
	"github.com/patric-chuzhbe/userapp/internal/service"
)

// App encapsulates the configuration, the transports and the storage backend
// needed to run the user service.
type App struct {
	cfg          *config.Config
	db           storage.Storage
	httpHandler  http.Handler
	grpcServer   *grpc.Server
	grpcListener net.Listener
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - setting up the router and the optional gRPC server
func New() (*App, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}

	return newWithConfig(context.Background(), cfg)
}

func newWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	var err error
	app := &App{cfg: cfg}

	app.db, err = getStorageByType(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := service.New(app.db)

	app.httpHandler = router.New(svc, router.WithGzip(cfg.EnableGzip))

	if cfg.GRPCAddr != "" {
		app.grpcServer, app.grpcListener, err = grpcserver.NewGRPCServer(
			cfg.GRPCAddr,
			grpcserver.NewUserHandler(svc),
		)
		if err != nil {
			_ = app.db.Close()
			return nil, fmt.Errorf("in internal/app/app.go/newWithConfig(): error while `grpcserver.NewGRPCServer()` calling: %w", err)
		}
	}

	return app, nil
}

// Run starts the servers and blocks until a shutdown signal or a server error.
// On a signal the servers are drained within the configured timeout and the
// storage is closed.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.serve(ctx)
}

func (a *App) serve(ctx context.Context) error {
	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr, "GRPCAddr", a.cfg.GRPCAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	if a.grpcServer != nil {
		go func() {
			if err := a.grpcServer.Serve(a.grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serverErrCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if a.grpcServer != nil {
			stopGRPC(shutdownCtx, a.grpcServer)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = a.db.Close()
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		if a.grpcServer != nil {
			a.grpcServer.Stop()
		}
		_ = server.Close()
		_ = a.db.Close()
		return fmt.Errorf("server error: %w", err)
	}
}

type grpcStopper interface {
	GracefulStop()
	Stop()
}

// stopGRPC drains in-flight RPCs and forces the server down once ctx expires.
func stopGRPC(ctx context.Context, server grpcStopper) {
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		logger.Log.Warnln("gRPC graceful stop timed out, forcing stop")
		server.Stop()
		<-stopped
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.SQLitePath != "" {
		return models.StorageTypeSQLite
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			ctx,
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeSQLite:
		return sqlitedb.New(ctx, cfg.SQLitePath)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
