package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/camfleet.net/internal/adapter/postgres/dispatchlog"
	"gitlab.com/camfleet.net/internal/config"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/core/services/dispatch"
	"gitlab.com/camfleet.net/internal/core/services/registry"
	logger2 "gitlab.com/camfleet.net/internal/global/logger"
	http2 "gitlab.com/camfleet.net/internal/http"
	"gitlab.com/camfleet.net/internal/tcp"
)

// Usage: controller [discovery_port]
func main() {
	_ = godotenv.Load()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger := logger2.Logger
	logger.Info("Starting fleet controller")

	sysCfg := config.NewControllerConfig()
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil {
			logger.Warn("Invalid port argument, using default", "arg", os.Args[1], "default", sysCfg.DiscoveryPort)
		} else {
			sysCfg.DiscoveryPort = port
		}
	}

	ctxBg := context.Background()

	// Optional dispatch audit log
	var auditLog secondary.DispatchLogRepository
	if sysCfg.PostgresConfig.Url != "" {
		db, err := setupDatabase(sysCfg.PostgresConfig.Url)
		if err != nil {
			logger.Error("Failed to set up audit database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		repo := dispatchlog.NewDispatchLogRepository(db, logger)
		if err := repo.EnsureSchema(ctxBg); err != nil {
			logger.Error("Failed to prepare audit schema", "error", err)
			os.Exit(1)
		}
		auditLog = repo
	}

	// services
	registrySvc := registry.NewNodeRegistryService(logger)

	dispatchOptions := []dispatch.DispatchOption{
		dispatch.WithTimeouts(sysCfg.DialTimeout, sysCfg.IOTimeout),
		dispatch.WithMaxConcurrent(sysCfg.MaxConcurrentDispatch),
	}
	if auditLog != nil {
		dispatchOptions = append(dispatchOptions, dispatch.WithAuditLog(auditLog))
	}
	dispatcher := dispatch.NewCommandDispatchService(registrySvc, logger, dispatchOptions...)

	// servers
	discoveryServer := tcp.NewDiscoveryServer(registrySvc, logger,
		tcp.WithAddress(fmt.Sprintf(":%d", sysCfg.DiscoveryPort)),
		tcp.WithIOTimeout(sysCfg.IOTimeout),
	)
	if err := discoveryServer.Start(); err != nil {
		logger.Error("Failed to start discovery server", "error", err)
		os.Exit(1)
	}

	serviceProvider := http2.NewServiceProvider(registrySvc, dispatcher, auditLog)
	httpServer := http2.NewServer(sysCfg.HTTPPort, *serviceProvider, sysCfg.JwtConfig, logger)
	if err := httpServer.Init(); err != nil {
		logger.Error("Failed to init admin API", "error", err)
		os.Exit(1)
	}
	httpServer.Start(ctxBg)

	<-quit
	logger.Info("Shutting down controller...")

	ctx, cancel := context.WithTimeout(ctxBg, 5*time.Second)
	defer cancel()
	_ = discoveryServer.Stop(ctx)
	httpServer.Stop(ctx)

	logger.Info("Controller shutdown complete")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(connStr string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
