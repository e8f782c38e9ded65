package http

// this is entry point of the admin API request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/camfleet.net/internal/config"
	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/core/services/dispatch"
	"gitlab.com/camfleet.net/internal/core/services/registry"
	"gitlab.com/camfleet.net/internal/handlers"
	"gitlab.com/camfleet.net/internal/handlers/commands"
	"gitlab.com/camfleet.net/internal/handlers/nodes"
)

type ServiceProvider struct {
	registry   registry.INodeRegistryService
	dispatcher dispatch.ICommandDispatchService
	auditLog   secondary.DispatchLogRepository
}

func NewServiceProvider(
	reg registry.INodeRegistryService,
	dispatcher dispatch.ICommandDispatchService,
	auditLog secondary.DispatchLogRepository,
) *ServiceProvider {
	return &ServiceProvider{
		registry:   reg,
		dispatcher: dispatcher,
		auditLog:   auditLog,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceProvider ServiceProvider
	jwtConfig       *config.JwtConfig
	logger          primary.Logger
}

func NewServer(port int, serviceProvider ServiceProvider, jwtConfig *config.JwtConfig, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceProvider: serviceProvider,
		jwtConfig:       jwtConfig,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	nodes.NewHandler(s.ServiceProvider.registry).Register(r)
	commands.NewHandler(s.ServiceProvider.dispatcher, s.ServiceProvider.auditLog, s.logger).Register(r)

	middleware := handlers.NewMiddlewareProvider(s.jwtConfig)
	r.Use(middleware.JWTMiddleware)

	s.router = r
	return nil
}

func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Admin API listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Admin API error", "error", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down admin API...")
	if s.srv != nil {
		if err := s.srv.Shutdown(ctx); err != nil {
			s.logger.Error("Admin API forced to shutdown", "error", err)
		}
	}
}
