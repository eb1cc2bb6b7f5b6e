package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"travelwise/config"
	"travelwise/internal/handler"
	"travelwise/internal/middleware"
	"travelwise/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	mounted    []RouteGroup
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Root       *handler.RootHandler
	Auth       *handler.AuthHandler
	Itinerary  *handler.StubHandler
	AIFeatures *handler.StubHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	engine.Use(middleware.LoggingMiddleware(l))
	engine.Use(middleware.ErrorHandler(l))

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetupRoutes registers the root endpoints and then mounts each route group
// through the registration guard.
func (s *Server) SetupRoutes(root *handler.RootHandler, groups ...RouteGroup) error {
	s.engine.GET("/", root.Welcome)
	s.engine.GET("/ping", root.Ping)
	s.engine.GET("/health", root.Health)

	return s.MountRoutes(groups...)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.logger.Errorf("Error in serving HTTP: %s", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s.logger.Infof("Quitting signal received.. Shutting down within %s", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("Error in the graceful shutdown of the server: %s", err)
		return err
	}

	s.logger.Infof("Server stopped gracefully")
	return nil
}
