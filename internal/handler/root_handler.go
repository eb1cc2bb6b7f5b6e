package handler

import (
	"context"
	"net/http"
	"time"

	"travelwise/internal/transport/httpdto"
	"travelwise/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const WelcomeMessage = "Welcome to the TravelWise API!"

// Pinger is satisfied by *database.Mongo.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RootHandler serves the welcome page, /ping and /health.
type RootHandler struct {
	db      Pinger
	logger  *logger.Logger
	timeout time.Duration
}

func NewRootHandler(db Pinger, l *logger.Logger) *RootHandler {
	return &RootHandler{db: db, logger: l, timeout: 2 * time.Second}
}

func (h *RootHandler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, WelcomeMessage)
}

func (h *RootHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PingResponse{Message: "pong"}))
}

// Health reports whether the database still answers. Driver errors are logged,
// never returned to the caller.
func (h *RootHandler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("database unavailable", httpdto.CodeUnhealthy))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.WithContext(c.Request.Context()).Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("database unavailable", httpdto.CodeUnhealthy))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.HealthResponse{Status: "healthy"}))
}
