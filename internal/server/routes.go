package server

import (
	"fmt"
	"strings"

	"travelwise/internal/middleware"
	"travelwise/internal/ratelimit"
	apperrors "travelwise/pkg/errors"
	"travelwise/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RouteGroup is a set of endpoints mounted as a unit under Prefix.
type RouteGroup struct {
	Module     string
	Prefix     string
	Mount      func(rg *gin.RouterGroup)
	Middleware []gin.HandlerFunc
}

// RouteMountError identifies a route group that could not be mounted.
type RouteMountError struct {
	Module string
	Reason string
}

func (e *RouteMountError) Error() string {
	return fmt.Sprintf("the module '%s' did not provide a valid route group: %s; check %s and restart the server",
		e.Module, e.Reason, e.Module)
}

func (e *RouteMountError) Unwrap() error {
	return apperrors.ErrInvalidRouteGroup
}

// MountRoutes checks and mounts each group in order, stopping at the first
// group that fails.
func (s *Server) MountRoutes(groups ...RouteGroup) error {
	for _, g := range groups {
		if err := s.checkGroup(g); err != nil {
			return err
		}
		if err := s.mountGroup(g); err != nil {
			return err
		}
		s.mounted = append(s.mounted, g)
		s.logger.Infof("Mounted %s routes at %s", g.Module, g.Prefix)
	}
	return nil
}

// Mounted lists the prefixes mounted so far, in order.
func (s *Server) Mounted() []string {
	out := make([]string, len(s.mounted))
	for i, g := range s.mounted {
		out[i] = g.Prefix
	}
	return out
}

func (s *Server) checkGroup(g RouteGroup) error {
	module := g.Module
	if module == "" {
		module = g.Prefix
	}
	if g.Mount == nil {
		return &RouteMountError{Module: module, Reason: "did not provide a route mount function"}
	}
	if !validPrefix(g.Prefix) {
		return &RouteMountError{Module: module, Reason: fmt.Sprintf("invalid path prefix %q", g.Prefix)}
	}
	for _, m := range s.mounted {
		if overlaps(m.Prefix, g.Prefix) {
			return &RouteMountError{Module: module, Reason: fmt.Sprintf("path prefix %s overlaps %s already mounted by '%s'", g.Prefix, m.Prefix, m.Module)}
		}
	}
	return nil
}

// mountGroup turns a panic raised by gin during registration (conflicting
// wildcards, duplicate handlers) into a RouteMountError.
func (s *Server) mountGroup(g RouteGroup) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RouteMountError{Module: g.Module, Reason: fmt.Sprintf("registering routes failed: %v", r)}
		}
	}()
	g.Mount(s.engine.Group(g.Prefix, g.Middleware...))
	return nil
}

func validPrefix(p string) bool {
	if len(p) < 2 || p[0] != '/' || strings.HasSuffix(p, "/") {
		return false
	}
	return !strings.ContainsAny(p, ":* ")
}

func overlaps(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

// DefaultRouteGroups returns the API route groups in mount order. A nil limiter
// leaves the auth routes unlimited.
func DefaultRouteGroups(h *Handlers, limiter ratelimit.Limiter, l *logger.Logger) []RouteGroup {
	var authMiddleware []gin.HandlerFunc
	if limiter != nil {
		authMiddleware = append(authMiddleware, middleware.RateLimitMiddleware(limiter, l))
	}

	groups := []RouteGroup{
		{Module: "auth", Prefix: "/api/auth", Middleware: authMiddleware},
		{Module: "itinerary", Prefix: "/api/itinerary"},
		{Module: "aiFeatures", Prefix: "/api/ai"},
	}
	if h.Auth != nil {
		groups[0].Mount = h.Auth.Routes
	}
	if h.Itinerary != nil {
		groups[1].Mount = h.Itinerary.Routes
	}
	if h.AIFeatures != nil {
		groups[2].Mount = h.AIFeatures.Routes
	}
	return groups
}
