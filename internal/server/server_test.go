package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"travelwise/config"
	"travelwise/internal/handler"
	"travelwise/internal/ratelimit"
	apperrors "travelwise/pkg/errors"
	"travelwise/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		AppPort:         "0",
		AppMode:         TestMode,
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: time.Second,
	}
}

func testHandlers(l *logger.Logger) *Handlers {
	return &Handlers{
		Root:       handler.NewRootHandler(okPinger{}, l),
		Auth:       handler.NewAuthHandler(l),
		Itinerary:  handler.NewItineraryHandler(),
		AIFeatures: handler.NewAIFeaturesHandler(),
	}
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *Server {
	t.Helper()
	l := logger.NewNop()
	s := New(testConfig(), l)
	h := testHandlers(l)
	require.NoError(t, s.SetupRoutes(h.Root, DefaultRouteGroups(h, limiter, l)...))
	return s
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestDefaultRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, []string{"/api/auth", "/api/itinerary", "/api/ai"}, s.Mounted())

	w := do(s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to the TravelWise API!", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = do(s, http.MethodPost, "/api/auth/register", `{"name":"A","email":"a@b.com","password":"x"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"msg":"User registration placeholder"}`, w.Body.String())

	w = do(s, http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"sample_jwt_token"}`, w.Body.String())

	w = do(s, http.MethodGet, "/api/itinerary/123", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = do(s, http.MethodPost, "/api/ai/recommendations", `{}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	s := newTestServer(t, ratelimit.NewMemory(1, time.Minute))

	w := do(s, http.MethodPost, "/api/auth/login", `{}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = do(s, http.MethodPost, "/api/auth/login", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Other groups are not limited.
	for i := 0; i < 3; i++ {
		w = do(s, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestMountRoutesGuard(t *testing.T) {
	noop := func(*gin.RouterGroup) {}

	cases := []struct {
		name       string
		groups     []RouteGroup
		wantModule string
		wantReason string
	}{
		{
			name:       "missing mount function",
			groups:     []RouteGroup{{Module: "itinerary", Prefix: "/api/itinerary"}},
			wantModule: "itinerary",
			wantReason: "did not provide a route mount function",
		},
		{
			name:       "relative prefix",
			groups:     []RouteGroup{{Module: "auth", Prefix: "api/auth", Mount: noop}},
			wantModule: "auth",
			wantReason: "invalid path prefix",
		},
		{
			name:       "wildcard prefix",
			groups:     []RouteGroup{{Module: "auth", Prefix: "/api/:id", Mount: noop}},
			wantModule: "auth",
			wantReason: "invalid path prefix",
		},
		{
			name: "duplicate prefix",
			groups: []RouteGroup{
				{Module: "auth", Prefix: "/api/auth", Mount: noop},
				{Module: "auth2", Prefix: "/api/auth", Mount: noop},
			},
			wantModule: "auth2",
			wantReason: "overlaps /api/auth already mounted by 'auth'",
		},
		{
			name: "nested prefix",
			groups: []RouteGroup{
				{Module: "ai", Prefix: "/api/ai", Mount: noop},
				{Module: "aiChat", Prefix: "/api/ai/chat", Mount: noop},
			},
			wantModule: "aiChat",
			wantReason: "overlaps",
		},
		{
			name: "registration panics",
			groups: []RouteGroup{{Module: "broken", Prefix: "/api/broken", Mount: func(rg *gin.RouterGroup) {
				h := func(c *gin.Context) {}
				rg.GET("/x", h)
				rg.GET("/x", h)
			}}},
			wantModule: "broken",
			wantReason: "registering routes failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(testConfig(), logger.NewNop())
			err := s.MountRoutes(tc.groups...)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidRouteGroup)

			var mountErr *RouteMountError
			require.ErrorAs(t, err, &mountErr)
			assert.Equal(t, tc.wantModule, mountErr.Module)
			assert.Contains(t, mountErr.Reason, tc.wantReason)
			assert.Contains(t, err.Error(), "the module '"+tc.wantModule+"'")
		})
	}
}

func TestMountRoutesStopsAtFirstFailure(t *testing.T) {
	s := New(testConfig(), logger.NewNop())
	called := false
	err := s.MountRoutes(
		RouteGroup{Module: "first", Prefix: "/api/first", Mount: func(*gin.RouterGroup) {}},
		RouteGroup{Module: "bad", Prefix: "/api/bad"},
		RouteGroup{Module: "never", Prefix: "/api/never", Mount: func(*gin.RouterGroup) { called = true }},
	)
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, []string{"/api/first"}, s.Mounted())
}

func TestDefaultRouteGroupsWithMissingHandler(t *testing.T) {
	l := logger.NewNop()
	h := testHandlers(l)
	h.AIFeatures = nil

	s := New(testConfig(), l)
	err := s.SetupRoutes(h.Root, DefaultRouteGroups(h, nil, l)...)

	var mountErr *RouteMountError
	require.ErrorAs(t, err, &mountErr)
	assert.Equal(t, "aiFeatures", mountErr.Module)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "Welcome to the TravelWise API!", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeReturnsListenerError(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	err = s.Serve(context.Background(), ln)
	require.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
}
