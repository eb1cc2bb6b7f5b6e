// Package bootstrap orders startup: configuration check, database connection,
// route mounting, and only then the network listener.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"travelwise/config"
	"travelwise/internal/handler"
	"travelwise/internal/ratelimit"
	"travelwise/internal/redis"
	"travelwise/internal/server"
	apperrors "travelwise/pkg/errors"
	"travelwise/pkg/logger"
)

// Phase is a state of the startup sequence.
type Phase int32

const (
	PhaseInit Phase = iota
	PhaseConfigChecked
	PhaseConnecting
	PhaseListening
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseConfigChecked:
		return "config_checked"
	case PhaseConnecting:
		return "connecting"
	case PhaseListening:
		return "listening"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Database is the connection the sequencer holds for the life of the server.
type Database interface {
	Ping(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// Connector opens the database connection. It is called at most once.
type Connector interface {
	Connect(ctx context.Context, cfg *config.Config) (Database, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, cfg *config.Config) (Database, error)

func (f ConnectorFunc) Connect(ctx context.Context, cfg *config.Config) (Database, error) {
	return f(ctx, cfg)
}

// ListenFunc matches net.Listen.
type ListenFunc func(network, address string) (net.Listener, error)

type Sequencer struct {
	cfg       *config.Config
	logger    *logger.Logger
	connector Connector
	listen    ListenFunc
	groups    func(h *server.Handlers, limiter ratelimit.Limiter) []server.RouteGroup
	phase     atomic.Int32
	addr      atomic.Value
}

type Option func(*Sequencer)

// WithListen replaces net.Listen.
func WithListen(fn ListenFunc) Option {
	return func(s *Sequencer) { s.listen = fn }
}

// WithRouteGroups replaces the default route groups.
func WithRouteGroups(fn func(h *server.Handlers, limiter ratelimit.Limiter) []server.RouteGroup) Option {
	return func(s *Sequencer) { s.groups = fn }
}

func New(cfg *config.Config, l *logger.Logger, connector Connector, opts ...Option) *Sequencer {
	s := &Sequencer{
		cfg:       cfg,
		logger:    l,
		connector: connector,
		listen:    net.Listen,
	}
	s.groups = func(h *server.Handlers, limiter ratelimit.Limiter) []server.RouteGroup {
		return server.DefaultRouteGroups(h, limiter, s.logger)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current phase. Safe to call from other goroutines.
func (s *Sequencer) Phase() Phase {
	return Phase(s.phase.Load())
}

// Addr returns the bound listener address once the phase is PhaseListening.
func (s *Sequencer) Addr() string {
	if v, ok := s.addr.Load().(string); ok {
		return v
	}
	return ""
}

func (s *Sequencer) setPhase(p Phase) {
	s.phase.Store(int32(p))
}

// Run executes the startup sequence and then serves until ctx is cancelled.
// Every failure is returned as *apperrors.StartupError; none is retried.
func (s *Sequencer) Run(ctx context.Context) error {
	s.setPhase(PhaseInit)
	s.logger.Infof("Server script starting...")
	s.logger.Infof("Attempting to connect to MongoDB...")

	if err := s.cfg.Validate(); err != nil {
		s.logger.Errorf("FATAL ERROR: %v", err)
		return s.fail(apperrors.KindConfig, "", err)
	}
	s.setPhase(PhaseConfigChecked)

	s.setPhase(PhaseConnecting)
	db, err := s.connector.Connect(ctx, s.cfg)
	if err != nil {
		s.logConnectFailure(err)
		return s.fail(apperrors.KindDatabase, "", err)
	}
	s.logger.Infof("MongoDB connected successfully.")

	srv := server.New(s.cfg, s.logger)
	handlers := &server.Handlers{
		Root:       handler.NewRootHandler(db, s.logger),
		Auth:       handler.NewAuthHandler(s.logger),
		Itinerary:  handler.NewItineraryHandler(),
		AIFeatures: handler.NewAIFeaturesHandler(),
	}
	limiter, closeLimiter := s.authLimiter(ctx)
	if err := srv.SetupRoutes(handlers.Root, s.groups(handlers, limiter)...); err != nil {
		s.logger.Errorf("FATAL ERROR: %v", err)
		closeLimiter()
		s.disconnect(db)
		module := ""
		var mountErr *server.RouteMountError
		if errors.As(err, &mountErr) {
			module = mountErr.Module
		}
		return s.fail(apperrors.KindRouteMount, module, err)
	}

	ln, err := s.listen("tcp", s.cfg.Addr())
	if err != nil {
		s.logger.Errorf("FATAL ERROR: cannot listen on %s: %v", s.cfg.Addr(), err)
		closeLimiter()
		s.disconnect(db)
		return s.fail(apperrors.KindListen, "", err)
	}
	s.addr.Store(ln.Addr().String())
	s.logger.Infof("Server is running on port %s", s.cfg.AppPort)
	s.setPhase(PhaseListening)

	serveErr := srv.Serve(ctx, ln)
	closeLimiter()
	s.disconnect(db)
	return serveErr
}

func (s *Sequencer) fail(kind apperrors.Kind, module string, err error) error {
	s.setPhase(PhaseTerminated)
	return &apperrors.StartupError{Kind: kind, Module: module, Err: err}
}

func (s *Sequencer) logConnectFailure(err error) {
	s.logger.Errorf("MongoDB connection error: %v", err)
	s.logger.Infof("TROUBLESHOOTING TIPS:")
	s.logger.Infof("1. Double-check the password in your MONGO_URI.")
	s.logger.Infof("2. Ensure your current IP address is allowed under \"Network Access\" in MongoDB Atlas.")
	s.logger.Infof("3. Verify the username and database name in the connection string are correct.")
}

func (s *Sequencer) disconnect(db Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Disconnect(ctx); err != nil {
		s.logger.Warnf("MongoDB disconnect: %v", err)
	}
}

// authLimiter prefers Redis when REDIS_ADDR is set and reachable, and falls back
// to the in-process limiter otherwise. A limit of zero disables limiting. The
// returned func releases the Redis client and must be called once serving ends.
func (s *Sequencer) authLimiter(ctx context.Context) (ratelimit.Limiter, func()) {
	noop := func() {}
	if s.cfg.AuthRateLimit <= 0 {
		return nil, noop
	}
	if s.cfg.RedisAddr != "" {
		client := redis.NewClient(redis.Config{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPassword,
			DB:       s.cfg.RedisDB,
		})
		err := redis.Ping(ctx, client, 2*time.Second)
		if err == nil {
			s.logger.Infof("Auth rate limiting backed by Redis at %s", s.cfg.RedisAddr)
			closeClient := func() {
				if err := client.Close(); err != nil {
					s.logger.Warnf("Redis close: %v", err)
				}
			}
			return redis.NewRateLimiter(client, s.cfg.AuthRateLimit, s.cfg.AuthRateWindow), closeClient
		}
		s.logger.Warnf("%v; using in-process auth rate limiting", err)
		_ = client.Close()
	}
	return ratelimit.NewMemory(s.cfg.AuthRateLimit, s.cfg.AuthRateWindow), noop
}

// MongoConnector adapts a typed connect function, such as database.Connect, to
// Connector.
func MongoConnector[D Database](connect func(ctx context.Context, cfg *config.Config) (D, error)) Connector {
	return ConnectorFunc(func(ctx context.Context, cfg *config.Config) (Database, error) {
		db, err := connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		return db, nil
	})
}
