package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/linkrouter/internal/config"
	"github.com/vyrodovalexey/linkrouter/internal/health"
	"github.com/vyrodovalexey/linkrouter/internal/middleware"
	"github.com/vyrodovalexey/linkrouter/internal/observability"
	"github.com/vyrodovalexey/linkrouter/internal/router"
	"github.com/vyrodovalexey/linkrouter/internal/util"
)

// HTTP server timeouts.
const (
	readTimeout       = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 120 * time.Second
	maxHeaderBytes    = 1 << 20
)

// Server serves the resolution API for one router.
type Server struct {
	router        *router.Router
	config        config.ServerConfig
	defaultDomain string
	logger        observability.Logger
	metrics       *observability.Metrics
	tracer        *observability.Tracer
	health        *health.Handler

	handler http.Handler
	limiter *middleware.RateLimiter

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	running  atomic.Bool
	done     chan struct{}
}

// Option is a functional option for configuring the server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector and registry served on /metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithTracer enables the per-request span middleware.
func WithTracer(tracer *observability.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithHealth sets the probe handler. The default one only checks that
// the route table is not empty.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithServerConfig sets the listen address and rate limit.
func WithServerConfig(cfg config.ServerConfig) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithDefaultDomain sets the domain used when a resolve request omits one.
func WithDefaultDomain(domain string) Option {
	return func(s *Server) {
		s.defaultDomain = domain
	}
}

// New creates a server for rt. The handler chain is built once.
func New(rt *router.Router, opts ...Option) *Server {
	s := &Server{
		router: rt,
		config: config.ServerConfig{Listen: config.DefaultListenAddress},
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = observability.NewMetrics("")
	}
	if s.health == nil {
		s.health = health.NewHandler(s.logger)
		s.health.AddCheck(health.NewRouteTableCheck("routes", rt))
	}

	s.handler = s.buildHandler()
	return s
}

func (s *Server) buildHandler() http.Handler {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(s.requestMetrics())
	s.registerRoutes(engine)

	rateLimit, limiter := middleware.RateLimitFromConfig(s.config.RateLimit, s.logger,
		middleware.WithRejectHook(s.metrics.RecordRateLimitHit))
	s.limiter = limiter

	mws := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
	}
	if s.tracer != nil {
		mws = append(mws, middleware.Tracing(s.tracer))
	}
	mws = append(mws, middleware.Logging(s.logger), rateLimit)

	return middleware.Chain(engine, mws...)
}

func (s *Server) registerRoutes(engine *gin.Engine) {
	v1 := engine.Group("/v1")
	v1.GET("/resolve", s.handleResolve)
	v1.GET("/context-id", s.handleContextID)
	v1.GET("/screens/match", s.handleMatchScreens)
	v1.GET("/routes", s.handleRoutes)

	s.health.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	engine.NoRoute(func(c *gin.Context) {
		s.writeError(c, util.NewRouteNotFoundError(c.Request.URL.Path))
	})
}

// requestMetrics records one request sample keyed by the registered
// route pattern.
func (s *Server) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		s.metrics.RecordRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return errors.New("server is already running")
	}

	addr := s.config.Listen
	if addr == "" {
		addr = config.DefaultListenAddress
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return util.WrapErrorf(err, "failed to listen on %s", addr)
	}

	s.server = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}
	s.listener = ln
	s.done = make(chan struct{})
	s.running.Store(true)

	s.logger.Info("server started", observability.String("address", ln.Addr().String()))

	go s.serve(s.server, ln, s.done)

	return nil
}

func (s *Server) serve(srv *http.Server, ln net.Listener, done chan<- struct{}) {
	defer close(done)

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("server error", observability.Error(err))
	}
	s.running.Store(false)
}

// Addr returns the bound address while the server is running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// Shutdown stops accepting connections and waits for in-flight
// requests until ctx expires, then closes what is left.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.server, s.done
	s.mu.Unlock()

	if s.limiter != nil {
		s.limiter.Stop()
	}
	if srv == nil || !s.running.Load() {
		return nil
	}

	s.logger.Info("stopping server")

	if err := srv.Shutdown(ctx); err != nil {
		if closeErr := srv.Close(); closeErr != nil {
			return fmt.Errorf("failed to close server: %w", closeErr)
		}
		return util.WrapError(err, "failed to shutdown server gracefully")
	}
	<-done

	s.logger.Info("server stopped")
	return nil
}
