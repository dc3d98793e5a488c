package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/kwararru/shell/internal/api/http"
	"github.com/kwararru/shell/internal/api/middleware"
	"github.com/kwararru/shell/internal/api/ws"
	"github.com/kwararru/shell/internal/domain/catalog"
	"github.com/kwararru/shell/internal/host"
	"github.com/kwararru/shell/internal/infrastructure/config"
	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	"github.com/kwararru/shell/internal/infrastructure/tracing"
	"github.com/kwararru/shell/internal/store"
)

const (
	// reviewIdle is how long an untouched review session is kept
	reviewIdle      = 30 * time.Minute
	pruneInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	host    *host.Host
	store   *store.Guarded
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer

	stop context.CancelFunc
	wg   sync.WaitGroup
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing shell server",
		zap.String("port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("catalog_dir", cfg.Catalog.Dir),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("shell", logger)

	st, err := store.Open(cfg.Store, metrics, logger)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	opts := host.Options{
		ManifestDir: cfg.Catalog.Dir,
		Store:       st,
		Metrics:     metrics,
		Logger:      logger,
	}
	if !cfg.Catalog.Builtins {
		opts.Catalog = catalog.New(logger)
	}
	h, err := host.New(opts)
	if err != nil {
		st.Close()
		tracer.Close()
		return nil, fmt.Errorf("failed to build host: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(middleware.RequestLogger(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.CORS.AllowOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limit))
	}

	apihttp.NewHandlers(h, metrics, logger).Register(router)
	router.GET("/apps/:id/stream", ws.NewHandler(h, metrics, logger).HandleConnection)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	s := &Server{
		router:  router,
		httpSrv: &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		host:    h,
		store:   st,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		tracer:  tracer,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	s.wg.Add(1)
	go s.pruneReviews(ctx)

	logger.Info("Server initialized successfully",
		zap.Int("manifests", h.Catalog.Len()))
	return s, nil
}

// Router exposes the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Host exposes the app kernel
func (s *Server) Host() *host.Host {
	return s.host
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pruneReviews drops finished and idle review sessions until ctx ends
func (s *Server) pruneReviews(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.host.Reviews.Prune(reviewIdle); n > 0 {
				s.logger.Debug("pruned review sessions", zap.Int("count", n))
			}
		}
	}
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}

	s.stop()
	s.wg.Wait()

	if err := s.host.Close(); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}

	s.tracer.Close()
	_ = s.logger.Sync()
	return errors.Join(errs...)
}
