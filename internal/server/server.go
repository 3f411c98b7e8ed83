package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gmichels/selenium-grid-exporter/internal/errors"
	"github.com/gmichels/selenium-grid-exporter/internal/logger"
	"github.com/gmichels/selenium-grid-exporter/internal/metrics"
)

const (
	DefaultMetricsPath  = "/metrics"
	HealthPath          = "/healthz"
	ExporterMetricsPath = "/exporter/metrics"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Snapshotter renders the most recently published sample set.
type Snapshotter interface {
	WriteTo(w io.Writer) (int64, error)
}

type Options struct {
	Addr        string
	MetricsPath string
	Registry    Snapshotter
	// Exporter serves the exporter's own metrics. Optional.
	Exporter *metrics.ExporterMetrics
	Logger   logger.Logger
}

// Server exposes the published grid metrics over HTTP.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	log        logger.Logger
}

func New(opts Options) *Server {
	if opts.MetricsPath == "" {
		opts.MetricsPath = DefaultMetricsPath
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger))

	router.GET(opts.MetricsPath, metricsHandler(opts.Registry, opts.Logger))
	router.GET(HealthPath, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if opts.Exporter != nil && opts.MetricsPath != ExporterMetricsPath {
		router.GET(ExporterMetricsPath, gin.WrapH(opts.Exporter.Handler()))
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		router: router,
		log:    opts.Logger,
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully. A bind failure is returned immediately.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.New().Wrap(ErrListen, err)
	}

	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errFactory := errors.New()

	s.log.Info().Str("addr", listener.Addr().String()).Msg("Serving metrics")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errFactory.Wrap(ErrListen, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(ErrShutdown, err)
	}
	s.log.Info().Msg("Server stopped gracefully")

	return nil
}

func metricsHandler(registry Snapshotter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", metrics.ContentType)
		c.Status(http.StatusOK)
		if registry == nil {
			return
		}
		if _, err := registry.WriteTo(c.Writer); err != nil {
			log.Warn().Err(err).Msg("Failed to write metrics response")
		}
	}
}
