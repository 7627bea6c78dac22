// Package api exposes business searches over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"business-finder/internal/common/config"
	"business-finder/internal/common/logger"
	"business-finder/internal/finder"
	"business-finder/internal/models"
	exportcsv "business-finder/internal/workers/business-search/export-csv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Finder is the search surface the API serves.
type Finder interface {
	Search(ctx context.Context, req finder.Request) (*models.ResultSet, error)
	Results(ctx context.Context, sessionID string, filters models.Filters) (*models.ResultSet, []models.Business, error)
	Export(ctx context.Context, sessionID string, filters models.Filters, locale exportcsv.Locale) (*exportcsv.Output, error)
	Ready() error
}

type Options struct {
	Config *config.ServerConfig
	Finder Finder
	Logger logger.Logger
}

type Server struct {
	echo   *echo.Echo
	http   *http.Server
	finder Finder
	logger logger.Logger
}

func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	cfg := config.ServerConfig{Address: ":8080"}
	if opts.Config != nil {
		cfg = *opts.Config
	}

	s := &Server{
		echo:   echo.New(),
		finder: opts.Finder,
		logger: log,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
			}
			log.Debug("request completed", fields)
			return nil
		},
	}))

	s.routes()

	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.echo,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 60*time.Second),
	}
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)
	s.echo.GET("/ready", s.ready)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := s.echo.Group("/api/searches")
	g.POST("", s.createSearch)
	g.GET("/:sessionId", s.getSearch)
	g.GET("/:sessionId/export", s.exportSearch)
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// ListenAndServe blocks until the server stops. A graceful Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func durationOr(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return config.GetDuration(ms)
}
