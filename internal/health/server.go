package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Defaults
const (
	DefaultAddr     = "0.0.0.0:8080"
	ServiceName     = "music bot"
	StatusAlive     = "alive"
	ShutdownTimeout = 5 * time.Second
)

// Status is the liveness response body
type Status struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Server is the health HTTP server
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

// New builds a server on addr. metrics is mounted at /metrics when not nil.
func New(addr string, metrics http.Handler, logger *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURIPath: true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("http request",
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency)
			return nil
		},
	}))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error("http error", "path", c.Request().URL.Path, "status", code, "error", err)
		}
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"error": msg})
		}
	}

	alive := func(c echo.Context) error {
		return c.JSON(http.StatusOK, Status{Status: StatusAlive, Service: ServiceName})
	}
	e.GET("/", alive)
	e.HEAD("/", alive)
	e.GET("/healthz", alive)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	return &Server{echo: e, addr: addr, logger: logger}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}

// Run listens until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("health server listening", "addr", s.addr)
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("health server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown health server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
