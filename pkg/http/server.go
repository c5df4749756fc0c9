// Package http hosts the Echo server, response envelope and request
// validation helpers for the public API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"MarketRadar/pkg/http/middleware"
	"MarketRadar/pkg/logger"
)

type ServerOption func(*Server)

func WithPort(port int) ServerOption {
	return func(s *Server) { s.port = port }
}

func WithTimeouts(read, write time.Duration) ServerOption {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

func WithMetricsEndpoint(path string) ServerOption {
	return func(s *Server) { s.metricsPath = path }
}

func WithMiddleware(mw ...echo.MiddlewareFunc) ServerOption {
	return func(s *Server) { s.extraMW = append(s.extraMW, mw...) }
}

// Server wraps echo with the middleware chain and lifecycle used by
// the app.
type Server struct {
	echo *echo.Echo
	log  *logger.Logger

	port         int
	readTimeout  time.Duration
	writeTimeout time.Duration
	metricsPath  string
	extraMW      []echo.MiddlewareFunc
}

func NewServer(log *logger.Logger, opts ...ServerOption) *Server {
	s := &Server{
		echo:         echo.New(),
		log:          log,
		port:         8080,
		readTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = JSONError(c, err)
	}

	s.echo.Use(middleware.Recovery(log))
	s.echo.Use(middleware.RequestLogging(log))
	s.echo.Use(middleware.CORS())
	for _, mw := range s.extraMW {
		s.echo.Use(mw)
	}

	if s.metricsPath != "" {
		s.echo.GET(s.metricsPath, echo.WrapHandler(promhttp.Handler()))
	}

	return s
}

// Echo exposes the router for route registration.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start blocks serving HTTP until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.echo.Server.ReadTimeout = s.readTimeout
	s.echo.Server.WriteTimeout = s.writeTimeout

	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("http server listening", logger.String("addr", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
