// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/search"
)

// Server is the concurrent HTTP front end of the search service.
type Server struct {
	svc    *search.Service
	logger *slog.Logger
	echo   *echo.Echo
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates the HTTP server over the given search service.
func New(svc *search.Service, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, errors.New("server: search service is required")
	}

	s := &Server{
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = s.errorHandler

	e.POST("/search", s.handleSearch)
	e.GET("/health", s.handleHealth)
	e.GET("/schema", s.handleSchema)

	s.echo = e
	return s, nil
}

// Handler returns the underlying http.Handler, shared with SerialServer
// and the tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleSearch(c echo.Context) error {
	var req search.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := s.svc.Search(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Status())
}

func (s *Server) handleSchema(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Schema())
}

// statusFor maps service errors to HTTP status codes: invalid requests are
// the caller's fault, an unready index is a temporary condition, anything
// else is internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotReady), errors.Is(err, core.ErrCorpusMissing):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders every error as {"error": message} and logs it.
func (s *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}

	req := c.Request()
	s.logger.Error("request failed", "status", code, "method", req.Method, "path", req.URL.Path, "err", err)

	if !c.Response().Committed {
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}
