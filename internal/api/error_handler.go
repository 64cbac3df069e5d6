package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/parceltrack/tracking-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors map onto deterministic HTTP codes. Provider
	// credentials and upstream failures are the gateway's fault class
	// (5xx), never the caller's.
	var (
		configErr    *domain.ConfigError
		authErr      *domain.AuthError
		transportErr *domain.TransportError
		parseErr     *domain.ParseError
	)
	switch {
	case errors.Is(err, domain.ErrProviderNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable, configErr.Error()
	case errors.As(err, &authErr):
		return http.StatusBadGateway, authErr.Error()
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, transportErr.Error()
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, parseErr.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
