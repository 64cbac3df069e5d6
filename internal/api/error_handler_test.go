package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/parceltrack/tracking-system/internal/core/domain"
)

func invokeErrorHandler(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/track/dhl/123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestErrorHandlerStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown carrier", fmt.Errorf("%w: %q", domain.ErrProviderNotFound, "pigeon"), http.StatusNotFound},
		{"missing credential", &domain.ConfigError{Var: "DHL_API_KEY"}, http.StatusServiceUnavailable},
		{"rejected credential", &domain.AuthError{Carrier: "dhl", StatusCode: 401}, http.StatusBadGateway},
		{"network failure", &domain.TransportError{Carrier: "dpd", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"malformed payload", &domain.ParseError{Carrier: "gls", Err: errors.New("bad json")}, http.StatusBadGateway},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "bad input"), http.StatusBadRequest},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := invokeErrorHandler(t, tc.err)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("body %q missing error envelope", rec.Body.String())
			}
		})
	}
}

func TestErrorHandlerHidesInternalDetails(t *testing.T) {
	rec := invokeErrorHandler(t, errors.New("credential dump: hunter2"))
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Error("internal error details leaked to the client")
	}
}
