package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/parceltrack/tracking-system/docs"
	"github.com/parceltrack/tracking-system/internal/api/handler"
	"github.com/parceltrack/tracking-system/internal/api/middleware"
	"github.com/parceltrack/tracking-system/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// When jwtSecret is non-empty the tracking routes require a Bearer JWT;
// otherwise they are public.
func NewRouter(service ports.TrackerService, registry ports.ProviderRegistry, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("parceltrack"))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Tracking routes ---
	trackingHandler := handler.NewTrackingHandler(service, registry)

	v1 := e.Group("/v1")
	if jwtSecret != "" {
		v1.Use(middleware.Auth(jwtSecret))
	}
	v1.GET("/carriers", trackingHandler.Carriers)
	v1.GET("/track/:code", trackingHandler.TrackAll)
	v1.GET("/track/:carrier/:code", trackingHandler.Track)

	return e
}
