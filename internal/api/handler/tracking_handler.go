package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parceltrack/tracking-system/internal/api/metrics"
	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/core/ports"
)

// TrackingHandler handles HTTP requests for tracking lookups.
type TrackingHandler struct {
	service  ports.TrackerService
	registry ports.ProviderRegistry
}

func NewTrackingHandler(service ports.TrackerService, registry ports.ProviderRegistry) *TrackingHandler {
	return &TrackingHandler{service: service, registry: registry}
}

// Track handles GET /v1/track/:carrier/:code.
//
// @Summary      Track a shipment with a specific carrier
// @Tags         tracking
// @Produce      json
// @Param        carrier   path      string  true   "Carrier identifier (e.g. dhl)"
// @Param        code      path      string  true   "Tracking number"
// @Param        language  query     string  false  "Preferred language (e.g. en, es_ES)"
// @Success      200       {object}  trackResponse
// @Failure      404       {object}  errorResponse
// @Failure      502       {object}  errorResponse
// @Failure      503       {object}  errorResponse
// @Router       /v1/track/{carrier}/{code} [get]
func (h *TrackingHandler) Track(c echo.Context) error {
	carrier := c.Param("carrier")
	code := c.Param("code")

	var q trackQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	resp, err := h.service.Track(c.Request().Context(), carrier, code, q.Language)
	if err != nil {
		metrics.TrackingRequestsTotal.WithLabelValues(carrier, outcomeFor(err)).Inc()
		return err
	}
	metrics.TrackingRequestDuration.WithLabelValues(resp.Provider).Observe(time.Since(start).Seconds())
	metrics.TrackingRequestsTotal.WithLabelValues(resp.Provider, outcomeForResponse(resp)).Inc()

	return c.JSON(http.StatusOK, trackResponse{
		TrackingResponse: resp,
		TrackingURL:      h.trackingURL(resp.Provider, code, q.Language),
	})
}

// TrackAll handles GET /v1/track/:code — fan-out across all carriers.
//
// @Summary      Track a shipment across all carriers
// @Tags         tracking
// @Produce      json
// @Param        code      path      string  true   "Tracking number"
// @Param        language  query     string  false  "Preferred language (e.g. en, es_ES)"
// @Success      200       {object}  trackAllResponse
// @Failure      400       {object}  errorResponse
// @Router       /v1/track/{code} [get]
func (h *TrackingHandler) TrackAll(c echo.Context) error {
	code := c.Param("code")

	var q trackQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	results, err := h.service.TrackAll(c.Request().Context(), code, q.Language)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.HasShipments() {
			metrics.FanoutCarriersTotal.WithLabelValues("hit").Inc()
		} else {
			metrics.FanoutCarriersTotal.WithLabelValues("miss").Inc()
		}
	}
	skipped := len(h.service.Carriers()) - len(results)
	for i := 0; i < skipped; i++ {
		metrics.FanoutCarriersTotal.WithLabelValues("skipped").Inc()
	}

	return c.JSON(http.StatusOK, trackAllResponse{
		TrackingNumber: code,
		Results:        results,
	})
}

// Carriers handles GET /v1/carriers.
//
// @Summary      List supported carriers
// @Tags         tracking
// @Produce      json
// @Success      200  {object}  carriersResponse
// @Router       /v1/carriers [get]
func (h *TrackingHandler) Carriers(c echo.Context) error {
	return c.JSON(http.StatusOK, carriersResponse{Carriers: h.service.Carriers()})
}

func (h *TrackingHandler) trackingURL(carrier, code, language string) string {
	p, err := h.registry.Resolve(carrier)
	if err != nil {
		return ""
	}
	return p.TrackingURL(code, language)
}

// outcomeFor classifies a tracking error for the requests counter.
func outcomeFor(err error) string {
	var (
		configErr    *domain.ConfigError
		authErr      *domain.AuthError
		transportErr *domain.TransportError
		parseErr     *domain.ParseError
	)
	switch {
	case errors.As(err, &configErr):
		return "config_error"
	case errors.As(err, &authErr):
		return "auth_error"
	case errors.As(err, &transportErr):
		return "transport_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	default:
		return "error"
	}
}

func outcomeForResponse(resp *domain.TrackingResponse) string {
	if resp.HasShipments() {
		return "ok"
	}
	return "not_found"
}
