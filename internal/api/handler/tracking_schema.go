package handler

import "github.com/parceltrack/tracking-system/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// trackQuery carries the optional query parameters of tracking lookups.
type trackQuery struct {
	Language string `query:"language" validate:"omitempty,min=2,max=5"`
}

// Response types owned by the transport layer. The domain response is
// embedded unchanged: its JSON contract (snake_case fields, RFC 3339
// UTC timestamps, never-null shipments array) is the product here, so
// the gateway must not re-shape it.

type trackResponse struct {
	*domain.TrackingResponse
	TrackingURL string `json:"tracking_url,omitempty"`
}

type trackAllResponse struct {
	TrackingNumber string                     `json:"tracking_number"`
	Results        []*domain.TrackingResponse `json:"results"`
}

type carriersResponse struct {
	Carriers []string `json:"carriers"`
}
