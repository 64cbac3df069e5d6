package ports

import (
	"context"

	"github.com/parceltrack/tracking-system/internal/core/domain"
)

// Provider is the adapter contract every carrier integration satisfies.
// Implementations are stateless: Track is a pure function of the code,
// the language and the injected HTTP client, with exactly one outbound
// call per invocation (no internal retries).
type Provider interface {
	// Carrier returns the lower-case registry key (e.g. "dhl").
	Carrier() string
	// Track fetches and normalizes tracking details for one code.
	// "Shipment not found" is a successful response with empty
	// Shipments, not an error.
	Track(ctx context.Context, code, language string) (*domain.TrackingResponse, error)
	// TrackingURL returns a human-facing tracking link, or "" when the
	// carrier has no stable public URL.
	TrackingURL(code, language string) string
}

// ProviderRegistry resolves a carrier identifier to its adapter. It is
// the single extension point for adding carriers.
type ProviderRegistry interface {
	// Resolve returns the adapter for carrier, or an error wrapping
	// domain.ErrProviderNotFound.
	Resolve(carrier string) (Provider, error)
	// Names lists the registered carrier identifiers, sorted.
	Names() []string
}

// TrackerService is the public entry point surrounding collaborators
// (HTTP gateway, CLI) call into.
type TrackerService interface {
	Track(ctx context.Context, carrier, code, language string) (*domain.TrackingResponse, error)
	// TrackAll queries every registered carrier concurrently and
	// returns the responses that succeeded.
	TrackAll(ctx context.Context, code, language string) ([]*domain.TrackingResponse, error)
	Carriers() []string
}
