package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/core/ports"
)

// TrackerService is the carrier-agnostic facade: it resolves the
// adapter for a carrier and delegates the query.
type TrackerService struct {
	registry ports.ProviderRegistry
	logger   zerolog.Logger
}

func NewTrackerService(registry ports.ProviderRegistry, logger zerolog.Logger) *TrackerService {
	return &TrackerService{registry: registry, logger: logger}
}

// Track queries one carrier for one tracking code.
func (s *TrackerService) Track(ctx context.Context, carrier, code, language string) (*domain.TrackingResponse, error) {
	provider, err := s.registry.Resolve(carrier)
	if err != nil {
		return nil, err
	}

	resp, err := provider.Track(ctx, code, language)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("carrier", provider.Carrier()).
			Str("tracking_number", code).
			Msg("tracking query failed")
		return nil, err
	}

	s.logger.Info().
		Str("carrier", provider.Carrier()).
		Str("tracking_number", code).
		Int("shipments", len(resp.Shipments)).
		Msg("tracking query completed")
	return resp, nil
}

// TrackAll queries every registered carrier concurrently and returns
// the responses that succeeded, ordered by carrier name. Individual
// carrier failures (missing credentials, timeouts) are logged and
// skipped so one misconfigured carrier cannot poison the fan-out.
func (s *TrackerService) TrackAll(ctx context.Context, code, language string) ([]*domain.TrackingResponse, error) {
	names := s.registry.Names()

	var mu sync.Mutex
	responses := make([]*domain.TrackingResponse, 0, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			provider, err := s.registry.Resolve(name)
			if err != nil {
				return err
			}
			resp, err := provider.Track(ctx, code, language)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("carrier", name).
					Str("tracking_number", code).
					Msg("carrier skipped during fan-out")
				return nil
			}
			mu.Lock()
			responses = append(responses, resp)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Restore deterministic carrier order after the concurrent appends.
	ordered := make([]*domain.TrackingResponse, 0, len(responses))
	for _, name := range names {
		for _, resp := range responses {
			if resp.Provider == name {
				ordered = append(ordered, resp)
			}
		}
	}
	return ordered, nil
}

// Carriers lists the registered carrier identifiers.
func (s *TrackerService) Carriers() []string {
	return s.registry.Names()
}
