package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/core/ports"
)

// --- Stubs ---

type stubProvider struct {
	name string
	resp *domain.TrackingResponse
	err  error
}

func (p *stubProvider) Carrier() string { return p.name }

func (p *stubProvider) Track(ctx context.Context, code, language string) (*domain.TrackingResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.resp != nil {
		return p.resp, nil
	}
	return domain.NewTrackingResponse(p.name), nil
}

func (p *stubProvider) TrackingURL(code, language string) string {
	return "https://example.com/" + p.name + "/" + code
}

type stubRegistry struct {
	providers map[string]ports.Provider
	names     []string
}

func (r *stubRegistry) Resolve(carrier string) (ports.Provider, error) {
	p, ok := r.providers[carrier]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProviderNotFound, carrier)
	}
	return p, nil
}

func (r *stubRegistry) Names() []string { return r.names }

func newStubRegistry(providers ...*stubProvider) *stubRegistry {
	reg := &stubRegistry{providers: map[string]ports.Provider{}}
	for _, p := range providers {
		reg.providers[p.name] = p
		reg.names = append(reg.names, p.name)
	}
	return reg
}

// --- Tests ---

func TestTrackResolvesCarrier(t *testing.T) {
	want := domain.NewTrackingResponse("dhl", domain.Shipment{TrackingNumber: "123", Carrier: "dhl"})
	reg := newStubRegistry(&stubProvider{name: "dhl", resp: want})
	svc := NewTrackerService(reg, zerolog.Nop())

	got, err := svc.Track(context.Background(), "dhl", "123", "en")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if got != want {
		t.Error("Track() did not return the provider response")
	}
}

func TestTrackUnknownCarrier(t *testing.T) {
	svc := NewTrackerService(newStubRegistry(), zerolog.Nop())

	_, err := svc.Track(context.Background(), "pigeon", "123", "en")
	if !errors.Is(err, domain.ErrProviderNotFound) {
		t.Fatalf("error = %v, want ErrProviderNotFound", err)
	}
}

func TestTrackPropagatesProviderError(t *testing.T) {
	provErr := &domain.ConfigError{Var: "DHL_API_KEY"}
	reg := newStubRegistry(&stubProvider{name: "dhl", err: provErr})
	svc := NewTrackerService(reg, zerolog.Nop())

	_, err := svc.Track(context.Background(), "dhl", "123", "en")
	var cerr *domain.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
}

func TestTrackAllSkipsFailingCarriers(t *testing.T) {
	reg := newStubRegistry(
		&stubProvider{name: "correos"},
		&stubProvider{name: "dhl", err: &domain.ConfigError{Var: "DHL_API_KEY"}},
		&stubProvider{name: "gls"},
	)
	svc := NewTrackerService(reg, zerolog.Nop())

	responses, err := svc.TrackAll(context.Background(), "123", "en")
	if err != nil {
		t.Fatalf("TrackAll() error = %v", err)
	}
	got := make([]string, 0, len(responses))
	for _, r := range responses {
		got = append(got, r.Provider)
	}
	want := []string{"correos", "gls"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("providers = %v, want %v", got, want)
	}
}

func TestCarriers(t *testing.T) {
	reg := newStubRegistry(&stubProvider{name: "correos"}, &stubProvider{name: "dhl"})
	svc := NewTrackerService(reg, zerolog.Nop())

	if got := svc.Carriers(); !reflect.DeepEqual(got, []string{"correos", "dhl"}) {
		t.Errorf("Carriers() = %v", got)
	}
}
