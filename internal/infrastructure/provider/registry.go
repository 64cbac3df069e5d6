// Package provider assembles the carrier adapters behind a
// name-indexed registry.
package provider

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/core/ports"
	"github.com/parceltrack/tracking-system/internal/infrastructure/config"
	"github.com/parceltrack/tracking-system/internal/infrastructure/provider/correos"
	"github.com/parceltrack/tracking-system/internal/infrastructure/provider/ctt"
	"github.com/parceltrack/tracking-system/internal/infrastructure/provider/dhl"
	"github.com/parceltrack/tracking-system/internal/infrastructure/provider/dpd"
	"github.com/parceltrack/tracking-system/internal/infrastructure/provider/ecoscooting"
	"github.com/parceltrack/tracking-system/internal/infrastructure/provider/gls"
)

// Registry resolves carrier names to adapters. Lookup is
// case-insensitive; registered names are kept lowercase.
type Registry struct {
	providers map[string]ports.Provider
}

func NewRegistry(providers ...ports.Provider) *Registry {
	m := make(map[string]ports.Provider, len(providers))
	for _, p := range providers {
		m[strings.ToLower(p.Carrier())] = p
	}
	return &Registry{providers: m}
}

// NewDefaultRegistry wires every supported carrier with the shared
// HTTP client and configuration.
func NewDefaultRegistry(client *http.Client, cfg *config.Config, log zerolog.Logger) *Registry {
	return NewRegistry(
		correos.New(client, log),
		ctt.New(client, log),
		dhl.New(client, cfg.DHL, log),
		dpd.New(client, log),
		ecoscooting.New(client, log),
		gls.New(client, cfg.GLS, log),
	)
}

// Resolve returns the adapter for a carrier name, or an error wrapping
// ErrProviderNotFound for unknown names.
func (r *Registry) Resolve(carrier string) (ports.Provider, error) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(carrier))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProviderNotFound, carrier)
	}
	return p, nil
}

// Names returns the registered carrier names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
