package domain

import (
	"errors"
	"fmt"
)

// ErrProviderNotFound is returned by the registry for unknown carrier
// identifiers.
var ErrProviderNotFound = errors.New("provider not found")

// ConfigError signals a required credential was missing before any
// network call was attempted. Distinct from AuthError so a caller can
// tell "bad setup" from "bad credentials".
type ConfigError struct {
	Var string // environment variable that must be set
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not set: add it to your environment or .env file", e.Var)
}

// AuthError signals the provider rejected our credentials (401/403).
type AuthError struct {
	Carrier    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: provider rejected credentials (status %d)", e.Carrier, e.StatusCode)
}

// TransportError wraps a network, timeout or unexpected-status failure
// from the HTTP layer. Cancellation surfaces here too.
type TransportError struct {
	Carrier string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Carrier, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError wraps an unexpected or changed provider response shape.
// Individual malformed event timestamps do not produce a ParseError;
// those events are dropped instead.
type ParseError struct {
	Carrier string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: cannot parse provider response: %v", e.Carrier, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
