// Package httpclient builds the shared HTTP client all provider
// adapters use and centralizes request plumbing so adapters stay small.
// One client instance is reused across calls to amortize connection
// setup; per-call cancellation rides on the request context.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parceltrack/tracking-system/internal/core/domain"
)

// UserAgent identifies this client to carrier APIs.
const UserAgent = "parceltrack/1.0 (+https://github.com/parceltrack/tracking-system)"

const defaultTimeout = 20 * time.Second

// New returns an HTTP client with the given total-request timeout.
// Timeouts and cancellation are owned entirely by this client; the
// adapters never retry.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Get issues a GET with standard headers. Network-level failures
// (connection, timeout, cancellation) come back as a
// domain.TransportError for the given carrier; HTTP status handling is
// left to the adapter, which knows the carrier's conventions.
func Get(ctx context.Context, client *http.Client, carrier, rawURL string, params url.Values, headers map[string]string) (*http.Response, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.TransportError{Carrier: carrier, Err: err}
	}
	applyHeaders(req, headers)
	resp, err := client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Carrier: carrier, Err: err}
	}
	return resp, nil
}

// PostForm issues a form-encoded POST with standard headers, with the
// same error conventions as Get.
func PostForm(ctx context.Context, client *http.Client, carrier, rawURL string, form url.Values, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &domain.TransportError{Carrier: carrier, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	applyHeaders(req, headers)
	resp, err := client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Carrier: carrier, Err: err}
	}
	return resp, nil
}

// DecodeJSON reads and closes the response body, decoding it into v.
// Malformed bodies become a domain.ParseError.
func DecodeJSON(carrier string, resp *http.Response, v any) error {
	defer drain(resp)
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &domain.ParseError{Carrier: carrier, Err: err}
	}
	return nil
}

// Drain discards the rest of a body so the connection can be reused.
func Drain(resp *http.Response) { drain(resp) }

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}

// UnexpectedStatus builds the TransportError used when a carrier
// returns a status code the adapter has no mapping for.
func UnexpectedStatus(carrier string, resp *http.Response) error {
	drain(resp)
	return &domain.TransportError{
		Carrier: carrier,
		Err:     fmt.Errorf("unexpected status %d from %s", resp.StatusCode, resp.Request.URL.Host),
	}
}

func applyHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set("User-Agent", UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}
