package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/parceltrack/tracking-system/internal/core/domain"
)

func TestGetSetsStandardHeaders(t *testing.T) {
	var gotUA, gotAccept, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Custom")
	}))
	defer srv.Close()

	resp, err := Get(context.Background(), srv.Client(), "dhl", srv.URL, nil, map[string]string{"X-Custom": "yes"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	Drain(resp)

	if gotUA != UserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotCustom != "yes" {
		t.Errorf("X-Custom = %q", gotCustom)
	}
}

func TestGetNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := Get(context.Background(), http.DefaultClient, "dpd", srv.URL, nil, nil)
	var terr *domain.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want TransportError", err)
	}
	if terr.Carrier != "dpd" {
		t.Errorf("Carrier = %q, want dpd", terr.Carrier)
	}
}

func TestGetTimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(20 * time.Millisecond)
	_, err := Get(context.Background(), client, "gls", srv.URL, nil, nil)
	var terr *domain.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want TransportError", err)
	}
}

func TestDecodeJSONMalformedBodyIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	resp, err := Get(context.Background(), srv.Client(), "correos", srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	var out map[string]any
	err = DecodeJSON("correos", resp, &out)
	var perr *domain.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}

func TestUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	resp, err := Get(context.Background(), srv.Client(), "ctt", srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	err = UnexpectedStatus("ctt", resp)
	var terr *domain.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want TransportError", err)
	}
}

func TestNewDefaultsTimeout(t *testing.T) {
	if c := New(0); c.Timeout != defaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, defaultTimeout)
	}
	if c := New(5 * time.Second); c.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.Timeout)
	}
}
