package gls

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/infrastructure/config"
)

func newTestAdapter(api, token *httptest.Server, cfg config.GLSConfig) *Adapter {
	return &Adapter{
		client:   api.Client(),
		cfg:      cfg,
		baseURL:  api.URL + "/",
		tokenURL: token.URL,
		log:      zerolog.Nop(),
	}
}

func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "tok-123", "token_type": "Bearer"}`))
	}))
}

func TestTrackMissingCredentials(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	a := newTestAdapter(srv, srv, config.GLSConfig{})
	_, err := a.Track(context.Background(), "123", "en")
	var cerr *domain.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
	if cerr.Var != "GLS_CLIENT_ID" {
		t.Errorf("Var = %q, want GLS_CLIENT_ID", cerr.Var)
	}

	a = newTestAdapter(srv, srv, config.GLSConfig{ClientID: "id"})
	_, err = a.Track(context.Background(), "123", "en")
	if !errors.As(err, &cerr) || cerr.Var != "GLS_CLIENT_SECRET" {
		t.Fatalf("error = %v, want ConfigError for GLS_CLIENT_SECRET", err)
	}
}

func TestTrackRejectedCredentials(t *testing.T) {
	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer token.Close()

	a := newTestAdapter(token, token, config.GLSConfig{ClientID: "id", ClientSecret: "bad"})
	_, err := a.Track(context.Background(), "123", "en")
	var aerr *domain.AuthError
	if !errors.As(err, &aerr) {
		t.Fatalf("error = %v, want AuthError", err)
	}
}

func TestTrackInTransit(t *testing.T) {
	token := tokenServer(t)
	defer token.Close()

	var gotAuth, gotAcceptLang string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAcceptLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"parcels": [{
				"requested": "123456789",
				"unitno": "123456789",
				"status": "INTRANSIT",
				"events": [
					{"code": "0.100", "description": "Parcel data transmitted", "eventDateTime": "2024-10-10T08:00:00+0200", "city": "Madrid", "postalCode": "28001", "country": "ES"},
					{"code": "1.0", "description": "Parcel in transit", "eventDateTime": "2024-10-11T15:24:57+0200", "city": "Zaragoza", "country": "ES"}
				]
			}]
		}`))
	}))
	defer api.Close()

	a := newTestAdapter(api, token, config.GLSConfig{ClientID: "id", ClientSecret: "secret"})
	resp, err := a.Track(context.Background(), "123456789", "es-es")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAcceptLang != "ES" {
		t.Errorf("Accept-Language = %q, want ES", gotAcceptLang)
	}

	sh := resp.Shipments[0]
	if sh.Status != domain.StatusInTransit {
		t.Errorf("status = %s, want in_transit", sh.Status)
	}
	if len(sh.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(sh.Events))
	}
	if sh.Events[0].Location != "Madrid 28001, ES" {
		t.Errorf("location = %q", sh.Events[0].Location)
	}
	// +0200 offset converted to UTC.
	want := time.Date(2024, 10, 11, 13, 24, 57, 0, time.UTC)
	if !sh.Events[1].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", sh.Events[1].Timestamp, want)
	}
}

func TestTrackErrorOnlyParcelIsEmptyResponse(t *testing.T) {
	token := tokenServer(t)
	defer token.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"parcels": [{"requested": "000", "errorCode": "E_404_01", "errorMessage": "Resource Not Found"}]}`))
	}))
	defer api.Close()

	a := newTestAdapter(api, token, config.GLSConfig{ClientID: "id", ClientSecret: "secret"})
	resp, err := a.Track(context.Background(), "000", "en")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if resp.Shipments == nil || len(resp.Shipments) != 0 {
		t.Fatalf("Shipments = %#v, want empty non-nil slice", resp.Shipments)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		in   string
		want domain.ShipmentStatus
	}{
		{"PREADVICE", domain.StatusInformationReceived},
		{"intransit", domain.StatusInTransit},
		{"INDELIVERY", domain.StatusOutForDelivery},
		{"DELIVEREDPS", domain.StatusDelivered},
		{"NOTDELIVERED", domain.StatusException},
		{"CANCELED", domain.StatusCancelled},
		{"WHATEVER", domain.StatusUnknown},
	}
	for _, tc := range tests {
		if got := statusFor(tc.in); got != tc.want {
			t.Errorf("statusFor(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
