package correos

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrack/tracking-system/internal/core/domain"
)

func newTestAdapter(srv *httptest.Server) *Adapter {
	return &Adapter{client: srv.Client(), baseURL: srv.URL, log: zerolog.Nop()}
}

func TestTrackDelivered(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"text":     r.URL.Query().Get("text"),
			"language": r.URL.Query().Get("language"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"shipment": [{
				"shipmentCode": "PK55555555555555555555W",
				"events": [
					{"eventDate": "07/09/2025", "eventTime": "10:00:00", "summaryText": "Admitido", "eventCode": "A01"},
					{"eventDate": "08/09/2025", "eventTime": "11:48:03", "summaryText": "Entregado", "extendedText": "Entregado al destinatario", "eventCode": "E01"}
				]
			}]
		}`))
	}))
	defer srv.Close()

	resp, err := newTestAdapter(srv).Track(context.Background(), "PK55555555555555555555W", "en-us")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if gotQuery["text"] != "PK55555555555555555555W" {
		t.Errorf("text param = %q", gotQuery["text"])
	}
	if gotQuery["language"] != "EN" {
		t.Errorf("language param = %q, want EN", gotQuery["language"])
	}

	if len(resp.Shipments) != 1 {
		t.Fatalf("got %d shipments, want 1", len(resp.Shipments))
	}
	sh := resp.Shipments[0]
	if sh.Status != domain.StatusDelivered {
		t.Errorf("status = %s, want delivered", sh.Status)
	}
	if len(sh.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(sh.Events))
	}
	want := time.Date(2025, 9, 8, 11, 48, 3, 0, time.UTC)
	if !sh.Events[1].Timestamp.Equal(want) {
		t.Errorf("latest timestamp = %v, want %v", sh.Events[1].Timestamp, want)
	}
	if sh.Events[1].Details != "Entregado al destinatario" {
		t.Errorf("details = %q", sh.Events[1].Details)
	}
}

func TestTrackNotFoundIsEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := newTestAdapter(srv).Track(context.Background(), "NOPE", "es")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if resp.Shipments == nil {
		t.Fatal("Shipments is nil, want empty slice")
	}
	if len(resp.Shipments) != 0 {
		t.Errorf("got %d shipments, want 0", len(resp.Shipments))
	}
}

func TestTrackUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestAdapter(srv).Track(context.Background(), "PK1", "es")
	var terr *domain.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want TransportError", err)
	}
}

func TestInferStatus(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.ShipmentStatus
	}{
		{"spanish delivered", "Entregado", domain.StatusDelivered},
		{"english delivery", "In delivery", domain.StatusOutForDelivery},
		{"spanish transit", "En transito", domain.StatusInTransit},
		{"admitted", "Admitido en oficina", domain.StatusInformationReceived},
		{"gibberish", "Algo raro", domain.StatusUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			events := []domain.TrackingEvent{{Timestamp: time.Now(), Status: tc.text}}
			if got := inferStatus(events); got != tc.want {
				t.Errorf("inferStatus(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestParseEventTimestamp(t *testing.T) {
	ts, ok := parseEventTimestamp("08/09/2025", "11:48:03")
	if !ok {
		t.Fatal("parse failed")
	}
	if want := time.Date(2025, 9, 8, 11, 48, 3, 0, time.UTC); !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts, want)
	}
	if _, ok := parseEventTimestamp("not-a-date", ""); ok {
		t.Error("expected failure for garbage input")
	}
}
