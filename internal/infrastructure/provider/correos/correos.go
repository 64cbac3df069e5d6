// Package correos implements the tracking adapter for Correos, the
// Spanish postal service. The public search API requires no
// authentication and supports EN, ES and FR.
package correos

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/infrastructure/httpclient"
	"github.com/parceltrack/tracking-system/internal/pkg/locale"
)

const (
	carrier        = "correos"
	defaultBaseURL = "https://api1.correos.es/digital-services/searchengines/api/v1/envios"
	websiteURL     = "https://www.correos.es/es/es/herramientas/localizador/envios/detalle"
)

// Adapter translates the Correos wire format into the unified model.
type Adapter struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

func New(client *http.Client, log zerolog.Logger) *Adapter {
	return &Adapter{client: client, baseURL: defaultBaseURL, log: log}
}

func (a *Adapter) Carrier() string { return carrier }

// TrackingURL returns the public Correos locator link.
func (a *Adapter) TrackingURL(code, _ string) string {
	return websiteURL + "?tracking-number=" + url.QueryEscape(code)
}

// --- Wire shapes (carrier-owned contract) ---

type apiResponse struct {
	Shipment []apiShipment `json:"shipment"`
}

type apiShipment struct {
	ShipmentCode string     `json:"shipmentCode"`
	Events       []apiEvent `json:"events"`
}

type apiEvent struct {
	EventDate    string `json:"eventDate"` // DD/MM/YYYY
	EventTime    string `json:"eventTime"` // HH:MM:SS
	SummaryText  string `json:"summaryText"`
	ExtendedText string `json:"extendedText"`
	EventCode    string `json:"eventCode"`
}

// Track queries the search API with ?text=<code>&language=<XX>.
// Without the Accept: application/json header the API answers invalid
// codes with HTML error pages, so the shared client always sends it.
func (a *Adapter) Track(ctx context.Context, code, language string) (*domain.TrackingResponse, error) {
	lang, _ := locale.Normalize(language, carrier)
	params := url.Values{
		"text":     {code},
		"language": {lang},
	}

	resp, err := httpclient.Get(ctx, a.client, carrier, a.baseURL, params, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		httpclient.Drain(resp)
		return nil, &domain.AuthError{Carrier: carrier, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		// Correos answers malformed or unknown codes with 400.
		httpclient.Drain(resp)
		return domain.NewTrackingResponse(carrier), nil
	case resp.StatusCode != http.StatusOK:
		return nil, httpclient.UnexpectedStatus(carrier, resp)
	}

	var raw apiResponse
	if err := httpclient.DecodeJSON(carrier, resp, &raw); err != nil {
		return nil, err
	}
	return a.normalize(&raw, code), nil
}

func (a *Adapter) normalize(raw *apiResponse, code string) *domain.TrackingResponse {
	if len(raw.Shipment) == 0 {
		return domain.NewTrackingResponse(carrier)
	}
	sh := raw.Shipment[0]

	events := make([]domain.TrackingEvent, 0, len(sh.Events))
	for _, ev := range sh.Events {
		ts, ok := parseEventTimestamp(ev.EventDate, ev.EventTime)
		if !ok {
			a.log.Debug().
				Str("event_date", ev.EventDate).
				Str("event_time", ev.EventTime).
				Msg("correos: dropping event with unparseable timestamp")
			continue
		}
		events = append(events, domain.TrackingEvent{
			Timestamp:  ts,
			Status:     ev.SummaryText,
			Details:    ev.ExtendedText,
			StatusCode: ev.EventCode,
		})
	}
	domain.SortEventsChronologically(events)

	tracking := sh.ShipmentCode
	if tracking == "" {
		tracking = code
	}

	return domain.NewTrackingResponse(carrier, domain.Shipment{
		TrackingNumber: tracking,
		Carrier:        carrier,
		Status:         inferStatus(events),
		Events:         events,
	})
}

// parseEventTimestamp combines the split date/time fields. Correos
// sends no timezone; values are taken as UTC.
func parseEventTimestamp(date, clock string) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	if clock != "" {
		for _, layout := range []string{"02/01/2006 15:04:05", "02/01/2006 15:04"} {
			if ts, err := time.ParseInLocation(layout, date+" "+clock, time.UTC); err == nil {
				return ts, true
			}
		}
	}
	ts, err := time.ParseInLocation("02/01/2006", date, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// inferStatus maps the latest summary text onto the closed status set.
// Texts vary with the language parameter, so Spanish and English
// keywords are both matched.
func inferStatus(events []domain.TrackingEvent) domain.ShipmentStatus {
	if len(events) == 0 {
		return domain.StatusUnknown
	}
	latest := strings.ToLower(events[len(events)-1].Status)
	switch {
	case strings.Contains(latest, "entregado") || strings.Contains(latest, "delivered"):
		return domain.StatusDelivered
	case strings.Contains(latest, "reparto") || strings.Contains(latest, "delivery"):
		return domain.StatusOutForDelivery
	case strings.Contains(latest, "transito") || strings.Contains(latest, "transit"):
		return domain.StatusInTransit
	case strings.Contains(latest, "admitido") || strings.Contains(latest, "received"):
		return domain.StatusInformationReceived
	default:
		return domain.StatusUnknown
	}
}
