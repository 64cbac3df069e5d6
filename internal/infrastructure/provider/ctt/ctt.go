// Package ctt implements the tracking adapter for CTT Express. The
// public endpoint takes the shipping code as the sc parameter and
// ignores language entirely; status texts arrive in Spanish, so the
// keyword matching folds accents before comparing.
package ctt

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/infrastructure/httpclient"
)

const (
	carrier        = "ctt"
	defaultBaseURL = "https://wct.cttexpress.com/p_track_redis.php"
)

// Adapter translates CTT Express payloads into the unified model.
type Adapter struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

func New(client *http.Client, log zerolog.Logger) *Adapter {
	return &Adapter{client: client, baseURL: defaultBaseURL, log: log}
}

func (a *Adapter) Carrier() string { return carrier }

// TrackingURL returns the public CTT Express tracker link.
func (a *Adapter) TrackingURL(code, _ string) string {
	return "https://www.cttexpress.com/localizador-de-envios/?sc=" + url.QueryEscape(code)
}

// --- Wire shapes (carrier-owned contract) ---

type apiResponse struct {
	Data *apiData `json:"data"`
}

type apiData struct {
	ShippingCode              string `json:"shipping_code"`
	ClientReference           string `json:"client_reference"`
	OriginName                string `json:"origin_name"`
	OriginProvinceName        string `json:"origin_province_name"`
	DestinName                string `json:"destin_name"`
	DestinProvinceName        string `json:"destin_province_name"`
	CommittedDeliveryDatetime string `json:"committed_delivery_datetime"`
	ReportedDeliveryDate      string `json:"reported_delivery_date"`
	DeliveryDate              string `json:"delivery_date"`
	DeclaredWeight            any    `json:"declared_weight"`
	FinalWeight               any    `json:"final_weight"`
	ShippingTypeCode          string `json:"shipping_type_code"`
	ItemCount                 any    `json:"item_count"`
	ShippingHistory           struct {
		Events []apiEvent `json:"events"`
	} `json:"shipping_history"`
}

type apiEvent struct {
	EventDate   string         `json:"event_date"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Code        string         `json:"code"`
	Detail      apiEventDetail `json:"detail"`
}

type apiEventDetail struct {
	ItemEventDatetime string `json:"item_event_datetime"`
	ItemEventText     string `json:"item_event_text"`
	ExternalEventText string `json:"External_event_text"`
	EventCourierCode  string `json:"event_courier_code"`
}

// codeStatusMap translates observed CTT event codes. Codes not yet
// observed fall through to the text heuristics.
var codeStatusMap = map[string]domain.ShipmentStatus{
	"0000": domain.StatusInformationReceived,
	"1000": domain.StatusInTransit,
	"1500": domain.StatusOutForDelivery,
	"2310": domain.StatusAvailableForPickup,
}

// Track fetches ?sc=<code>. CTT has no not-found status code; an
// empty data object stands for "no shipment found".
func (a *Adapter) Track(ctx context.Context, code, _ string) (*domain.TrackingResponse, error) {
	params := url.Values{"sc": {code}}

	resp, err := httpclient.Get(ctx, a.client, carrier, a.baseURL, params, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		httpclient.Drain(resp)
		return nil, &domain.AuthError{Carrier: carrier, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
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
	data := raw.Data
	if data == nil {
		return domain.NewTrackingResponse(carrier)
	}

	events := make([]domain.TrackingEvent, 0, len(data.ShippingHistory.Events))
	for _, ev := range data.ShippingHistory.Events {
		// The detail datetime is more precise than the event date.
		dt := ev.Detail.ItemEventDatetime
		if dt == "" {
			dt = ev.EventDate
		}
		ts, ok := parseTimestamp(dt)
		if !ok {
			a.log.Debug().Str("datetime", dt).Msg("ctt: dropping event with unparseable timestamp")
			continue
		}
		desc := ev.Description
		if desc == "" {
			desc = ev.Type
		}
		events = append(events, domain.TrackingEvent{
			Timestamp:  ts,
			Status:     desc,
			Details:    eventDetails(ev.Detail),
			StatusCode: ev.Code,
		})
	}
	domain.SortEventsChronologically(events)

	status := inferStatus(events)

	var estimated, actual *time.Time
	for _, s := range []string{data.CommittedDeliveryDatetime, data.ReportedDeliveryDate, data.DeliveryDate} {
		if ts, ok := parseTimestamp(s); ok {
			estimated = &ts
			break
		}
	}
	if status == domain.StatusDelivered {
		if ts, ok := parseTimestamp(data.DeliveryDate); ok {
			actual = &ts
		} else {
			actual = estimated
		}
	}

	tracking := data.ShippingCode
	if tracking == "" {
		tracking = code
	}

	return domain.NewTrackingResponse(carrier, domain.Shipment{
		TrackingNumber:    tracking,
		Carrier:           carrier,
		Status:            status,
		Events:            events,
		Origin:            firstNonEmpty(data.OriginName, data.OriginProvinceName),
		Destination:       firstNonEmpty(data.DestinName, data.DestinProvinceName),
		EstimatedDelivery: estimated,
		ActualDelivery:    actual,
		Extras:            extrasFor(data),
	})
}

// eventDetails picks the first meaningful detail text; CTT fills
// unused fields with the literal string "null".
func eventDetails(det apiEventDetail) string {
	for _, v := range []string{det.ItemEventText, det.ExternalEventText, det.EventCourierCode} {
		if v != "" && !strings.EqualFold(v, "null") {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func extrasFor(data *apiData) map[string]any {
	extras := map[string]any{}
	if data.ClientReference != "" {
		extras["client_reference"] = data.ClientReference
	}
	if data.DeclaredWeight != nil {
		extras["declared_weight"] = data.DeclaredWeight
	}
	if data.FinalWeight != nil {
		extras["final_weight"] = data.FinalWeight
	}
	if data.ShippingTypeCode != "" {
		extras["shipping_type_code"] = data.ShippingTypeCode
	}
	if data.ItemCount != nil {
		extras["item_count"] = data.ItemCount
	}
	if len(extras) == 0 {
		return nil
	}
	return extras
}

// inferStatus resolves the shipment status: explicit code mapping
// first, then accent-folded Spanish phrases, then the generic text
// heuristics.
func inferStatus(events []domain.TrackingEvent) domain.ShipmentStatus {
	if len(events) == 0 {
		return domain.StatusUnknown
	}
	latest := events[len(events)-1]

	if mapped, ok := codeStatusMap[strings.TrimSpace(latest.StatusCode)]; ok {
		return mapped
	}

	t := foldAccents(strings.ToLower(latest.Status))
	switch {
	case strings.Contains(t, "entregado") || strings.Contains(t, "entrega realizada"):
		return domain.StatusDelivered
	case strings.Contains(t, "entrega hoy") || strings.Contains(t, "reparto") || strings.Contains(t, "delivery today"):
		return domain.StatusOutForDelivery
	case strings.Contains(t, "para recoger") || strings.Contains(t, "punto de recogida"):
		return domain.StatusAvailableForPickup
	case strings.Contains(t, "transito") || strings.Contains(t, "in transit"):
		return domain.StatusInTransit
	case strings.Contains(t, "pendiente de recepcion") || strings.Contains(t, "pendiente de recogida") || strings.Contains(t, "admitido"):
		return domain.StatusInformationReceived
	}
	return domain.StatusFromText(latest.Status)
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents strips diacritics so "tránsito" matches "transito".
func foldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

// parseTimestamp accepts the ISO 8601 variants CTT emits, including
// date-only values (midnight UTC).
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
