// Package dhl implements the tracking adapter for the DHL Unified
// Tracking API (UTAPI). The API authenticates with the DHL-API-Key
// header; a missing key is a configuration error raised before any
// network call, distinct from the provider rejecting a bad key.
package dhl

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/infrastructure/config"
	"github.com/parceltrack/tracking-system/internal/infrastructure/httpclient"
	"github.com/parceltrack/tracking-system/internal/pkg/locale"
)

const (
	carrier     = "dhl"
	prodBaseURL = "https://api-eu.dhl.com/track/shipments"
	testBaseURL = "https://api-test.dhl.com/track/shipments"

	// UTAPI defaults to 5 events per shipment; request full history.
	eventLimit = "50"
)

// Adapter translates UTAPI responses into the unified model.
type Adapter struct {
	client  *http.Client
	cfg     config.DHLConfig
	baseURL string
	log     zerolog.Logger
}

func New(client *http.Client, cfg config.DHLConfig, log zerolog.Logger) *Adapter {
	base := prodBaseURL
	if strings.EqualFold(cfg.Server, "test") {
		base = testBaseURL
	}
	return &Adapter{client: client, cfg: cfg, baseURL: base, log: log}
}

func (a *Adapter) Carrier() string { return carrier }

// TrackingURL returns the global DHL tracker link.
func (a *Adapter) TrackingURL(code, language string) string {
	lang, _ := locale.Normalize(language, carrier)
	return "https://www.dhl.com/track?tracking-id=" + url.QueryEscape(code) + "&language=" + lang
}

// --- Wire shapes (UTAPI, carrier-owned contract) ---

type apiResponse struct {
	Shipments []apiShipment `json:"shipments"`
}

type apiShipment struct {
	ID      string     `json:"id"`
	Status  apiEvent   `json:"status"`
	Events  []apiEvent `json:"events"`
	Details apiDetails `json:"details"`
}

type apiEvent struct {
	Timestamp      string      `json:"timestamp"`
	StatusCode     string      `json:"statusCode"` // delivered|failure|pre-transit|transit|unknown
	Status         string      `json:"status"`
	Description    string      `json:"description"`
	StatusDetailed string      `json:"statusDetailed"`
	Remark         string      `json:"remark"`
	NextSteps      string      `json:"nextSteps"`
	Location       apiLocation `json:"location"`
}

type apiLocation struct {
	Address      apiAddress `json:"address"`
	ServicePoint struct {
		Label string `json:"label"`
	} `json:"servicePoint"`
}

type apiAddress struct {
	AddressLocality string `json:"addressLocality"`
	CountryCode     string `json:"countryCode"`
}

type apiDetails struct {
	Product struct {
		ProductName string `json:"productName"`
	} `json:"product"`
	Origin      *apiEndpoint `json:"origin"`
	Destination *apiEndpoint `json:"destination"`
}

type apiEndpoint struct {
	Address apiAddress `json:"address"`
}

// Track queries UTAPI for one tracking number. 404 means "shipment not
// found" and becomes a successful empty response; 401/403 become an
// AuthError so credential problems stay diagnosable.
func (a *Adapter) Track(ctx context.Context, code, language string) (*domain.TrackingResponse, error) {
	if a.cfg.APIKey == "" {
		return nil, &domain.ConfigError{Var: "DHL_API_KEY"}
	}

	lang, _ := locale.Normalize(language, carrier)
	params := url.Values{
		"trackingNumber": {code},
		"language":       {lang},
		"limit":          {eventLimit},
	}
	headers := map[string]string{"DHL-API-Key": a.cfg.APIKey}

	resp, err := httpclient.Get(ctx, a.client, carrier, a.baseURL, params, headers)
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
	if len(raw.Shipments) == 0 {
		return domain.NewTrackingResponse(carrier)
	}
	sh := raw.Shipments[0]

	events := make([]domain.TrackingEvent, 0, len(sh.Events))
	for _, ev := range sh.Events {
		ts, ok := parseTimestamp(ev.Timestamp)
		if !ok {
			a.log.Debug().Str("timestamp", ev.Timestamp).Msg("dhl: dropping event with unparseable timestamp")
			continue
		}
		status, details := eventText(ev)
		events = append(events, domain.TrackingEvent{
			Timestamp:  ts,
			Status:     status,
			Location:   eventLocation(ev.Location),
			Details:    details,
			StatusCode: ev.StatusCode,
		})
	}
	domain.SortEventsChronologically(events)

	tracking := sh.ID
	if tracking == "" {
		tracking = code
	}

	return domain.NewTrackingResponse(carrier, domain.Shipment{
		TrackingNumber: tracking,
		Carrier:        carrier,
		Status:         inferStatus(&sh, events),
		Events:         events,
		ServiceType:    sh.Details.Product.ProductName,
		Origin:         endpointLocation(sh.Details.Origin),
		Destination:    endpointLocation(sh.Details.Destination),
	})
}

// mapStatusCode translates the five UTAPI status codes.
func mapStatusCode(code string) domain.ShipmentStatus {
	switch strings.ToLower(code) {
	case "delivered":
		return domain.StatusDelivered
	case "failure":
		return domain.StatusException
	case "pre-transit":
		return domain.StatusInformationReceived
	case "transit":
		return domain.StatusInTransit
	default:
		return domain.StatusUnknown
	}
}

// outForDeliveryPhrases refine a "transit" status code: UTAPI keeps
// reporting transit after the parcel is loaded onto the delivery
// vehicle, so the latest event text is checked for these.
var outForDeliveryPhrases = []string{
	"out for delivery",
	"in delivery",
	"loaded onto the delivery vehicle",
	"delivery vehicle",
}

// inferStatus resolves the overall shipment status: the shipment-level
// statusCode is canonical, then the latest event's statusCode, then
// the generic text heuristics.
func inferStatus(sh *apiShipment, events []domain.TrackingEvent) domain.ShipmentStatus {
	refine := func(mapped domain.ShipmentStatus, text string) domain.ShipmentStatus {
		if mapped != domain.StatusInTransit {
			return mapped
		}
		t := strings.ToLower(text)
		for _, phrase := range outForDeliveryPhrases {
			if strings.Contains(t, phrase) {
				return domain.StatusOutForDelivery
			}
		}
		return mapped
	}

	var latestText string
	if len(events) > 0 {
		latest := events[len(events)-1]
		latestText = latest.Details
		if latestText == "" {
			latestText = latest.Status
		}
	}

	if mapped := mapStatusCode(sh.Status.StatusCode); mapped != domain.StatusUnknown {
		return refine(mapped, latestText)
	}
	if len(events) > 0 {
		latest := events[len(events)-1]
		if mapped := mapStatusCode(latest.StatusCode); mapped != domain.StatusUnknown {
			return refine(mapped, latestText)
		}
		if mapped := domain.StatusFromText(latestText); mapped != domain.StatusUnknown {
			return mapped
		}
	}
	return domain.StatusUnknown
}

// eventText picks a human-friendly status and details. DHL sometimes
// sends cryptic 2-3 letter upper-case codes in the status field; the
// description is preferred then.
func eventText(ev apiEvent) (status, details string) {
	statusText := strings.TrimSpace(ev.Status)
	desc := strings.TrimSpace(ev.Description)
	if desc == "" {
		desc = strings.TrimSpace(ev.StatusDetailed)
	}

	if looksLikeShortCode(statusText) && desc != "" {
		status = desc
	} else if statusText != "" {
		status = statusText
	} else {
		status = desc
	}

	var parts []string
	if desc != "" && desc != status {
		parts = append(parts, desc)
	}
	if next := strings.TrimSpace(ev.NextSteps); next != "" {
		parts = append(parts, "Next: "+next)
	}
	if remark := strings.TrimSpace(ev.Remark); remark != "" {
		parts = append(parts, "Remark: "+remark)
	}
	return status, strings.Join(parts, " | ")
}

func looksLikeShortCode(s string) bool {
	return s != "" && len(s) <= 3 && s == strings.ToUpper(s)
}

func eventLocation(loc apiLocation) string {
	if composed := composeLocation(loc.Address); composed != "" {
		return composed
	}
	return loc.ServicePoint.Label
}

func endpointLocation(ep *apiEndpoint) string {
	if ep == nil {
		return ""
	}
	return composeLocation(ep.Address)
}

func composeLocation(addr apiAddress) string {
	switch {
	case addr.AddressLocality != "" && addr.CountryCode != "":
		return addr.AddressLocality + ", " + addr.CountryCode
	case addr.AddressLocality != "":
		return addr.AddressLocality
	default:
		return addr.CountryCode
	}
}

// parseTimestamp accepts the ISO 8601 variants UTAPI emits, with and
// without zone offset. Zone-less values are taken as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04:05-0700"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
