// Package gls implements the tracking adapter for the GLS
// track-and-trace API. GLS requires an OAuth2 client-credentials token
// obtained before the tracking call, so one Track invocation issues
// two HTTP requests against the same injected client.
package gls

import (
	"context"
	"encoding/base64"
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
	carrier         = "gls"
	defaultTokenURL = "https://api.gls-group.net/oauth2/v1/token"
)

var serverBases = map[string]string{
	"prod":    "https://api.gls-group.net/track-and-trace-v1/",
	"sandbox": "https://api-sandbox.gls-group.net/track-and-trace-v1/",
	"qas":     "https://api-qas.gls-group.net/track-and-trace-v1/",
}

// Adapter translates GLS parcel responses into the unified model.
type Adapter struct {
	client   *http.Client
	cfg      config.GLSConfig
	baseURL  string
	tokenURL string
	log      zerolog.Logger
}

func New(client *http.Client, cfg config.GLSConfig, log zerolog.Logger) *Adapter {
	return &Adapter{
		client:   client,
		cfg:      cfg,
		baseURL:  serverBase(cfg.Server),
		tokenURL: defaultTokenURL,
		log:      log,
	}
}

func serverBase(server string) string {
	switch strings.ToLower(server) {
	case "sandbox", "sb", "test":
		return serverBases["sandbox"]
	case "qas", "qa":
		return serverBases["qas"]
	default:
		return serverBases["prod"]
	}
}

func (a *Adapter) Carrier() string { return carrier }

// TrackingURL returns the public GLS parcel tracker link.
func (a *Adapter) TrackingURL(code, _ string) string {
	return "https://gls-group.eu/track/" + url.PathEscape(code)
}

// --- Wire shapes (carrier-owned contract) ---

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type apiResponse struct {
	Parcels []apiParcel `json:"parcels"`
}

type apiParcel struct {
	Requested    string     `json:"requested"`
	Unitno       string     `json:"unitno"`
	Status       string     `json:"status"` // PREADVICE, INTRANSIT, ...
	Events       []apiEvent `json:"events"`
	ErrorCode    string     `json:"errorCode"`
	ErrorMessage string     `json:"errorMessage"`
}

type apiEvent struct {
	Code          string `json:"code"`
	Description   string `json:"description"`
	EventDateTime string `json:"eventDateTime"` // "2024-10-11T15:24:57+0200"
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
}

// statusMap translates GLS parcel statuses onto the closed set.
// Anything absent maps to unknown.
var statusMap = map[string]domain.ShipmentStatus{
	"PLANNEDPICKUP": domain.StatusInformationReceived,
	"INPICKUP":      domain.StatusInformationReceived,
	"PREADVICE":     domain.StatusInformationReceived,
	"NOTPICKEDUP":   domain.StatusException,
	"INTRANSIT":     domain.StatusInTransit,
	"INWAREHOUSE":   domain.StatusInTransit,
	"INDELIVERY":    domain.StatusOutForDelivery,
	"DELIVEREDPS":   domain.StatusDelivered,
	"DELIVERED":     domain.StatusDelivered,
	"NOTDELIVERED":  domain.StatusException,
	"CANCELED":      domain.StatusCancelled,
}

// Track fetches a parcel by reference or parcel number. The response
// language is selected with the Accept-Language header, which GLS
// expects as a two-letter upper-case code.
func (a *Adapter) Track(ctx context.Context, code, language string) (*domain.TrackingResponse, error) {
	if a.cfg.ClientID == "" {
		return nil, &domain.ConfigError{Var: "GLS_CLIENT_ID"}
	}
	if a.cfg.ClientSecret == "" {
		return nil, &domain.ConfigError{Var: "GLS_CLIENT_SECRET"}
	}

	token, err := a.fetchToken(ctx)
	if err != nil {
		return nil, err
	}

	lang, _ := locale.Normalize(language, carrier)
	params := url.Values{
		"showLinks":  {"false"},
		"showEvents": {"true"},
	}
	headers := map[string]string{
		"Authorization":   "Bearer " + token,
		"Accept-Language": lang,
	}

	resp, err := httpclient.Get(ctx, a.client, carrier, a.baseURL+"tracking/simple/references/"+url.PathEscape(code), params, headers)
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
	return a.normalize(&raw), nil
}

// fetchToken performs the OAuth2 client-credentials exchange using
// HTTP Basic client authentication.
func (a *Adapter) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	basic := base64.StdEncoding.EncodeToString([]byte(a.cfg.ClientID + ":" + a.cfg.ClientSecret))
	headers := map[string]string{"Authorization": "Basic " + basic}

	resp, err := httpclient.PostForm(ctx, a.client, carrier, a.tokenURL, form, headers)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		httpclient.Drain(resp)
		return "", &domain.AuthError{Carrier: carrier, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return "", httpclient.UnexpectedStatus(carrier, resp)
	}

	var tok tokenResponse
	if err := httpclient.DecodeJSON(carrier, resp, &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", &domain.AuthError{Carrier: carrier, StatusCode: resp.StatusCode}
	}
	return tok.AccessToken, nil
}

func (a *Adapter) normalize(raw *apiResponse) *domain.TrackingResponse {
	shipments := make([]domain.Shipment, 0, len(raw.Parcels))
	for _, p := range raw.Parcels {
		if p.Unitno == "" {
			// Error-only entry (e.g. E_404_01 Resource Not Found):
			// treated as "no shipment" rather than a failure.
			continue
		}

		events := make([]domain.TrackingEvent, 0, len(p.Events))
		for _, ev := range p.Events {
			ts, ok := parseEventTime(ev.EventDateTime)
			if !ok {
				a.log.Debug().Str("event_datetime", ev.EventDateTime).Msg("gls: dropping event with unparseable timestamp")
				continue
			}
			desc := ev.Description
			if desc == "" {
				desc = ev.Code
			}
			events = append(events, domain.TrackingEvent{
				Timestamp:  ts,
				Status:     desc,
				Location:   composeLocation(ev.City, ev.PostalCode, ev.Country),
				Details:    desc,
				StatusCode: ev.Code,
			})
		}
		domain.SortEventsChronologically(events)

		shipments = append(shipments, domain.Shipment{
			TrackingNumber: p.Unitno,
			Carrier:        carrier,
			Status:         statusFor(p.Status),
			Events:         events,
		})
	}
	return domain.NewTrackingResponse(carrier, shipments...)
}

func statusFor(s string) domain.ShipmentStatus {
	if mapped, ok := statusMap[strings.ToUpper(s)]; ok {
		return mapped
	}
	return domain.StatusUnknown
}

func composeLocation(city, postal, country string) string {
	left := strings.TrimSpace(strings.TrimSpace(city) + " " + strings.TrimSpace(postal))
	country = strings.TrimSpace(country)
	switch {
	case left != "" && country != "":
		return left + ", " + country
	case left != "":
		return left
	default:
		return country
	}
}

// parseEventTime accepts GLS timestamps, which come with a compact
// "+0200" style offset, plus RFC 3339 and zone-less fallbacks.
func parseEventTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
