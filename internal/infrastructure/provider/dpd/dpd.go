// Package dpd implements the tracking adapter for the public DPD
// Parcel Life Cycle (PLC) endpoint. The endpoint needs no
// authentication but is strict about the locale segment in the URL:
// it must be lowercase_UPPERCASE (en_US) or the API answers with 429
// or 500 instead of JSON.
package dpd

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
	carrier        = "dpd"
	defaultBaseURL = "https://tracking.dpd.de/rest/plc"
	websiteBase    = "https://tracking.dpd.de/status"
)

// Adapter translates PLC responses into the unified model.
type Adapter struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

func New(client *http.Client, log zerolog.Logger) *Adapter {
	return &Adapter{client: client, baseURL: defaultBaseURL, log: log}
}

func (a *Adapter) Carrier() string { return carrier }

// TrackingURL returns the public status page, using the same locale
// resolution as the PLC API.
func (a *Adapter) TrackingURL(code, language string) string {
	loc, _ := locale.Normalize(language, carrier)
	return websiteBase + "/" + loc + "/parcel/" + url.PathEscape(code)
}

// --- Wire shapes (PLC, carrier-owned contract) ---

type plcResponse struct {
	ParcelLifecycleResponse struct {
		ParcelLifeCycleData plcData `json:"parcelLifeCycleData"`
	} `json:"parcellifecycleResponse"`
}

type plcData struct {
	ShipmentInfo struct {
		ParcelLabelNumber string `json:"parcelLabelNumber"`
	} `json:"shipmentInfo"`
	StatusInfo []plcStatus `json:"statusInfo"`
	ScanInfo   struct {
		Scan []plcScan `json:"scan"`
	} `json:"scanInfo"`
}

type plcStatus struct {
	Status               string     `json:"status"` // ACCEPTED, ON_THE_ROAD, DELIVERED, ...
	Label                string     `json:"label"`
	Description          plcContent `json:"description"`
	StatusHasBeenReached bool       `json:"statusHasBeenReached"`
	IsCurrentStatus      bool       `json:"isCurrentStatus"`
	Location             string     `json:"location"`
	Date                 string     `json:"date"` // "09.09.2025, 11:19"
}

type plcScan struct {
	Date     string `json:"date"` // "2025-09-08T17:01:42"
	ScanData struct {
		Location string `json:"location"`
	} `json:"scanData"`
	ScanDescription plcContent `json:"scanDescription"`
}

type plcContent struct {
	Label   string   `json:"label"`
	Content []string `json:"content"`
}

func (c plcContent) text() string {
	if len(c.Content) > 0 && c.Content[0] != "" {
		return c.Content[0]
	}
	return c.Label
}

// Track fetches /rest/plc/{locale}/{parcel}. Invalid tracking numbers
// cause a redirect to an HTML page rather than a JSON error, so a
// non-JSON content type is treated as "no shipment found". The locale
// actually used is recorded in extras so callers can see what the
// provider was asked for.
func (a *Adapter) Track(ctx context.Context, code, language string) (*domain.TrackingResponse, error) {
	loc, changed := locale.Normalize(language, carrier)

	resp, err := httpclient.Get(ctx, a.client, carrier, a.baseURL+"/"+loc+"/"+url.PathEscape(code), nil, nil)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "application/json") {
		httpclient.Drain(resp)
		return domain.NewTrackingResponse(carrier), nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.UnexpectedStatus(carrier, resp)
	}

	var raw plcResponse
	if err := httpclient.DecodeJSON(carrier, resp, &raw); err != nil {
		return nil, err
	}
	return a.normalize(&raw, code, loc, language, changed), nil
}

func (a *Adapter) normalize(raw *plcResponse, code, loc, input string, changed bool) *domain.TrackingResponse {
	plc := raw.ParcelLifecycleResponse.ParcelLifeCycleData

	var events []domain.TrackingEvent
	if len(plc.ScanInfo.Scan) > 0 {
		// Scan events carry the detailed timeline.
		for _, scan := range plc.ScanInfo.Scan {
			ts, ok := parseScanDate(scan.Date)
			if !ok {
				a.log.Debug().Str("date", scan.Date).Msg("dpd: dropping scan with unparseable timestamp")
				continue
			}
			text := scan.ScanDescription.text()
			events = append(events, domain.TrackingEvent{
				Timestamp: ts,
				Status:    text,
				Location:  scan.ScanData.Location,
				Details:   text,
			})
		}
	} else {
		// Fall back to reached status milestones; future milestones are
		// present in the payload but not yet real events.
		for _, st := range plc.StatusInfo {
			if !st.StatusHasBeenReached {
				continue
			}
			ts, ok := parseMilestoneDate(st.Date)
			if !ok {
				a.log.Debug().Str("date", st.Date).Msg("dpd: dropping milestone with unparseable timestamp")
				continue
			}
			text := st.Description.text()
			if text == "" {
				text = st.Label
			}
			if text == "" {
				text = st.Status
			}
			events = append(events, domain.TrackingEvent{
				Timestamp: ts,
				Status:    text,
				Location:  st.Location,
				Details:   text,
			})
		}
	}
	domain.SortEventsChronologically(events)
	if events == nil {
		events = []domain.TrackingEvent{}
	}

	tracking := plc.ShipmentInfo.ParcelLabelNumber
	if tracking == "" {
		tracking = code
	}

	extras := map[string]any{"dpd_locale": loc}
	if changed && strings.TrimSpace(input) != "" {
		extras["language_normalized_from"] = strings.TrimSpace(input)
	}

	return domain.NewTrackingResponse(carrier, domain.Shipment{
		TrackingNumber: tracking,
		Carrier:        carrier,
		Status:         inferStatus(plc.StatusInfo, events),
		Events:         events,
		Extras:         extras,
	})
}

// inferStatus prefers the milestone flagged as current, falling back
// to the latest event's text.
func inferStatus(statusInfo []plcStatus, events []domain.TrackingEvent) domain.ShipmentStatus {
	for _, st := range statusInfo {
		if !st.IsCurrentStatus {
			continue
		}
		cur := strings.ToUpper(st.Status)
		switch {
		case strings.Contains(cur, "DELIVERED"):
			return domain.StatusDelivered
		case strings.Contains(cur, "OUT_FOR_DELIVERY"):
			return domain.StatusOutForDelivery
		case strings.Contains(cur, "ON_THE_ROAD"), strings.Contains(cur, "AT_DELIVERY_DEPOT"), strings.Contains(cur, "IN_TRANSIT"):
			return domain.StatusInTransit
		case strings.Contains(cur, "PICKUP"):
			return domain.StatusInformationReceived
		}
		return domain.StatusUnknown
	}
	if len(events) > 0 {
		return domain.StatusFromText(events[len(events)-1].Status)
	}
	return domain.StatusUnknown
}

// parseScanDate handles scan timestamps: zone-less ISO 8601, taken as
// UTC, with an RFC 3339 fallback.
func parseScanDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return ts, true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}

// parseMilestoneDate handles the "DD.MM.YYYY, HH:MM" format used by
// status milestones. DPD sends no timezone; values are taken as UTC.
func parseMilestoneDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"02.01.2006, 15:04", "02.01.2006 15:04"} {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
