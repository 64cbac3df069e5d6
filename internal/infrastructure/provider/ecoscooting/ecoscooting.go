// Package ecoscooting implements the tracking adapter for Ecoscooting
// deliveries, served through the Cainiao logistics gateway. The
// gateway takes a form-encoded envelope whose logistics_interface
// field carries the actual JSON request.
package ecoscooting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/infrastructure/httpclient"
	"github.com/parceltrack/tracking-system/internal/pkg/locale"
)

const (
	carrier        = "ecoscooting"
	defaultBaseURL = "https://de-link.cainiao.com/gateway/link.do"

	msgType            = "CN_OVERSEA_LOGISTICS_INQUIRY_TRACKING"
	logisticProviderID = "DISTRIBUTOR_30250031"
	toCode             = "CNL_EU"
	// The gateway accepts any digest value for this inquiry type.
	dataDigest = "suibianxie"
)

// Adapter translates Cainiao gateway responses into the unified model.
type Adapter struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

func New(client *http.Client, log zerolog.Logger) *Adapter {
	return &Adapter{client: client, baseURL: defaultBaseURL, log: log}
}

func (a *Adapter) Carrier() string { return carrier }

// TrackingURL returns the public Ecoscooting tracker link.
func (a *Adapter) TrackingURL(code, _ string) string {
	return "https://ecoscooting.com/tracking?id=" + url.QueryEscape(code)
}

// --- Wire shapes (gateway-owned contract) ---

type inquiryRequest struct {
	MailNo string `json:"mailNo"`
	Locale string `json:"locale"`
	Role   string `json:"role"`
}

type gatewayResponse struct {
	Success      string           `json:"success"`
	ErrorCode    string           `json:"errorCode"`
	ErrorMsg     string           `json:"errorMsg"`
	WaybillNo    string           `json:"waybillNo"`
	Statuses     []gatewayStatus  `json:"statuses"`
	ReceiverInfo *gatewayReceiver `json:"receiverInfo"`
}

type gatewayStatus struct {
	StatusGroup string `json:"statusGroup"` // created|in_transit|delivering|ready_for_collection|delivered
	StatusDesc  string `json:"statusDesc"`
	Datetime    string `json:"datetime"` // "2025-09-08 11:48:03 UTC+1"
	City        string `json:"city"`
	Country     string `json:"country"`
}

type gatewayReceiver struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// statusGroupMap translates gateway status groups onto the closed set.
var statusGroupMap = map[string]domain.ShipmentStatus{
	"created":              domain.StatusInformationReceived,
	"in_transit":           domain.StatusInTransit,
	"delivering":           domain.StatusOutForDelivery,
	"ready_for_collection": domain.StatusAvailableForPickup,
	"delivered":            domain.StatusDelivered,
	"exception":            domain.StatusException,
	"returned":             domain.StatusReturned,
}

// Track posts the inquiry envelope. The gateway always answers 200;
// success=false with an error payload stands for "no shipment found".
func (a *Adapter) Track(ctx context.Context, code, language string) (*domain.TrackingResponse, error) {
	loc, _ := locale.Normalize(language, carrier)

	payload, err := json.Marshal(inquiryRequest{MailNo: code, Locale: loc, Role: "endUser"})
	if err != nil {
		return nil, &domain.ParseError{Carrier: carrier, Err: err}
	}
	form := url.Values{
		"msg_type":             {msgType},
		"logistic_provider_id": {logisticProviderID},
		"data_digest":          {dataDigest},
		"to_code":              {toCode},
		"logistics_interface":  {string(payload)},
	}

	resp, err := httpclient.PostForm(ctx, a.client, carrier, a.baseURL, form, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		httpclient.Drain(resp)
		return nil, &domain.AuthError{Carrier: carrier, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, httpclient.UnexpectedStatus(carrier, resp)
	}

	var raw gatewayResponse
	if err := httpclient.DecodeJSON(carrier, resp, &raw); err != nil {
		return nil, err
	}
	if raw.Success != "true" {
		a.log.Debug().
			Str("error_code", raw.ErrorCode).
			Str("error_msg", raw.ErrorMsg).
			Msg("ecoscooting: gateway reported no result")
		return domain.NewTrackingResponse(carrier), nil
	}
	return a.normalize(&raw, code), nil
}

func (a *Adapter) normalize(raw *gatewayResponse, code string) *domain.TrackingResponse {
	events := make([]domain.TrackingEvent, 0, len(raw.Statuses))
	for _, st := range raw.Statuses {
		ts, ok := parseDatetime(st.Datetime)
		if !ok {
			a.log.Debug().Str("datetime", st.Datetime).Msg("ecoscooting: dropping event with unparseable timestamp")
			continue
		}
		desc := st.StatusDesc
		if desc == "" {
			desc = st.StatusGroup
		}
		events = append(events, domain.TrackingEvent{
			Timestamp:  ts,
			Status:     desc,
			Location:   composeLocation(st.City, st.Country),
			Details:    desc,
			StatusCode: st.StatusGroup,
		})
	}
	domain.SortEventsChronologically(events)

	// Statuses arrive newest first; the first entry is the current one.
	status := domain.StatusUnknown
	if len(raw.Statuses) > 0 {
		if mapped, ok := statusGroupMap[raw.Statuses[0].StatusGroup]; ok {
			status = mapped
		} else {
			status = domain.StatusFromText(raw.Statuses[0].StatusDesc)
		}
	}

	var actual *time.Time
	if status == domain.StatusDelivered && len(events) > 0 {
		last := events[len(events)-1].Timestamp
		actual = &last
	}

	tracking := raw.WaybillNo
	if tracking == "" {
		tracking = code
	}

	var destination string
	if raw.ReceiverInfo != nil {
		destination = composeLocation(raw.ReceiverInfo.City, raw.ReceiverInfo.Country)
	}

	return domain.NewTrackingResponse(carrier, domain.Shipment{
		TrackingNumber: tracking,
		Carrier:        carrier,
		Status:         status,
		Events:         events,
		Destination:    destination,
		ActualDelivery: actual,
	})
}

func composeLocation(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case city != "":
		return city
	default:
		return country
	}
}

// datetimeRe matches "2025-09-08 11:48:03 UTC+1" style values with an
// optional whole-hour offset.
var datetimeRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) UTC([+-]\d{1,2})?$`)

// parseDatetime handles the gateway's "UTC+N" suffix, which the stdlib
// layouts cannot express.
func parseDatetime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if m := datetimeRe.FindStringSubmatch(s); m != nil {
		offset := 0
		if m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil {
				offset = n
			}
		}
		zone := time.FixedZone("UTC", offset*3600)
		if ts, err := time.ParseInLocation("2006-01-02 15:04:05", m[1], zone); err == nil {
			return ts.UTC(), true
		}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
