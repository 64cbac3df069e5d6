package domain

import (
	"sort"
	"time"
)

// ShipmentStatus is the carrier-agnostic lifecycle state of a shipment.
// Every adapter must map its provider vocabulary onto this closed set;
// anything it cannot map becomes StatusUnknown, never an error.
type ShipmentStatus string

const (
	StatusUnknown             ShipmentStatus = "unknown"
	StatusInformationReceived ShipmentStatus = "information_received"
	StatusInTransit           ShipmentStatus = "in_transit"
	StatusOutForDelivery      ShipmentStatus = "out_for_delivery"
	StatusAvailableForPickup  ShipmentStatus = "available_for_pickup"
	StatusDelivered           ShipmentStatus = "delivered"
	StatusException           ShipmentStatus = "exception"
	StatusReturned            ShipmentStatus = "returned"
	StatusCancelled           ShipmentStatus = "cancelled"
)

// Valid reports whether s is a member of the closed status set.
func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusUnknown, StatusInformationReceived, StatusInTransit,
		StatusOutForDelivery, StatusAvailableForPickup, StatusDelivered,
		StatusException, StatusReturned, StatusCancelled:
		return true
	}
	return false
}

// TrackingEvent is a single scan or milestone in a shipment's journey.
// Timestamp is always an absolute point in time in UTC, never a raw
// provider string.
type TrackingEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
	Location   string    `json:"location,omitempty"`
	Details    string    `json:"details,omitempty"`
	StatusCode string    `json:"status_code,omitempty"`
}

// Shipment is one tracked parcel as reported by a single carrier.
type Shipment struct {
	TrackingNumber    string          `json:"tracking_number"`
	Carrier           string          `json:"carrier"`
	Status            ShipmentStatus  `json:"status"`
	Events            []TrackingEvent `json:"events"`
	ServiceType       string          `json:"service_type,omitempty"`
	Origin            string          `json:"origin,omitempty"`
	Destination       string          `json:"destination,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time      `json:"actual_delivery,omitempty"`
	// Extras carries provider-specific side-channel data that has no
	// place in the unified fields (e.g. the locale DPD actually used).
	Extras map[string]any `json:"extras,omitempty"`
}

// TrackingResponse is the unified result of one point-in-time query
// against a single provider. Shipments is never nil: an empty slice
// means "no shipment found", which is not an error.
type TrackingResponse struct {
	Provider       string     `json:"provider"`
	QueryTimestamp time.Time  `json:"query_timestamp"`
	Shipments      []Shipment `json:"shipments"`
}

// NewTrackingResponse builds a response stamped with the current UTC
// time. Callers pass zero shipments for a "not found" result.
func NewTrackingResponse(provider string, shipments ...Shipment) *TrackingResponse {
	if shipments == nil {
		shipments = []Shipment{}
	}
	return &TrackingResponse{
		Provider:       provider,
		QueryTimestamp: time.Now().UTC(),
		Shipments:      shipments,
	}
}

// HasShipments reports whether the query matched at least one shipment.
func (r *TrackingResponse) HasShipments() bool {
	return len(r.Shipments) > 0
}

// PrimaryShipment returns the first shipment, or nil when none matched.
func (r *TrackingResponse) PrimaryShipment() *Shipment {
	if len(r.Shipments) == 0 {
		return nil
	}
	return &r.Shipments[0]
}

// SortEventsChronologically orders events oldest-first. Adapters call
// this after normalization so consumers can rely on event order.
func SortEventsChronologically(events []TrackingEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}
