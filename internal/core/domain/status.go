package domain

import "strings"

// StatusFromText infers a unified status from a free-text event
// description. Providers localize their texts, so Spanish keywords are
// matched alongside English ones. "Available for pickup" phrases are
// checked before the generic "pickup" used for acceptance scans.
func StatusFromText(text string) ShipmentStatus {
	if text == "" {
		return StatusUnknown
	}
	t := strings.ToLower(text)

	for _, kw := range []string{
		"available for pickup", "ready for pickup", "disponible para recoger",
		"para recoger", "pickup point", "collection point",
	} {
		if strings.Contains(t, kw) {
			return StatusAvailableForPickup
		}
	}
	if strings.Contains(t, "delivered") || strings.Contains(t, "entregado") {
		return StatusDelivered
	}
	if strings.Contains(t, "out for delivery") || strings.Contains(t, "in delivery") || strings.Contains(t, "reparto") {
		return StatusOutForDelivery
	}
	for _, kw := range []string{"in transit", "transit", "depot", "sorted", "on the way"} {
		if strings.Contains(t, kw) {
			return StatusInTransit
		}
	}
	for _, kw := range []string{"pickup", "accepted", "admitido", "pre-registered", "pre registered"} {
		if strings.Contains(t, kw) {
			return StatusInformationReceived
		}
	}
	for _, kw := range []string{"exception", "failed", "undeliverable"} {
		if strings.Contains(t, kw) {
			return StatusException
		}
	}
	return StatusUnknown
}
