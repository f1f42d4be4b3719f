// Package shipping covers the courier integration surface: shipment status
// vocabulary, rate zoning, the display-only charge estimator, and the
// courier webhook.
package shipping

import (
	"strings"

	"github.com/buyonegram/backend-bog/internal/order"
)

// Canonical shipment statuses stored on orders.
const (
	ShipmentPending         = "pending"
	ShipmentCreated         = "shipment_created"
	ShipmentPickupScheduled = "pickup_scheduled"
	ShipmentInTransit       = "in_transit"
	ShipmentOutForDelivery  = "out_for_delivery"
	ShipmentDelivered       = "delivered"
	ShipmentCancelled       = "cancelled"
	ShipmentRTO             = "rto"
	ShipmentFailed          = "failed"
)

// RTO sub-states reported by couriers before the shipment-level "rto"
// collapse.
const (
	rtoInitiated = "rto_initiated"
	rtoInTransit = "rto_in_transit"
	rtoDelivered = "rto_delivered"
)

// CanonicalStatus folds an arbitrary courier status string into the
// canonical shipment vocabulary. Empty input means the shipment has not
// been booked yet. Values no rule recognises pass through lowercased so
// new courier states surface in the data instead of being masked.
func CanonicalStatus(value string) string {
	raw := strings.ToLower(strings.TrimSpace(value))
	if raw == "" {
		return ShipmentPending
	}

	switch {
	case strings.Contains(raw, "pickup"):
		return ShipmentPickupScheduled
	case strings.Contains(raw, "out_for_delivery"), strings.Contains(raw, "out for delivery"), raw == "ofd":
		return ShipmentOutForDelivery
	case strings.Contains(raw, "transit"), raw == "it", strings.Contains(raw, "shipped"):
		return ShipmentInTransit
	case strings.Contains(raw, "deliver"):
		return ShipmentDelivered
	case strings.Contains(raw, "rto"):
		return ShipmentRTO
	case strings.Contains(raw, "cancel"):
		return ShipmentCancelled
	case strings.Contains(raw, "book"), strings.Contains(raw, "created"):
		return ShipmentCreated
	}

	switch NormalizeXpressbeesStatus(value) {
	case string(order.StatusDelivered):
		return ShipmentDelivered
	case string(order.StatusCancelled):
		return ShipmentCancelled
	case string(order.StatusInWarehouse):
		return ShipmentCreated
	case string(order.StatusShipped), string(order.StatusOutForDelivery):
		return ShipmentInTransit
	case rtoInitiated, rtoInTransit, rtoDelivered:
		return ShipmentRTO
	}

	return raw
}

// LegacyStatus maps a canonical shipment status back to the coarse legacy
// vocabulary older clients still read.
func LegacyStatus(canonical string) string {
	switch canonical {
	case ShipmentCreated, ShipmentPickupScheduled:
		return "booked"
	case ShipmentInTransit, ShipmentOutForDelivery:
		return "shipped"
	case ShipmentDelivered:
		return "delivered"
	case ShipmentCancelled:
		return "cancelled"
	case ShipmentRTO:
		return "rto_initiated"
	case ShipmentFailed:
		return "failed"
	default:
		return "pending"
	}
}

// NormalizeXpressbeesStatus resolves an Xpressbees status code or free-text
// label into an order-status-compatible value, or "" when unrecognised.
// Short codes are matched first, then fuzzy text rules.
func NormalizeXpressbeesStatus(status string) string {
	raw := strings.ToLower(strings.TrimSpace(status))
	if raw == "" {
		return ""
	}
	code := strings.ReplaceAll(strings.ReplaceAll(strings.ToUpper(raw), " ", ""), "_", "-")

	switch code {
	case "PP":
		return string(order.StatusInWarehouse)
	case "IT", "EX":
		return string(order.StatusShipped)
	case "OFD":
		return string(order.StatusOutForDelivery)
	case "DL":
		return string(order.StatusDelivered)
	case "LT", "DG", "RT":
		return rtoInitiated
	case "RT-IT", "RTIT", "RT-LT", "RTLT", "RT-DG", "RTDG":
		return rtoInTransit
	case "RT-DL", "RTDL":
		return rtoDelivered
	}

	switch {
	case strings.Contains(raw, "rto") && strings.Contains(raw, "deliver"):
		return rtoDelivered
	case strings.Contains(raw, "rto") && strings.Contains(raw, "transit"):
		return rtoInTransit
	case strings.Contains(raw, "rto") && (strings.Contains(raw, "init") || strings.Contains(raw, "pickup")):
		return rtoInitiated
	case strings.Contains(raw, "lost"), strings.Contains(raw, "damage"):
		return rtoInitiated
	case strings.Contains(raw, "exception"):
		return string(order.StatusShipped)
	case strings.Contains(raw, "out for delivery"), strings.Contains(raw, "out_for_delivery"), strings.Contains(raw, "ofd"):
		return string(order.StatusOutForDelivery)
	case strings.Contains(raw, "deliver"):
		return string(order.StatusDelivered)
	case strings.Contains(raw, "ship"), strings.Contains(raw, "transit"):
		return string(order.StatusShipped)
	case strings.Contains(raw, "book"):
		return string(order.StatusInWarehouse)
	case strings.Contains(raw, "cancel"):
		return string(order.StatusCancelled)
	}
	return ""
}

// OrderStatusForXpressbees maps an Xpressbees status onto the order
// lifecycle, collapsing RTO sub-states. Returns "" when unrecognised.
func OrderStatusForXpressbees(status string) order.Status {
	switch normalized := NormalizeXpressbeesStatus(status); normalized {
	case "":
		return ""
	case rtoDelivered:
		return order.StatusRTOCompleted
	case rtoInitiated, rtoInTransit:
		return order.StatusRTO
	default:
		return order.Status(normalized)
	}
}
