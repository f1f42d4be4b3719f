package order

import (
	"strings"
	"time"
)

// Status is the order lifecycle state.
type Status string

// Order lifecycle vocabulary. "confirmed" survives only as a legacy alias
// for accepted.
const (
	StatusPending        Status = "pending"
	StatusPaymentPending Status = "pending_payment"
	StatusAccepted       Status = "accepted"
	StatusInWarehouse    Status = "in_warehouse"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusRTO            Status = "rto"
	StatusRTOCompleted   Status = "rto_completed"
)

var statusAliases = map[string]Status{
	"confirmed":        StatusAccepted,
	"payment_pending":  StatusPaymentPending,
	"pending_payment":  StatusPaymentPending,
	"inwarehouse":      StatusInWarehouse,
	"in-warehouse":     StatusInWarehouse,
	"out_for_delivery": StatusOutForDelivery,
	"out-for-delivery": StatusOutForDelivery,
	"outfordelivery":   StatusOutForDelivery,
}

var statusTransitions = map[Status][]Status{
	StatusPending:        {StatusPaymentPending, StatusAccepted, StatusInWarehouse, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled},
	StatusPaymentPending: {StatusAccepted, StatusInWarehouse, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled},
	StatusAccepted:       {StatusInWarehouse, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled},
	StatusInWarehouse:    {StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled},
	StatusShipped:        {StatusOutForDelivery, StatusDelivered, StatusRTO, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusRTO, StatusCancelled},
	StatusDelivered:      {StatusCompleted},
	StatusCompleted:      {},
	StatusCancelled:      {},
	StatusRTO:            {StatusRTOCompleted},
	StatusRTOCompleted:   {},
}

var finalStatuses = map[Status]struct{}{
	StatusCompleted:    {},
	StatusDelivered:    {},
	StatusCancelled:    {},
	StatusRTOCompleted: {},
}

// NormalizeStatus lowercases, underscores, and resolves legacy aliases.
// Empty input yields the empty status.
func NormalizeStatus(raw string) Status {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	if trimmed == "" {
		return ""
	}
	normalized := strings.Join(strings.Fields(trimmed), "_")
	if alias, ok := statusAliases[normalized]; ok {
		return alias
	}
	return Status(normalized)
}

// IsFinalStatus reports whether the status terminates the lifecycle.
func IsFinalStatus(s Status) bool {
	_, ok := finalStatuses[NormalizeStatus(string(s))]
	return ok
}

// CanTransition reports whether from -> to is an allowed lifecycle move.
// Self transitions are permitted.
func CanTransition(from, to Status) bool {
	fromStatus := NormalizeStatus(string(from))
	if fromStatus == "" {
		fromStatus = StatusPending
	}
	toStatus := NormalizeStatus(string(to))
	if toStatus == "" {
		return false
	}
	if fromStatus == toStatus {
		return true
	}
	for _, allowed := range statusTransitions[fromStatus] {
		if allowed == toStatus {
			return true
		}
	}
	return false
}

// TransitionResult reports what a status transition attempt did.
type TransitionResult struct {
	Updated             bool
	Reason              string
	PreviousStatus      Status
	NextStatus          Status
	TimelineInitialized bool
}

// Transition reasons.
const (
	ReasonInvalidStatus     = "invalid_status"
	ReasonDuplicateStatus   = "duplicate_status"
	ReasonSameStatus        = "same_status"
	ReasonFinalState        = "final_state"
	ReasonInvalidTransition = "invalid_transition"
)

// EnsureTimeline seeds the status timeline with the current status when it
// is empty. It reports whether an entry was added.
func EnsureTimeline(doc *Document, source string, now time.Time) bool {
	if doc == nil || len(doc.StatusTimeline) > 0 {
		return false
	}
	current := NormalizeStatus(string(doc.OrderStatus))
	if current == "" {
		current = StatusPending
	}
	at := doc.CreatedAt
	if at.IsZero() {
		at = now
	}
	doc.StatusTimeline = append(doc.StatusTimeline, TimelineEntry{
		Status:    current,
		Source:    source,
		Timestamp: at,
	})
	return true
}

func hasTimelineStatus(doc Document, target Status) bool {
	for _, entry := range doc.StatusTimeline {
		if NormalizeStatus(string(entry.Status)) == target {
			return true
		}
	}
	return false
}

// ApplyTransition moves the order to nextStatus when the state machine
// allows it, appending to the timeline. Guards: duplicate timeline entry,
// same status, final state, disallowed transition.
func ApplyTransition(doc *Document, nextStatus Status, source string, at time.Time) TransitionResult {
	if doc == nil {
		return TransitionResult{Reason: "missing_order"}
	}
	current := NormalizeStatus(string(doc.OrderStatus))
	if current == "" {
		current = StatusPending
	}
	target := NormalizeStatus(string(nextStatus))
	if target == "" {
		return TransitionResult{Reason: ReasonInvalidStatus}
	}
	if at.IsZero() {
		at = time.Now()
	}
	initialized := EnsureTimeline(doc, "SYSTEM_INIT", at)

	if hasTimelineStatus(*doc, target) {
		return TransitionResult{Reason: ReasonDuplicateStatus, TimelineInitialized: initialized}
	}
	if current == target {
		return TransitionResult{Reason: ReasonSameStatus, TimelineInitialized: initialized}
	}
	if IsFinalStatus(current) {
		return TransitionResult{Reason: ReasonFinalState, TimelineInitialized: initialized}
	}
	if !CanTransition(current, target) {
		return TransitionResult{Reason: ReasonInvalidTransition, TimelineInitialized: initialized}
	}

	doc.OrderStatus = target
	doc.StatusTimeline = append(doc.StatusTimeline, TimelineEntry{
		Status:    target,
		Source:    source,
		Timestamp: at,
	})
	return TransitionResult{
		Updated:             true,
		PreviousStatus:      current,
		NextStatus:          target,
		TimelineInitialized: initialized,
	}
}
