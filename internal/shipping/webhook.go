package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/buyonegram/backend-bog/internal/common"
	"github.com/buyonegram/backend-bog/internal/obs"
	"github.com/buyonegram/backend-bog/internal/order"
)

type replayStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Webhook handles courier callbacks and synchronises order shipment state.
type Webhook struct {
	Orders    order.Repository
	Replay    replayStore
	ReplayTTL time.Duration
}

type webhookPayload struct {
	OrderID    string     `json:"orderId"`
	AWB        string     `json:"awb"`
	Status     string     `json:"status"`
	Location   *string    `json:"location"`
	Remark     *string    `json:"remark"`
	OccurredAt *time.Time `json:"occurredAt"`
}

// Handle processes a courier status callback: replay protection on the raw
// payload, status normalization, order transition, tracking-event append.
func (h Webhook) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	if h.Replay == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "replay protection not configured", nil)
		return
	}
	ctx, span := otel.Tracer("shipping.Webhook").Start(r.Context(), "ShippingWebhook.Handle")
	defer span.End()
	r = r.WithContext(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		span.RecordError(err)
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unable to read payload", nil)
		return
	}
	courier := chi.URLParam(r, "courier")
	span.SetAttributes(attribute.String("shipping.webhook.courier", courier))
	courierLabel := normaliseLabel(courier)
	outcome := "error"
	defer func() {
		if obs.ShippingWebhookTotal != nil {
			obs.ShippingWebhookTotal.WithLabelValues(courierLabel, outcome).Inc()
		}
	}()

	key := fmt.Sprintf("shwh:%s:%s", courierLabel, common.Sha256Hex(string(body)))
	fresh, err := h.Replay.SetNX(r.Context(), key, "1", h.ReplayTTL).Result()
	if err != nil {
		span.RecordError(err)
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "replay protection failed", nil)
		return
	}
	if !fresh {
		span.AddEvent("shipping webhook replay prevented")
		outcome = "replay"
		common.JSONError(w, http.StatusConflict, "REPLAY", "duplicate webhook payload", nil)
		return
	}

	payload, err := decodeWebhookPayload(body, r)
	if err != nil {
		span.RecordError(err)
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	span.SetAttributes(attribute.String("shipping.webhook.order_id", payload.OrderID))

	canonical := CanonicalStatus(payload.Status)
	span.SetAttributes(attribute.String("shipping.webhook.status", canonical))

	doc, err := h.Orders.GetByID(r.Context(), payload.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			span.RecordError(err)
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		span.RecordError(err)
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}

	occurredAt := time.Now().UTC()
	if payload.OccurredAt != nil {
		occurredAt = payload.OccurredAt.UTC()
	}

	doc.ShipmentStatus = canonical
	if awb := strings.TrimSpace(payload.AWB); awb != "" {
		doc.AWB = awb
	}
	event := order.TrackingEvent{
		Status:     canonical,
		RawStatus:  payload.Status,
		OccurredAt: occurredAt,
	}
	if payload.Location != nil {
		event.Location = *payload.Location
	}
	if payload.Remark != nil {
		event.Remark = *payload.Remark
	}
	doc.TrackingEvents = append(doc.TrackingEvents, event)

	var transition order.TransitionResult
	if next := OrderStatusForXpressbees(payload.Status); next != "" {
		transition = order.ApplyTransition(&doc, next, "COURIER_WEBHOOK", occurredAt)
		if obs.OrderTransitionTotal != nil {
			result := transition.Reason
			if transition.Updated {
				result = "updated"
			}
			obs.OrderTransitionTotal.WithLabelValues("courier_webhook", result).Inc()
		}
	}

	if err := h.Orders.Update(r.Context(), doc); err != nil {
		span.RecordError(err)
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to record shipment event", nil)
		return
	}

	outcome = "success"
	common.JSONData(w, http.StatusOK, map[string]any{
		"orderId":        doc.ID,
		"shipmentStatus": canonical,
		"legacyStatus":   LegacyStatus(canonical),
		"orderStatus":    doc.OrderStatus,
		"statusUpdated":  transition.Updated,
		"reason":         transition.Reason,
	})
}

func decodeWebhookPayload(body []byte, r *http.Request) (webhookPayload, error) {
	var payload webhookPayload
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			payload = webhookPayload{}
		}
	}
	if payload.OrderID == "" {
		payload.OrderID = r.URL.Query().Get("orderId")
	}
	if payload.AWB == "" {
		payload.AWB = r.URL.Query().Get("awb")
	}
	if payload.Status == "" {
		payload.Status = r.URL.Query().Get("status")
	}
	if payload.OccurredAt == nil {
		if ts := strings.TrimSpace(r.URL.Query().Get("occurredAt")); ts != "" {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				payload.OccurredAt = &parsed
			}
		}
	}
	if payload.OrderID == "" {
		return webhookPayload{}, errors.New("orderId is required")
	}
	if payload.Status == "" {
		return webhookPayload{}, errors.New("status is required")
	}
	return payload, nil
}

func normaliseLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
