// Package tasks defines the asynq task types shared by the API (producer)
// and the worker (consumer).
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/buyonegram/backend-bog/internal/order"
	"github.com/buyonegram/backend-bog/internal/shipping"
)

// Task type names.
const (
	TypeOrderCreated = "order:created"
	TypeShipmentSync = "shipment:sync"
)

// OrderCreatedPayload identifies the order to post-process.
type OrderCreatedPayload struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

// NewOrderCreatedTask builds the post-checkout task for an order.
func NewOrderCreatedTask(orderID, userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(OrderCreatedPayload{OrderID: orderID, UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOrderCreated, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// ShipmentSyncPayload identifies the order whose courier tracking should be
// refreshed.
type ShipmentSyncPayload struct {
	OrderID string `json:"orderId"`
}

// NewShipmentSyncTask builds a tracking refresh task for an order.
func NewShipmentSyncTask(orderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ShipmentSyncPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeShipmentSync, payload, asynq.MaxRetry(10), asynq.Timeout(2*time.Minute)), nil
}

// Handlers processes background tasks against the order store.
type Handlers struct {
	Orders order.Repository
	Log    zerolog.Logger
}

// HandleOrderCreated seeds the order timeline after checkout so every order
// carries an initial entry even when created by legacy clients.
func (h Handlers) HandleOrderCreated(ctx context.Context, t *asynq.Task) error {
	var payload OrderCreatedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", TypeOrderCreated, err)
	}
	doc, err := h.Orders.GetByID(ctx, payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", payload.OrderID, err)
	}
	if order.EnsureTimeline(&doc, "SYSTEM_INIT", time.Now().UTC()) {
		if err := h.Orders.Update(ctx, doc); err != nil {
			return fmt.Errorf("seed timeline for order %s: %w", payload.OrderID, err)
		}
	}
	h.Log.Info().
		Str("order_id", doc.ID).
		Str("user_id", payload.UserID).
		Str("display_order_id", order.ResolveDisplayID(doc)).
		Msg("order created")
	return nil
}

// HandleShipmentSync re-normalizes the stored shipment status. Orders in a
// final state are skipped; the courier poller enqueues these periodically
// for every undelivered shipment.
func (h Handlers) HandleShipmentSync(ctx context.Context, t *asynq.Task) error {
	var payload ShipmentSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", TypeShipmentSync, err)
	}
	doc, err := h.Orders.GetByID(ctx, payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", payload.OrderID, err)
	}
	if order.IsFinalStatus(doc.OrderStatus) {
		return nil
	}
	canonical := shipping.CanonicalStatus(doc.ShipmentStatus)
	if canonical == doc.ShipmentStatus {
		return nil
	}
	doc.ShipmentStatus = canonical
	if err := h.Orders.Update(ctx, doc); err != nil {
		return fmt.Errorf("update shipment status for order %s: %w", payload.OrderID, err)
	}
	h.Log.Info().
		Str("order_id", doc.ID).
		Str("shipment_status", canonical).
		Msg("shipment status normalized")
	return nil
}

// Mux returns the asynq mux with all handlers registered.
func (h Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOrderCreated, h.HandleOrderCreated)
	mux.HandleFunc(TypeShipmentSync, h.HandleShipmentSync)
	return mux
}
