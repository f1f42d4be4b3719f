package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/buyonegram/backend-bog/internal/order"
)

type fakeRepo struct {
	orders map[string]order.Document
}

func (f *fakeRepo) Insert(_ context.Context, doc order.Document) (order.Document, error) {
	f.orders[doc.ID] = doc
	return doc, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (order.Document, error) {
	doc, ok := f.orders[id]
	if !ok {
		return order.Document{}, order.ErrNotFound
	}
	return doc, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, _ string, _, _ int) ([]order.Document, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Update(_ context.Context, doc order.Document) error {
	f.orders[doc.ID] = doc
	return nil
}

func TestHandleOrderCreatedSeedsTimeline(t *testing.T) {
	repo := &fakeRepo{orders: map[string]order.Document{
		"ord-1": {ID: "ord-1", OrderStatus: order.StatusPending, CreatedAt: time.Now().UTC()},
	}}
	h := Handlers{Orders: repo, Log: zerolog.Nop()}

	task, err := NewOrderCreatedTask("ord-1", "user-1")
	require.NoError(t, err)
	require.NoError(t, h.HandleOrderCreated(context.Background(), task))

	doc := repo.orders["ord-1"]
	require.Len(t, doc.StatusTimeline, 1)
	require.Equal(t, order.StatusPending, doc.StatusTimeline[0].Status)
}

func TestHandleOrderCreatedMissingOrder(t *testing.T) {
	h := Handlers{Orders: &fakeRepo{orders: map[string]order.Document{}}, Log: zerolog.Nop()}

	task, err := NewOrderCreatedTask("missing", "user-1")
	require.NoError(t, err)
	require.Error(t, h.HandleOrderCreated(context.Background(), task))
}

func TestHandleShipmentSyncNormalizesLegacyValue(t *testing.T) {
	repo := &fakeRepo{orders: map[string]order.Document{
		"ord-1": {ID: "ord-1", OrderStatus: order.StatusShipped, ShipmentStatus: "booked"},
	}}
	h := Handlers{Orders: repo, Log: zerolog.Nop()}

	task, err := NewShipmentSyncTask("ord-1")
	require.NoError(t, err)
	require.NoError(t, h.HandleShipmentSync(context.Background(), task))

	require.Equal(t, "shipment_created", repo.orders["ord-1"].ShipmentStatus)
}

func TestHandleShipmentSyncSkipsFinalOrders(t *testing.T) {
	repo := &fakeRepo{orders: map[string]order.Document{
		"ord-1": {ID: "ord-1", OrderStatus: order.StatusDelivered, ShipmentStatus: "booked"},
	}}
	h := Handlers{Orders: repo, Log: zerolog.Nop()}

	task, err := NewShipmentSyncTask("ord-1")
	require.NoError(t, err)
	require.NoError(t, h.HandleShipmentSync(context.Background(), task))

	require.Equal(t, "booked", repo.orders["ord-1"].ShipmentStatus)
}
