package order_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/buyonegram/backend-bog/internal/order"
)

func TestNormalizeStatusAliases(t *testing.T) {
	require.Equal(t, order.StatusAccepted, order.NormalizeStatus("confirmed"))
	require.Equal(t, order.StatusPaymentPending, order.NormalizeStatus("payment_pending"))
	require.Equal(t, order.StatusInWarehouse, order.NormalizeStatus("In-Warehouse"))
	require.Equal(t, order.StatusOutForDelivery, order.NormalizeStatus("Out For Delivery"))
	require.Equal(t, order.Status(""), order.NormalizeStatus("  "))
	require.Equal(t, order.Status("mystery"), order.NormalizeStatus("MYSTERY"))
}

func TestCanTransition(t *testing.T) {
	require.True(t, order.CanTransition(order.StatusPending, order.StatusAccepted))
	require.True(t, order.CanTransition(order.StatusShipped, order.StatusRTO))
	require.True(t, order.CanTransition(order.StatusDelivered, order.StatusCompleted))
	require.True(t, order.CanTransition(order.StatusShipped, order.StatusShipped))
	require.False(t, order.CanTransition(order.StatusDelivered, order.StatusShipped))
	require.False(t, order.CanTransition(order.StatusCancelled, order.StatusAccepted))
	require.False(t, order.CanTransition(order.StatusPending, ""))
	// Empty current status is treated as pending.
	require.True(t, order.CanTransition("", order.StatusCancelled))
}

func TestIsFinalStatus(t *testing.T) {
	require.True(t, order.IsFinalStatus(order.StatusCompleted))
	require.True(t, order.IsFinalStatus(order.StatusCancelled))
	require.True(t, order.IsFinalStatus(order.StatusRTOCompleted))
	require.True(t, order.IsFinalStatus(order.StatusDelivered))
	require.False(t, order.IsFinalStatus(order.StatusShipped))
}

func TestEnsureTimelineSeedsCurrentStatus(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := &order.Document{OrderStatus: order.StatusAccepted, CreatedAt: created}
	require.True(t, order.EnsureTimeline(doc, "SYSTEM_INIT", time.Now()))
	require.Len(t, doc.StatusTimeline, 1)
	require.Equal(t, order.StatusAccepted, doc.StatusTimeline[0].Status)
	require.Equal(t, created, doc.StatusTimeline[0].Timestamp)
	// Second call is a no-op.
	require.False(t, order.EnsureTimeline(doc, "SYSTEM_INIT", time.Now()))
}

func TestApplyTransition(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("valid move appends timeline", func(t *testing.T) {
		doc := &order.Document{OrderStatus: order.StatusPending}
		res := order.ApplyTransition(doc, order.StatusAccepted, "ADMIN", now)
		require.True(t, res.Updated)
		require.Equal(t, order.StatusPending, res.PreviousStatus)
		require.Equal(t, order.StatusAccepted, doc.OrderStatus)
		require.Len(t, doc.StatusTimeline, 2)
	})

	t.Run("duplicate timeline status rejected", func(t *testing.T) {
		doc := &order.Document{
			OrderStatus: order.StatusShipped,
			StatusTimeline: []order.TimelineEntry{
				{Status: order.StatusPending, Timestamp: now},
				{Status: order.StatusShipped, Timestamp: now},
				{Status: order.StatusOutForDelivery, Timestamp: now},
			},
		}
		res := order.ApplyTransition(doc, order.StatusOutForDelivery, "WEBHOOK", now)
		require.False(t, res.Updated)
		require.Equal(t, order.ReasonDuplicateStatus, res.Reason)
	})

	t.Run("final state blocks transitions", func(t *testing.T) {
		doc := &order.Document{OrderStatus: order.StatusCancelled}
		res := order.ApplyTransition(doc, order.StatusShipped, "WEBHOOK", now)
		require.False(t, res.Updated)
		require.Equal(t, order.ReasonFinalState, res.Reason)
	})

	t.Run("disallowed transition rejected", func(t *testing.T) {
		doc := &order.Document{OrderStatus: order.StatusPending}
		res := order.ApplyTransition(doc, order.StatusCompleted, "ADMIN", now)
		require.False(t, res.Updated)
		require.Equal(t, order.ReasonInvalidTransition, res.Reason)
	})

	t.Run("invalid target rejected", func(t *testing.T) {
		doc := &order.Document{OrderStatus: order.StatusPending}
		res := order.ApplyTransition(doc, "", "ADMIN", now)
		require.False(t, res.Updated)
		require.Equal(t, order.ReasonInvalidStatus, res.Reason)
	})
}
