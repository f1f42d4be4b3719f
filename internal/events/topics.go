package events

// Topics emitted by the order surface.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicShipmentUpdated    = "shipment.updated"
)
