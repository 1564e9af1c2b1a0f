package messaging

// Kafka topics. The order-created topic is keyed by order id so that all
// events for one order land on the same partition.
const (
	TopicOrderCreated = "storefront.order.created"

	GroupNotificationWorker = "notification-worker"
)
