package domain

import "time"

// OrderCreatedEvent is published to Kafka after the conversion transaction
// commits, never before. Delivery is at-least-once best effort.
type OrderCreatedEvent struct {
	OrderID    string      `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	Items      []OrderItem `json:"items"`
	PlacedAt   time.Time   `json:"placed_at"`
}
