package domain

import "time"

// SettlementEvent is published to Kafka after an order reaches a terminal
// state, via the transactional outbox.
type SettlementEvent struct {
	OrderID        string    `json:"order_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	UserID         string    `json:"user_id"`
	OrderType      string    `json:"order_type"`
	Status         string    `json:"status"`
	Amount         int64     `json:"amount"`
	ErrorCode      string    `json:"error_code,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
