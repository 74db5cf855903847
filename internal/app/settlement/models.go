package settlement

import (
	"time"

	"settlement/internal/domain"
)

type CreateChargeRequest struct {
	UserID       string `json:"user_id"`
	Amount       int64  `json:"amount"`
	PointsAmount int64  `json:"points_amount"`
}

type CreateTicketRequest struct {
	UserID          string `json:"user_id"`
	TicketProductID string `json:"ticket_product_id"`
	Quantity        int    `json:"quantity"`
}

type CreateOrderResponse struct {
	PaymentURL string `json:"payment_url"`
	OrderID    string `json:"order_id"`
}

type OrderResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	OrderType      string     `json:"order_type"`
	Status         string     `json:"status"`
	Amount         int64      `json:"amount"`
	PointsAmount   *int64     `json:"points_amount,omitempty"`
	ProductID      *string    `json:"ticket_product_id,omitempty"`
	TicketQuantity *int       `json:"ticket_quantity,omitempty"`
	GatewayOrderID string     `json:"gateway_order_id"`
	ErrorCode      string     `json:"error_code,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func mapOrderToResponse(order *domain.PaymentOrder) *OrderResponse {
	return &OrderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		OrderType:      string(order.OrderType),
		Status:         string(order.Status),
		Amount:         order.Amount,
		PointsAmount:   order.PointsAmount,
		ProductID:      order.ProductID,
		TicketQuantity: order.TicketQuantity,
		GatewayOrderID: order.GatewayOrderID,
		ErrorCode:      order.ErrorCode,
		ErrorMessage:   order.ErrorMessage,
		CompletedAt:    order.CompletedAt,
		CreatedAt:      order.CreatedAt,
	}
}

type PointTransactionResponse struct {
	ID           string    `json:"id"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	Type         string    `json:"type"`
	ReferenceID  string    `json:"reference_id"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

type PointHistoryResponse struct {
	UserID       string                      `json:"user_id"`
	Balance      int64                       `json:"balance"`
	Transactions []*PointTransactionResponse `json:"transactions"`
}

func mapTransactionToResponse(txn *domain.PointTransaction) *PointTransactionResponse {
	return &PointTransactionResponse{
		ID:           txn.ID,
		Amount:       txn.Amount,
		BalanceAfter: txn.BalanceAfter,
		Type:         string(txn.Type),
		ReferenceID:  txn.ReferenceID,
		Description:  txn.Description,
		CreatedAt:    txn.CreatedAt,
	}
}

// ReconcileOutcome classifies a fully handled notification.
type ReconcileOutcome string

const (
	// ReconcileCompleted: the order transitioned to Completed and its
	// fulfillment was applied.
	ReconcileCompleted ReconcileOutcome = "completed"
	// ReconcileFailed: the gateway declared the payment failed; the order
	// transitioned to Failed, no fulfillment ran.
	ReconcileFailed ReconcileOutcome = "failed"
	// ReconcileAlreadyProcessed: the order was already terminal; duplicate
	// delivery, nothing changed.
	ReconcileAlreadyProcessed ReconcileOutcome = "already_processed"
)

type ReconcileResult struct {
	Outcome        ReconcileOutcome
	OrderID        string
	GatewayOrderID string
}
