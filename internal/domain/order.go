package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOrderNotFound         = errors.New("payment order not found")
	ErrInvalidOrder          = errors.New("invalid payment order data")
	ErrDuplicateGatewayOrder = errors.New("gateway order id already exists")
	ErrTicketProductNotFound = errors.New("ticket product not found")
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

type OrderType string

const (
	OrderTypePointCharge    OrderType = "point_charge"
	OrderTypeTicketPurchase OrderType = "ticket_purchase"
)

const (
	// MaxTicketQuantity bounds a single ticket purchase order.
	MaxTicketQuantity = 10

	// JobCdCapture is the gateway job code stored on every order; the shop
	// is configured for immediate capture.
	JobCdCapture = "CAPTURE"
)

// Fulfillment is the closed set of order payloads. Exactly one variant is
// attached to an order, matching its OrderType.
type Fulfillment interface {
	OrderType() OrderType
}

// PointCharge credits the user's point balance on completion.
type PointCharge struct {
	Points int64
}

func (PointCharge) OrderType() OrderType { return OrderTypePointCharge }

// TicketPurchase issues Quantity tickets of one product on completion.
type TicketPurchase struct {
	ProductID string
	Quantity  int
}

func (TicketPurchase) OrderType() OrderType { return OrderTypeTicketPurchase }

// GatewayEcho carries the transaction fields the gateway reports back in
// the result notification. Stored verbatim for the audit trail.
type GatewayEcho struct {
	AccessID   string
	AccessPass string
	Forward    string
	Approve    string
	TranID     string
	TranDate   string
	Method     string
}

// PaymentOrder is the unit of settlement. It is created Pending by the
// request-side API, transitioned exactly once by the webhook reconcile, and
// never deleted.
type PaymentOrder struct {
	ID             string
	UserID         string
	OrderType      OrderType
	Status         OrderStatus
	Amount         int64
	PointsAmount   *int64
	ProductID      *string
	TicketQuantity *int
	GatewayOrderID string
	JobCd          string
	Echo           GatewayEcho
	ErrorCode      string
	ErrorMessage   string
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewChargeOrder builds a pending point-charge order. The amount is the
// currency price fixed at creation; points is the credit applied on
// completion.
func NewChargeOrder(id, userID, gatewayOrderID string, amount, points int64) (*PaymentOrder, error) {
	if id == "" || userID == "" || gatewayOrderID == "" {
		return nil, fmt.Errorf("%w: missing identifier", ErrInvalidOrder)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidOrder)
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: points amount must be positive", ErrInvalidOrder)
	}
	now := time.Now()
	return &PaymentOrder{
		ID:             id,
		UserID:         userID,
		OrderType:      OrderTypePointCharge,
		Status:         OrderStatusPending,
		Amount:         amount,
		PointsAmount:   &points,
		GatewayOrderID: gatewayOrderID,
		JobCd:          JobCdCapture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// NewTicketOrder builds a pending ticket-purchase order. The amount must be
// priced by the caller from the product catalog, never from client input.
func NewTicketOrder(id, userID, gatewayOrderID, productID string, amount int64, quantity int) (*PaymentOrder, error) {
	if id == "" || userID == "" || gatewayOrderID == "" || productID == "" {
		return nil, fmt.Errorf("%w: missing identifier", ErrInvalidOrder)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidOrder)
	}
	if quantity < 1 || quantity > MaxTicketQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidOrder, MaxTicketQuantity)
	}
	now := time.Now()
	return &PaymentOrder{
		ID:             id,
		UserID:         userID,
		OrderType:      OrderTypeTicketPurchase,
		Status:         OrderStatusPending,
		Amount:         amount,
		ProductID:      &productID,
		TicketQuantity: &quantity,
		GatewayOrderID: gatewayOrderID,
		JobCd:          JobCdCapture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Fulfillment reconstructs the typed payload variant from the persisted
// order. An order whose type-specific fields are missing is corrupt.
func (o *PaymentOrder) Fulfillment() (Fulfillment, error) {
	switch o.OrderType {
	case OrderTypePointCharge:
		if o.PointsAmount == nil || *o.PointsAmount <= 0 {
			return nil, fmt.Errorf("%w: point charge order %s has no points amount", ErrInvalidOrder, o.ID)
		}
		return PointCharge{Points: *o.PointsAmount}, nil
	case OrderTypeTicketPurchase:
		if o.ProductID == nil || o.TicketQuantity == nil || *o.TicketQuantity < 1 {
			return nil, fmt.Errorf("%w: ticket order %s has no product or quantity", ErrInvalidOrder, o.ID)
		}
		return TicketPurchase{ProductID: *o.ProductID, Quantity: *o.TicketQuantity}, nil
	default:
		return nil, fmt.Errorf("%w: unknown order type %q", ErrInvalidOrder, o.OrderType)
	}
}

// MarkCompleted transitions a pending order to its success terminal state.
func (o *PaymentOrder) MarkCompleted(echo GatewayEcho, at time.Time) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("order %s is already %s", o.ID, o.Status)
	}
	o.Status = OrderStatusCompleted
	o.Echo = echo
	o.CompletedAt = &at
	o.UpdatedAt = at
	return nil
}

// MarkFailed transitions a pending order to its failure terminal state with
// the gateway-reported error.
func (o *PaymentOrder) MarkFailed(echo GatewayEcho, errCode, errMessage string, at time.Time) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("order %s is already %s", o.ID, o.Status)
	}
	o.Status = OrderStatusFailed
	o.Echo = echo
	o.ErrorCode = errCode
	o.ErrorMessage = errMessage
	o.UpdatedAt = at
	return nil
}
