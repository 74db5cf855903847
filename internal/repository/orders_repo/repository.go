package orders_repo

import (
	"context"

	"settlement/internal/domain"
)

type OrderRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, order *domain.PaymentOrder) error
	// GetByGatewayOrderIDForUpdateTx locks the order row for the duration of
	// the surrounding transaction, serializing concurrent reconciles of the
	// same order.
	GetByGatewayOrderIDForUpdateTx(ctx context.Context, querier domain.Querier, gatewayOrderID string) (*domain.PaymentOrder, error)
	// UpdateTerminalTx persists a Pending -> Completed/Failed transition
	// together with the gateway echo fields.
	UpdateTerminalTx(ctx context.Context, querier domain.Querier, order *domain.PaymentOrder) error
	ListByUserID(ctx context.Context, querier domain.Querier, userID string, limit int) ([]*domain.PaymentOrder, error)
}
