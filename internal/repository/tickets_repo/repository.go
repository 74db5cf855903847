package tickets_repo

import (
	"context"

	"settlement/internal/domain"
)

type TicketRepository interface {
	GetProduct(ctx context.Context, querier domain.Querier, productID string) (*domain.TicketProduct, error)
	// InsertBatchTx creates the issued ticket rows of one purchase in a
	// single statement.
	InsertBatchTx(ctx context.Context, querier domain.Querier, tickets []*domain.UserTicket) error
}
