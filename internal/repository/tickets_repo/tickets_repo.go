package tickets_repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"settlement/internal/domain"
)

type ticketRepository struct{}

func NewTicketRepository() *ticketRepository {
	return &ticketRepository{}
}

func (r *ticketRepository) GetProduct(ctx context.Context, querier domain.Querier, productID string) (*domain.TicketProduct, error) {
	query := `
		SELECT id, name, price_points, created_at
		FROM ticket_products
		WHERE id = $1
	`
	product := &domain.TicketProduct{}
	err := querier.QueryRowContext(ctx, query, productID).Scan(
		&product.ID,
		&product.Name,
		&product.PricePoints,
		&product.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTicketProductNotFound
		}
		return nil, fmt.Errorf("failed to get ticket product %s: %w", productID, err)
	}
	return product, nil
}

func (r *ticketRepository) InsertBatchTx(ctx context.Context, querier domain.Querier, tickets []*domain.UserTicket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]string, len(tickets))
	userIDs := make([]string, len(tickets))
	productIDs := make([]string, len(tickets))
	statuses := make([]string, len(tickets))
	createdAts := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
		userIDs[i] = t.UserID
		productIDs[i] = t.ProductID
		statuses[i] = string(t.Status)
		createdAts[i] = t.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999Z07:00")
	}

	query := `
		INSERT INTO user_tickets (id, user_id, ticket_product_id, status, created_at)
		SELECT * FROM unnest($1::uuid[], $2::text[], $3::text[], $4::text[], $5::timestamptz[])
	`
	_, err := querier.ExecContext(ctx, query,
		pq.Array(ids),
		pq.Array(userIDs),
		pq.Array(productIDs),
		pq.Array(statuses),
		pq.Array(createdAts),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %d user tickets: %w", len(tickets), err)
	}
	return nil
}
