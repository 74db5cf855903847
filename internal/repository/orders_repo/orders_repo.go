package orders_repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"settlement/internal/domain"
)

const orderColumns = `id, user_id, order_type, status, amount, points_amount,
		ticket_product_id, ticket_quantity, gateway_order_id, job_cd,
		access_id, access_pass, forward, approve, tran_id, tran_date, method,
		error_code, error_message, completed_at, created_at, updated_at`

type orderRepository struct{}

func NewOrderRepository() *orderRepository {
	return &orderRepository{}
}

func (r *orderRepository) CreateTx(ctx context.Context, querier domain.Querier, order *domain.PaymentOrder) error {
	query := `
		INSERT INTO payment_orders (id, user_id, order_type, status, amount,
			points_amount, ticket_product_id, ticket_quantity,
			gateway_order_id, job_cd, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := querier.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.OrderType,
		order.Status,
		order.Amount,
		order.PointsAmount,
		order.ProductID,
		order.TicketQuantity,
		order.GatewayOrderID,
		order.JobCd,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return domain.ErrDuplicateGatewayOrder
		}
		return fmt.Errorf("failed to create payment order %s: %w", order.ID, err)
	}
	return nil
}

func (r *orderRepository) GetByGatewayOrderIDForUpdateTx(ctx context.Context, querier domain.Querier, gatewayOrderID string) (*domain.PaymentOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM payment_orders
		WHERE gateway_order_id = $1
		FOR UPDATE
	`
	return scanOrder(querier.QueryRowContext(ctx, query, gatewayOrderID), gatewayOrderID)
}

func (r *orderRepository) UpdateTerminalTx(ctx context.Context, querier domain.Querier, order *domain.PaymentOrder) error {
	query := `
		UPDATE payment_orders
		SET status = $1,
			access_id = $2, access_pass = $3, forward = $4, approve = $5,
			tran_id = $6, tran_date = $7, method = $8,
			error_code = $9, error_message = $10,
			completed_at = $11, updated_at = $12
		WHERE id = $13
	`
	res, err := querier.ExecContext(ctx, query,
		order.Status,
		order.Echo.AccessID,
		order.Echo.AccessPass,
		order.Echo.Forward,
		order.Echo.Approve,
		order.Echo.TranID,
		order.Echo.TranDate,
		order.Echo.Method,
		order.ErrorCode,
		order.ErrorMessage,
		order.CompletedAt,
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment order %s: %w", order.ID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for order update: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("payment order %s not found for update: %w", order.ID, domain.ErrOrderNotFound)
	}
	return nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, querier domain.Querier, userID string, limit int) ([]*domain.PaymentOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM payment_orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := querier.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	var orders []*domain.PaymentOrder
	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment orders for user %s: %w", userID, err)
	}
	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row *sql.Row, gatewayOrderID string) (*domain.PaymentOrder, error) {
	order, err := scanOrderRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get payment order by gateway order id %s: %w", gatewayOrderID, err)
	}
	return order, nil
}

func scanOrderRow(row rowScanner) (*domain.PaymentOrder, error) {
	order := &domain.PaymentOrder{}
	var (
		accessID, accessPass, forward, approve sql.NullString
		tranID, tranDate, method               sql.NullString
		errorCode, errorMessage                sql.NullString
		completedAt                            sql.NullTime
	)
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderType,
		&order.Status,
		&order.Amount,
		&order.PointsAmount,
		&order.ProductID,
		&order.TicketQuantity,
		&order.GatewayOrderID,
		&order.JobCd,
		&accessID,
		&accessPass,
		&forward,
		&approve,
		&tranID,
		&tranDate,
		&method,
		&errorCode,
		&errorMessage,
		&completedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Echo = domain.GatewayEcho{
		AccessID:   accessID.String,
		AccessPass: accessPass.String,
		Forward:    forward.String,
		Approve:    approve.String,
		TranID:     tranID.String,
		TranDate:   tranDate.String,
		Method:     method.String,
	}
	order.ErrorCode = errorCode.String
	order.ErrorMessage = errorMessage.String
	if completedAt.Valid {
		t := completedAt.Time
		order.CompletedAt = &t
	}
	return order, nil
}
