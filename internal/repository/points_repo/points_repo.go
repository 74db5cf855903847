package points_repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"settlement/internal/domain"
)

type pointRepository struct{}

func NewPointRepository() *pointRepository {
	return &pointRepository{}
}

func (r *pointRepository) CreditBalanceTx(ctx context.Context, querier domain.Querier, userID string, points int64) (int64, error) {
	// Relative upsert: a FOR UPDATE read cannot lock a row that does not
	// exist yet, so two first-time credits for the same user would both read
	// zero and the loser's absolute write would erase the winner's. Letting
	// the database add the delta makes the credit atomic either way.
	query := `
		INSERT INTO point_balances (user_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = point_balances.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at
		RETURNING balance
	`
	var balance int64
	if err := querier.QueryRowContext(ctx, query, userID, points, time.Now()).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to credit point balance for user %s: %w", userID, err)
	}
	return balance, nil
}

func (r *pointRepository) GetBalance(ctx context.Context, querier domain.Querier, userID string) (*domain.PointBalance, error) {
	query := `SELECT user_id, balance, updated_at FROM point_balances WHERE user_id = $1`
	b := &domain.PointBalance{}
	err := querier.QueryRowContext(ctx, query, userID).Scan(&b.UserID, &b.Balance, &b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return &domain.PointBalance{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get point balance for user %s: %w", userID, err)
	}
	return b, nil
}

func (r *pointRepository) AppendTransactionTx(ctx context.Context, querier domain.Querier, txn *domain.PointTransaction) error {
	query := `
		INSERT INTO point_transactions (id, user_id, amount, balance_after, type, reference_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := querier.ExecContext(ctx, query,
		txn.ID,
		txn.UserID,
		txn.Amount,
		txn.BalanceAfter,
		txn.Type,
		txn.ReferenceID,
		txn.Description,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append point transaction %s: %w", txn.ID, err)
	}
	return nil
}

func (r *pointRepository) ListTransactions(ctx context.Context, querier domain.Querier, userID string, limit int) ([]*domain.PointTransaction, error) {
	query := `
		SELECT id, user_id, amount, balance_after, type, reference_id, description, created_at
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := querier.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list point transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var txns []*domain.PointTransaction
	for rows.Next() {
		txn := &domain.PointTransaction{}
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Amount,
			&txn.BalanceAfter,
			&txn.Type,
			&txn.ReferenceID,
			&txn.Description,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan point transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate point transactions for user %s: %w", userID, err)
	}
	return txns, nil
}
