package points_repo

import (
	"context"

	"settlement/internal/domain"
)

type PointRepository interface {
	// CreditBalanceTx atomically adds points to the user's balance, creating
	// the row if it does not exist, and returns the resulting balance. The
	// update is relative so concurrent credits of the same user cannot lose
	// each other even when no balance row existed to lock.
	CreditBalanceTx(ctx context.Context, querier domain.Querier, userID string, points int64) (int64, error)
	AppendTransactionTx(ctx context.Context, querier domain.Querier, txn *domain.PointTransaction) error
	// GetBalance reads the user's balance without locking. A user with no
	// balance row yet reads as zero.
	GetBalance(ctx context.Context, querier domain.Querier, userID string) (*domain.PointBalance, error)
	ListTransactions(ctx context.Context, querier domain.Querier, userID string, limit int) ([]*domain.PointTransaction, error)
}
