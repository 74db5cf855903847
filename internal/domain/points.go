package domain

import "time"

// PointBalance is the denormalized per-user balance, kept consistent with
// the running sum of point_transactions.
type PointBalance struct {
	UserID    string
	Balance   int64
	UpdatedAt time.Time
}

type PointTransactionType string

const (
	PointTransactionCharge PointTransactionType = "charge"
)

// PointTransaction is an append-only ledger entry. Immutable once written.
type PointTransaction struct {
	ID           string
	UserID       string
	Amount       int64
	BalanceAfter int64
	Type         PointTransactionType
	ReferenceID  string
	Description  string
	CreatedAt    time.Time
}
