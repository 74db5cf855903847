package settlement

import (
	"context"

	"settlement/internal/domain"
)

// Mock repositories ignore the querier: transaction boundaries are asserted
// through sqlmock's Begin/Commit/Rollback expectations instead.

type mockOrderRepo struct {
	orders    map[string]*domain.PaymentOrder // keyed by gateway order id
	created   []*domain.PaymentOrder
	updated   []*domain.PaymentOrder
	createErr error
	updateErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*domain.PaymentOrder)}
}

func (m *mockOrderRepo) CreateTx(ctx context.Context, querier domain.Querier, order *domain.PaymentOrder) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *order
	m.created = append(m.created, &cp)
	m.orders[order.GatewayOrderID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByGatewayOrderIDForUpdateTx(ctx context.Context, querier domain.Querier, gatewayOrderID string) (*domain.PaymentOrder, error) {
	order, ok := m.orders[gatewayOrderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepo) UpdateTerminalTx(ctx context.Context, querier domain.Querier, order *domain.PaymentOrder) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *order
	m.updated = append(m.updated, &cp)
	m.orders[order.GatewayOrderID] = &cp
	return nil
}

func (m *mockOrderRepo) ListByUserID(ctx context.Context, querier domain.Querier, userID string, limit int) ([]*domain.PaymentOrder, error) {
	var out []*domain.PaymentOrder
	for _, order := range m.orders {
		if order.UserID == userID && len(out) < limit {
			cp := *order
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockPointRepo struct {
	balances map[string]int64
	txns     []*domain.PointTransaction
}

func newMockPointRepo() *mockPointRepo {
	return &mockPointRepo{balances: make(map[string]int64)}
}

func (m *mockPointRepo) CreditBalanceTx(ctx context.Context, querier domain.Querier, userID string, points int64) (int64, error) {
	m.balances[userID] += points
	return m.balances[userID], nil
}

func (m *mockPointRepo) GetBalance(ctx context.Context, querier domain.Querier, userID string) (*domain.PointBalance, error) {
	return &domain.PointBalance{UserID: userID, Balance: m.balances[userID]}, nil
}

func (m *mockPointRepo) AppendTransactionTx(ctx context.Context, querier domain.Querier, txn *domain.PointTransaction) error {
	cp := *txn
	m.txns = append(m.txns, &cp)
	return nil
}

func (m *mockPointRepo) ListTransactions(ctx context.Context, querier domain.Querier, userID string, limit int) ([]*domain.PointTransaction, error) {
	var out []*domain.PointTransaction
	for _, txn := range m.txns {
		if txn.UserID == userID && len(out) < limit {
			out = append(out, txn)
		}
	}
	return out, nil
}

type mockTicketRepo struct {
	products map[string]*domain.TicketProduct
	inserted []*domain.UserTicket
	batches  int
}

func newMockTicketRepo() *mockTicketRepo {
	return &mockTicketRepo{products: make(map[string]*domain.TicketProduct)}
}

func (m *mockTicketRepo) GetProduct(ctx context.Context, querier domain.Querier, productID string) (*domain.TicketProduct, error) {
	product, ok := m.products[productID]
	if !ok {
		return nil, domain.ErrTicketProductNotFound
	}
	return product, nil
}

func (m *mockTicketRepo) InsertBatchTx(ctx context.Context, querier domain.Querier, tickets []*domain.UserTicket) error {
	m.batches++
	for _, t := range tickets {
		cp := *t
		m.inserted = append(m.inserted, &cp)
	}
	return nil
}

type mockOutboxRepo struct {
	messages []*domain.OutboxMessage
}

func (m *mockOutboxRepo) CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.OutboxMessage) error {
	cp := *msg
	m.messages = append(m.messages, &cp)
	return nil
}

func (m *mockOutboxRepo) GetPendingMessages(ctx context.Context, querier domain.Querier, limit int) ([]domain.OutboxMessage, error) {
	var out []domain.OutboxMessage
	for _, msg := range m.messages {
		if msg.Status == domain.OutboxStatusPending && len(out) < limit {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockOutboxRepo) UpdateMessageStatusTx(ctx context.Context, querier domain.Querier, id string, status domain.OutboxMessageStatus) error {
	for _, msg := range m.messages {
		if msg.ID == id {
			msg.Status = status
		}
	}
	return nil
}
