package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"settlement/internal/domain"
)

// applyFulfillment runs the business effect of a completed order inside the
// caller's reconcile transaction. Dispatch is exhaustive over the closed
// Fulfillment union; replay protection comes from the terminal-state
// short-circuit in reconcileTx, not from any check here.
func (s *settlementService) applyFulfillment(ctx context.Context, querier domain.Querier, order *domain.PaymentOrder, f domain.Fulfillment) error {
	switch f := f.(type) {
	case domain.PointCharge:
		return s.applyPointCharge(ctx, querier, order, f)
	case domain.TicketPurchase:
		return s.applyTicketPurchase(ctx, querier, order, f)
	default:
		return fmt.Errorf("no fulfillment handler for order type %q", f.OrderType())
	}
}

func (s *settlementService) applyPointCharge(ctx context.Context, querier domain.Querier, order *domain.PaymentOrder, f domain.PointCharge) error {
	newBalance, err := s.pointRepo.CreditBalanceTx(ctx, querier, order.UserID, f.Points)
	if err != nil {
		return err
	}

	txn := &domain.PointTransaction{
		ID:           uuid.NewString(),
		UserID:       order.UserID,
		Amount:       f.Points,
		BalanceAfter: newBalance,
		Type:         domain.PointTransactionCharge,
		ReferenceID:  order.GatewayOrderID,
		Description:  fmt.Sprintf("Point charge (gateway payment: %d JPY)", order.Amount),
		CreatedAt:    time.Now(),
	}
	if err := s.pointRepo.AppendTransactionTx(ctx, querier, txn); err != nil {
		return err
	}

	s.logger.Info("Point charge fulfilled",
		zap.String("user_id", order.UserID),
		zap.Int64("points", f.Points),
		zap.Int64("balance_after", newBalance),
		zap.String("gateway_order_id", order.GatewayOrderID))
	return nil
}

func (s *settlementService) applyTicketPurchase(ctx context.Context, querier domain.Querier, order *domain.PaymentOrder, f domain.TicketPurchase) error {
	now := time.Now()
	tickets := make([]*domain.UserTicket, f.Quantity)
	for i := range tickets {
		tickets[i] = &domain.UserTicket{
			ID:        uuid.NewString(),
			UserID:    order.UserID,
			ProductID: f.ProductID,
			Status:    domain.TicketStatusValid,
			CreatedAt: now,
		}
	}
	if err := s.ticketRepo.InsertBatchTx(ctx, querier, tickets); err != nil {
		return err
	}

	s.logger.Info("Tickets issued",
		zap.String("user_id", order.UserID),
		zap.String("product_id", f.ProductID),
		zap.Int("quantity", f.Quantity),
		zap.String("gateway_order_id", order.GatewayOrderID))
	return nil
}
