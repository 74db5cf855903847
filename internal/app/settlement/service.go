package settlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"settlement/internal/domain"
	"settlement/internal/gmopay"
	"settlement/internal/repository/orders_repo"
	"settlement/internal/repository/outbox_repo"
	"settlement/internal/repository/points_repo"
	"settlement/internal/repository/tickets_repo"
)

const (
	defaultOrderListLimit = 20
	maxOrderListLimit     = 100
)

type SettlementService interface {
	CreateChargeOrder(ctx context.Context, req *CreateChargeRequest) (*CreateOrderResponse, error)
	CreateTicketOrder(ctx context.Context, req *CreateTicketRequest) (*CreateOrderResponse, error)
	Reconcile(ctx context.Context, n gmopay.ResultNotification) (*ReconcileResult, error)
	ListOrders(ctx context.Context, userID string, limit int) ([]*OrderResponse, error)
	PointHistory(ctx context.Context, userID string, limit int) (*PointHistoryResponse, error)
}

type settlementService struct {
	db               *sql.DB
	orderRepo        orders_repo.OrderRepository
	pointRepo        points_repo.PointRepository
	ticketRepo       tickets_repo.TicketRepository
	outboxRepo       outbox_repo.OutboxRepository
	shopCfg          gmopay.ShopConfig
	verifier         *gmopay.Verifier
	reconcileTimeout time.Duration
	logger           *zap.Logger
}

func NewSettlementService(
	db *sql.DB,
	orderRepo orders_repo.OrderRepository,
	pointRepo points_repo.PointRepository,
	ticketRepo tickets_repo.TicketRepository,
	outboxRepo outbox_repo.OutboxRepository,
	shopCfg gmopay.ShopConfig,
	verifier *gmopay.Verifier,
	reconcileTimeout time.Duration,
	logger *zap.Logger,
) SettlementService {
	return &settlementService{
		db:               db,
		orderRepo:        orderRepo,
		pointRepo:        pointRepo,
		ticketRepo:       ticketRepo,
		outboxRepo:       outboxRepo,
		shopCfg:          shopCfg,
		verifier:         verifier,
		reconcileTimeout: reconcileTimeout,
		logger:           logger,
	}
}

func (s *settlementService) CreateChargeOrder(ctx context.Context, req *CreateChargeRequest) (*CreateOrderResponse, error) {
	gatewayOrderID, err := gmopay.NewOrderID()
	if err != nil {
		s.logger.Error("Failed to mint gateway order id", zap.Error(err))
		return nil, fmt.Errorf("failed to mint gateway order id: %w", err)
	}

	order, err := domain.NewChargeOrder(uuid.NewString(), req.UserID, gatewayOrderID, req.Amount, req.PointsAmount)
	if err != nil {
		s.logger.Warn("Rejected charge order request", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	if err := s.orderRepo.CreateTx(ctx, s.db, order); err != nil {
		s.logger.Error("Failed to persist charge order", zap.String("gateway_order_id", gatewayOrderID), zap.Error(err))
		return nil, fmt.Errorf("failed to persist charge order: %w", err)
	}

	overview := fmt.Sprintf("Encore point charge %dpt", req.PointsAmount)
	paymentURL, err := gmopay.BuildCheckoutURL(s.shopCfg, gatewayOrderID, order.Amount, overview)
	if err != nil {
		s.logger.Error("Failed to build checkout URL", zap.String("gateway_order_id", gatewayOrderID), zap.Error(err))
		return nil, fmt.Errorf("failed to build checkout url: %w", err)
	}

	s.logger.Info("Charge order created",
		zap.String("order_id", order.ID),
		zap.String("gateway_order_id", gatewayOrderID),
		zap.String("user_id", req.UserID),
		zap.Int64("amount", order.Amount),
		zap.Int64("points", req.PointsAmount))

	return &CreateOrderResponse{PaymentURL: paymentURL, OrderID: gatewayOrderID}, nil
}

func (s *settlementService) CreateTicketOrder(ctx context.Context, req *CreateTicketRequest) (*CreateOrderResponse, error) {
	if req.UserID == "" || req.TicketProductID == "" {
		return nil, fmt.Errorf("%w: missing identifier", domain.ErrInvalidOrder)
	}
	if req.Quantity < 1 || req.Quantity > domain.MaxTicketQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrInvalidOrder, domain.MaxTicketQuantity)
	}

	product, err := s.ticketRepo.GetProduct(ctx, s.db, req.TicketProductID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketProductNotFound) {
			s.logger.Warn("Ticket product not found", zap.String("product_id", req.TicketProductID))
			return nil, err
		}
		s.logger.Error("Failed to look up ticket product", zap.String("product_id", req.TicketProductID), zap.Error(err))
		return nil, fmt.Errorf("failed to look up ticket product: %w", err)
	}

	gatewayOrderID, err := gmopay.NewOrderID()
	if err != nil {
		s.logger.Error("Failed to mint gateway order id", zap.Error(err))
		return nil, fmt.Errorf("failed to mint gateway order id: %w", err)
	}

	// The charge amount is priced from the catalog, never from the request.
	amount := product.PricePoints * int64(req.Quantity)

	order, err := domain.NewTicketOrder(uuid.NewString(), req.UserID, gatewayOrderID, product.ID, amount, req.Quantity)
	if err != nil {
		s.logger.Warn("Rejected ticket order request", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	if err := s.orderRepo.CreateTx(ctx, s.db, order); err != nil {
		s.logger.Error("Failed to persist ticket order", zap.String("gateway_order_id", gatewayOrderID), zap.Error(err))
		return nil, fmt.Errorf("failed to persist ticket order: %w", err)
	}

	overview := fmt.Sprintf("Encore ticket purchase x%d", req.Quantity)
	paymentURL, err := gmopay.BuildCheckoutURL(s.shopCfg, gatewayOrderID, order.Amount, overview)
	if err != nil {
		s.logger.Error("Failed to build checkout URL", zap.String("gateway_order_id", gatewayOrderID), zap.Error(err))
		return nil, fmt.Errorf("failed to build checkout url: %w", err)
	}

	s.logger.Info("Ticket order created",
		zap.String("order_id", order.ID),
		zap.String("gateway_order_id", gatewayOrderID),
		zap.String("user_id", req.UserID),
		zap.String("product_id", product.ID),
		zap.Int("quantity", req.Quantity),
		zap.Int64("amount", amount))

	return &CreateOrderResponse{PaymentURL: paymentURL, OrderID: gatewayOrderID}, nil
}

// Reconcile applies one gateway result notification to the order it
// references. The order lookup, terminal-state check, status transition and
// fulfillment writes all run in a single transaction holding a row lock on
// the order, so duplicate and concurrent deliveries of the same notification
// settle the order exactly once.
func (s *settlementService) Reconcile(ctx context.Context, n gmopay.ResultNotification) (*ReconcileResult, error) {
	if n.HasSignature() {
		if !s.verifier.Verify(n.OrderID, n.Amount, n.ShopID, n.HashValue) {
			s.logger.Error("Result notification hash mismatch",
				zap.String("gateway_order_id", n.OrderID),
				zap.String("shop_id", n.ShopID))
			return nil, gmopay.ErrVerificationFailed
		}
	} else {
		// An unsigned notification bypasses the hash check entirely; under
		// enforced mode this is the event worth noticing in the logs.
		s.logger.Warn("Result notification carries no hash, accepted without verification",
			zap.String("gateway_order_id", n.OrderID),
			zap.String("verification_mode", string(s.verifier.Mode())))
	}

	ctx, cancel := context.WithTimeout(ctx, s.reconcileTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin reconcile transaction", zap.String("gateway_order_id", n.OrderID), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic during reconcile transaction, rolling back",
				zap.String("gateway_order_id", n.OrderID), zap.Any("panic", r))
			tx.Rollback()
			panic(r)
		}
	}()

	result, err := s.reconcileTx(ctx, tx, n)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back reconcile transaction",
				zap.String("gateway_order_id", n.OrderID), zap.Error(rbErr))
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit reconcile transaction", zap.String("gateway_order_id", n.OrderID), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Result notification reconciled",
		zap.String("gateway_order_id", n.OrderID),
		zap.String("order_id", result.OrderID),
		zap.String("outcome", string(result.Outcome)))
	return result, nil
}

func (s *settlementService) reconcileTx(ctx context.Context, tx *sql.Tx, n gmopay.ResultNotification) (*ReconcileResult, error) {
	order, err := s.orderRepo.GetByGatewayOrderIDForUpdateTx(ctx, tx, n.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			s.logger.Warn("Result notification for unknown order", zap.String("gateway_order_id", n.OrderID))
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up order for gateway order id %s: %w", n.OrderID, err)
	}

	// Idempotent short-circuit: a terminal order has already been settled.
	// Fulfillment must not run again under duplicate delivery.
	if order.Status.IsTerminal() {
		s.logger.Info("Order already settled, ignoring duplicate notification",
			zap.String("gateway_order_id", n.OrderID),
			zap.String("status", string(order.Status)))
		return &ReconcileResult{
			Outcome:        ReconcileAlreadyProcessed,
			OrderID:        order.ID,
			GatewayOrderID: order.GatewayOrderID,
		}, nil
	}

	echo := domain.GatewayEcho{
		AccessID:   n.AccessID,
		AccessPass: n.AccessPass,
		Forward:    n.Forward,
		Approve:    n.Approve,
		TranID:     n.TranID,
		TranDate:   n.TranDate,
		Method:     n.PayType,
	}
	now := time.Now()

	var outcome ReconcileOutcome
	if n.Succeeded() {
		if err := order.MarkCompleted(echo, now); err != nil {
			return nil, err
		}
		if err := s.orderRepo.UpdateTerminalTx(ctx, tx, order); err != nil {
			return nil, err
		}
		fulfillment, err := order.Fulfillment()
		if err != nil {
			return nil, err
		}
		if err := s.applyFulfillment(ctx, tx, order, fulfillment); err != nil {
			return nil, err
		}
		outcome = ReconcileCompleted
	} else {
		if err := order.MarkFailed(echo, n.ErrCode, n.ErrInfo, now); err != nil {
			return nil, err
		}
		if err := s.orderRepo.UpdateTerminalTx(ctx, tx, order); err != nil {
			return nil, err
		}
		s.logger.Warn("Gateway declared payment failed",
			zap.String("gateway_order_id", n.OrderID),
			zap.String("gateway_status", n.Status),
			zap.String("err_code", n.ErrCode),
			zap.String("err_info", n.ErrInfo))
		outcome = ReconcileFailed
	}

	if err := s.enqueueSettlementEvent(ctx, tx, order, now); err != nil {
		return nil, err
	}

	return &ReconcileResult{
		Outcome:        outcome,
		OrderID:        order.ID,
		GatewayOrderID: order.GatewayOrderID,
	}, nil
}

func (s *settlementService) enqueueSettlementEvent(ctx context.Context, tx *sql.Tx, order *domain.PaymentOrder, at time.Time) error {
	event := domain.SettlementEvent{
		OrderID:        order.ID,
		GatewayOrderID: order.GatewayOrderID,
		UserID:         order.UserID,
		OrderType:      string(order.OrderType),
		Status:         string(order.Status),
		Amount:         order.Amount,
		ErrorCode:      order.ErrorCode,
		OccurredAt:     at,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement event for order %s: %w", order.ID, err)
	}
	msg := &domain.OutboxMessage{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		Payload:   payload,
		Status:    domain.OutboxStatusPending,
		CreatedAt: at,
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, tx, msg); err != nil {
		return fmt.Errorf("failed to enqueue settlement event for order %s: %w", order.ID, err)
	}
	return nil
}

func (s *settlementService) ListOrders(ctx context.Context, userID string, limit int) ([]*OrderResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidOrder)
	}
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	if limit > maxOrderListLimit {
		limit = maxOrderListLimit
	}

	orders, err := s.orderRepo.ListByUserID(ctx, s.db, userID, limit)
	if err != nil {
		s.logger.Error("Failed to list payment orders", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list payment orders for user %s: %w", userID, err)
	}

	responses := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, mapOrderToResponse(order))
	}
	return responses, nil
}

// PointHistory returns the user's current balance together with their most
// recent ledger entries, newest first.
func (s *settlementService) PointHistory(ctx context.Context, userID string, limit int) (*PointHistoryResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidOrder)
	}
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	if limit > maxOrderListLimit {
		limit = maxOrderListLimit
	}

	balance, err := s.pointRepo.GetBalance(ctx, s.db, userID)
	if err != nil {
		s.logger.Error("Failed to get point balance", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get point balance for user %s: %w", userID, err)
	}
	txns, err := s.pointRepo.ListTransactions(ctx, s.db, userID, limit)
	if err != nil {
		s.logger.Error("Failed to list point transactions", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list point transactions for user %s: %w", userID, err)
	}

	res := &PointHistoryResponse{
		UserID:       userID,
		Balance:      balance.Balance,
		Transactions: make([]*PointTransactionResponse, 0, len(txns)),
	}
	for _, txn := range txns {
		res.Transactions = append(res.Transactions, mapTransactionToResponse(txn))
	}
	return res, nil
}
