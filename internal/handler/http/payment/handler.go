package payment_http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"settlement/internal/app/settlement"
	"settlement/internal/domain"
	"settlement/internal/gmopay"
)

// Webhook acknowledgment bodies. The gateway retries on anything it cannot
// read as a positive acknowledgment; both are sent with HTTP 200.
const (
	ackHandled = "OK"
	ackReject  = "NG"
)

type PaymentHandler struct {
	service settlement.SettlementService
	logger  *zap.Logger
}

func NewPaymentHandler(s settlement.SettlementService, l *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: s, logger: l}
}

type errorResponse struct {
	Error string `json:"error"`
}

type listOrdersResponse struct {
	Orders []*settlement.OrderResponse `json:"orders"`
	Count  int                         `json:"count"`
}

func (h *PaymentHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

// CreateChargeHandler handles POST /payments/charge.
func (h *PaymentHandler) CreateChargeHandler(w http.ResponseWriter, r *http.Request) {
	var req settlement.CreateChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateCharge", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.CreateChargeOrder(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrder) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to create charge order", zap.String("user_id", req.UserID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}

// CreateTicketHandler handles POST /payments/ticket.
func (h *PaymentHandler) CreateTicketHandler(w http.ResponseWriter, r *http.Request) {
	var req settlement.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateTicket", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.CreateTicketOrder(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrder) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrTicketProductNotFound) {
			h.writeError(w, http.StatusNotFound, "ticket product not found")
			return
		}
		h.logger.Error("Failed to create ticket order", zap.String("user_id", req.UserID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}

// ListOrdersHandler handles GET /payments/orders?user_id=&limit=.
func (h *PaymentHandler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	orders, err := h.service.ListOrders(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrder) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to list orders", zap.String("user_id", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, listOrdersResponse{Orders: orders, Count: len(orders)})
}

// PointHistoryHandler handles GET /payments/points?user_id=&limit=.
func (h *PaymentHandler) PointHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	history, err := h.service.PointHistory(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrder) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to get point history", zap.String("user_id", userID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, history)
}

// NotifyHandler handles POST /payments/notify, the gateway's result
// notification webhook. The response is always HTTP 200 with a literal body:
// "OK" tells the gateway the notification is fully handled (terminal write
// done, or an idempotent replay); "NG" covers everything else so the gateway
// retries. Internal error detail stays in the logs.
func (h *PaymentHandler) NotifyHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("Failed to parse result notification form", zap.Error(err))
		h.ack(w, ackReject)
		return
	}

	n := gmopay.ParseNotification(r.PostForm)
	h.logger.Info("Result notification received",
		zap.String("gateway_order_id", n.OrderID),
		zap.String("status", n.Status),
		zap.String("err_code", n.ErrCode))

	result, err := h.service.Reconcile(r.Context(), n)
	if err != nil {
		h.logger.Error("Result notification rejected",
			zap.String("gateway_order_id", n.OrderID),
			zap.Error(err))
		h.ack(w, ackReject)
		return
	}

	h.logger.Info("Result notification handled",
		zap.String("gateway_order_id", n.OrderID),
		zap.String("outcome", string(result.Outcome)))
	h.ack(w, ackHandled)
}

func (h *PaymentHandler) ack(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.Error("Failed to write webhook acknowledgment", zap.Error(err))
	}
}
