package payment_http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"settlement/internal/app/settlement"
	"settlement/internal/domain"
	"settlement/internal/gmopay"
)

type mockService struct {
	chargeRes    *settlement.CreateOrderResponse
	chargeErr    error
	ticketRes    *settlement.CreateOrderResponse
	ticketErr    error
	reconcileRes *settlement.ReconcileResult
	reconcileErr error
	listRes      []*settlement.OrderResponse
	listErr      error
	historyRes   *settlement.PointHistoryResponse
	historyErr   error

	lastNotification  gmopay.ResultNotification
	lastListUserID    string
	lastListLimit     int
	lastHistoryUserID string
}

func (m *mockService) CreateChargeOrder(ctx context.Context, req *settlement.CreateChargeRequest) (*settlement.CreateOrderResponse, error) {
	return m.chargeRes, m.chargeErr
}

func (m *mockService) CreateTicketOrder(ctx context.Context, req *settlement.CreateTicketRequest) (*settlement.CreateOrderResponse, error) {
	return m.ticketRes, m.ticketErr
}

func (m *mockService) Reconcile(ctx context.Context, n gmopay.ResultNotification) (*settlement.ReconcileResult, error) {
	m.lastNotification = n
	return m.reconcileRes, m.reconcileErr
}

func (m *mockService) ListOrders(ctx context.Context, userID string, limit int) ([]*settlement.OrderResponse, error) {
	m.lastListUserID = userID
	m.lastListLimit = limit
	return m.listRes, m.listErr
}

func (m *mockService) PointHistory(ctx context.Context, userID string, limit int) (*settlement.PointHistoryResponse, error) {
	m.lastHistoryUserID = userID
	return m.historyRes, m.historyErr
}

func newTestRouter(svc settlement.SettlementService) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

func TestCreateChargeHandler(t *testing.T) {
	svc := &mockService{
		chargeRes: &settlement.CreateOrderResponse{PaymentURL: "https://example/checkout/x.y", OrderID: "ENC-0123456789ABCDEF"},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/payments/charge",
		strings.NewReader(`{"user_id":"U1","amount":1000,"points_amount":100}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res settlement.CreateOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if res.OrderID != "ENC-0123456789ABCDEF" || res.PaymentURL == "" {
		t.Errorf("unexpected response: %+v", res)
	}
}

func TestCreateChargeHandlerErrors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(&mockService{})
		req := httptest.NewRequest(http.MethodPost, "/payments/charge", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("validation error", func(t *testing.T) {
		router := newTestRouter(&mockService{chargeErr: domain.ErrInvalidOrder})
		req := httptest.NewRequest(http.MethodPost, "/payments/charge",
			strings.NewReader(`{"user_id":"U1","amount":0,"points_amount":0}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		var res struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil || res.Error == "" {
			t.Errorf("expected structured JSON error, got %q (err %v)", rec.Body.String(), err)
		}
	})
}

func TestCreateTicketHandlerUnknownProduct(t *testing.T) {
	router := newTestRouter(&mockService{ticketErr: domain.ErrTicketProductNotFound})
	req := httptest.NewRequest(http.MethodPost, "/payments/ticket",
		strings.NewReader(`{"user_id":"U1","ticket_product_id":"nope","quantity":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListOrdersHandler(t *testing.T) {
	svc := &mockService{
		listRes: []*settlement.OrderResponse{
			{ID: "o1", UserID: "U1", Status: "completed"},
			{ID: "o2", UserID: "U1", Status: "pending"},
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/payments/orders?user_id=U1&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res struct {
		Orders []*settlement.OrderResponse `json:"orders"`
		Count  int                         `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if res.Count != 2 || len(res.Orders) != 2 {
		t.Errorf("unexpected list response: %+v", res)
	}
	if svc.lastListUserID != "U1" || svc.lastListLimit != 5 {
		t.Errorf("service called with (%q, %d), want (U1, 5)", svc.lastListUserID, svc.lastListLimit)
	}

	t.Run("missing user_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/payments/orders", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestPointHistoryHandler(t *testing.T) {
	svc := &mockService{
		historyRes: &settlement.PointHistoryResponse{
			UserID:  "U1",
			Balance: 300,
			Transactions: []*settlement.PointTransactionResponse{
				{ID: "t1", Amount: 100, BalanceAfter: 100, Type: "charge"},
				{ID: "t2", Amount: 200, BalanceAfter: 300, Type: "charge"},
			},
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/payments/points?user_id=U1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res settlement.PointHistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if res.Balance != 300 || len(res.Transactions) != 2 {
		t.Errorf("unexpected history response: %+v", res)
	}
	if svc.lastHistoryUserID != "U1" {
		t.Errorf("service called with %q, want U1", svc.lastHistoryUserID)
	}

	t.Run("missing user_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/payments/points", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func postNotification(t *testing.T, router http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payments/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNotifyHandlerAcksHandled(t *testing.T) {
	svc := &mockService{
		reconcileRes: &settlement.ReconcileResult{Outcome: settlement.ReconcileCompleted, GatewayOrderID: "ENC-0123456789ABCDEF"},
	}
	router := newTestRouter(svc)

	form := url.Values{}
	form.Set("OrderID", "ENC-0123456789ABCDEF")
	form.Set("ShopID", "tshop00012345")
	form.Set("Amount", "1000")
	form.Set("Status", "CAPTURE")
	form.Set("HashValue", "abc123")

	rec := postNotification(t, router, form)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
	if svc.lastNotification.OrderID != "ENC-0123456789ABCDEF" || svc.lastNotification.Status != "CAPTURE" {
		t.Errorf("notification not parsed into typed fields: %+v", svc.lastNotification)
	}
}

func TestNotifyHandlerAcksRejectOnError(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"verification failure", gmopay.ErrVerificationFailed},
		{"unknown order", domain.ErrOrderNotFound},
		{"storage error", context.DeadlineExceeded},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			router := newTestRouter(&mockService{reconcileErr: c.err})
			form := url.Values{}
			form.Set("OrderID", "ENC-0123456789ABCDEF")

			rec := postNotification(t, router, form)
			// The gateway contract is always HTTP 200; NG signals "not
			// handled" so the gateway retries.
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if rec.Body.String() != "NG" {
				t.Errorf("body = %q, want NG", rec.Body.String())
			}
		})
	}
}

func TestNotifyHandlerDuplicateDeliveryAcksOK(t *testing.T) {
	svc := &mockService{
		reconcileRes: &settlement.ReconcileResult{Outcome: settlement.ReconcileAlreadyProcessed},
	}
	router := newTestRouter(svc)

	form := url.Values{}
	form.Set("OrderID", "ENC-0123456789ABCDEF")

	rec := postNotification(t, router, form)
	if rec.Body.String() != "OK" {
		t.Errorf("duplicate delivery must ack OK, got %q", rec.Body.String())
	}
}
