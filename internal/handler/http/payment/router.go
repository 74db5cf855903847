package payment_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"settlement/internal/app/settlement"
)

func RegisterRoutes(r chi.Router, s settlement.SettlementService, l *zap.Logger) {
	handler := NewPaymentHandler(s, l.With(zap.String("component", "PaymentHTTPHandler")))

	r.Route("/health", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Settlement service is healthy!"))
		})
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/charge", handler.CreateChargeHandler)
		r.Post("/ticket", handler.CreateTicketHandler)
		r.Get("/orders", handler.ListOrdersHandler)
		r.Get("/points", handler.PointHistoryHandler)
		r.Post("/notify", handler.NotifyHandler)
	})
}
