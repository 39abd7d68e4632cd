package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shoply/backend/pkg/metrics"
)

func NewRouter(h *HTTPHandler, m *metrics.ServerMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(Metrics(m))
	}

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(Identity)

		r.Post("/create", h.CreateOrder)
		r.Get("/my", h.MyOrders)
		r.Get("/my/stats", h.MyOrderStats)
		r.Get("/seller", h.SellerOrders)
		r.Get("/all", h.AllOrders)
		r.Put("/cancel/{id}", h.CancelOrder)
		r.Put("/seller/update/{id}", h.UpdateOrderStatus)
		r.Put("/admin/update/{id}", h.UpdateOrderStatus)
		r.Post("/{id}/track", h.AddTrackingNumber)
		r.Get("/{id}", h.OrderDetails)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(Identity)

		r.Get("/", h.Notifications)
		r.Put("/{id}/read", h.MarkNotificationRead)
		r.Put("/read-all", h.MarkAllNotificationsRead)
	})

	return r
}
