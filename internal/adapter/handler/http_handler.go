package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shoply/backend/internal/core/domain"
	"github.com/shoply/backend/internal/core/service"
)

type HTTPHandler struct {
	checkout      *service.CheckoutService
	status        *service.StatusService
	queries       *service.OrderQueryService
	notifications *service.NotificationService
}

func NewHTTPHandler(
	checkout *service.CheckoutService,
	status *service.StatusService,
	queries *service.OrderQueryService,
	notifications *service.NotificationService,
) *HTTPHandler {
	return &HTTPHandler{
		checkout:      checkout,
		status:        status,
		queries:       queries,
		notifications: notifications,
	}
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid request body"})
		return
	}

	actor := actorFrom(r.Context())
	items := make([]service.CheckoutItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CheckoutItem{ProductID: it.Product, Quantity: it.Quantity}
	}

	order, err := h.checkout.CreateOrder(r.Context(), service.CheckoutInput{
		BuyerID: actor.ID,
		Items:   items,
		ShippingAddress: domain.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Phone:      req.ShippingAddress.Phone,
		},
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		CardNumber:    req.CardNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Success bool          `json:"success"`
		Message string        `json:"message"`
		Order   OrderResponse `json:"order"`
	}{true, "Order created successfully.", toOrderResponse(order)})
}

func (h *HTTPHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.status.CancelOrder(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Message string        `json:"message"`
		Order   OrderResponse `json:"order"`
	}{true, "Order cancelled successfully.", toOrderResponse(order)})
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid request body"})
		return
	}

	order, err := h.status.UpdateStatus(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Message string        `json:"message"`
		Order   OrderResponse `json:"order"`
	}{true, "Order status updated successfully.", toOrderResponse(order)})
}

func (h *HTTPHandler) AddTrackingNumber(w http.ResponseWriter, r *http.Request) {
	var req TrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Success: false, Error: "invalid request body"})
		return
	}

	orderID := chi.URLParam(r, "id")
	if err := h.status.SetTrackingNumber(r.Context(), actorFrom(r.Context()), orderID, req.TrackingNumber); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{true, "Tracking number added"})
}

func (h *HTTPHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.queries.MyOrders(r.Context(), actorFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOrderList(w, views)
}

func (h *HTTPHandler) SellerOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.queries.SellerOrders(r.Context(), actorFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOrderList(w, views)
}

func (h *HTTPHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.queries.AllOrders(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOrderList(w, views)
}

func (h *HTTPHandler) OrderDetails(w http.ResponseWriter, r *http.Request) {
	view, err := h.queries.OrderDetails(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Order   OrderResponse `json:"order"`
	}{true, toOrderViewResponse(view)})
}

func (h *HTTPHandler) MyOrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.MyStats(r.Context(), actorFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Stats   StatsResponse `json:"stats"`
	}{true, StatsResponse(*stats)})
}

func (h *HTTPHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	notifications, unread, err := h.notifications.List(r.Context(), actorFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Notifications []NotificationResponse `json:"notifications"`
		UnreadCount   int                    `json:"unreadCount"`
	}{toNotificationResponses(notifications), unread})
}

func (h *HTTPHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.MarkRead(r.Context(), actorFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{"Notification marked as read"})
}

func (h *HTTPHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context(), actorFrom(r.Context()).ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{"All notifications marked as read"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeOrderList(w http.ResponseWriter, views []domain.OrderView) {
	writeJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Orders  []OrderResponse `json:"orders"`
	}{true, toOrderViewResponses(views)})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Success: false, Error: err.Error()}
	status := http.StatusInternalServerError

	var domErr *domain.Error
	if errors.As(err, &domErr) {
		switch domErr.Kind {
		case domain.KindValidation:
			status = http.StatusBadRequest
		case domain.KindNotFound:
			status = http.StatusNotFound
		case domain.KindConflict:
			status = http.StatusConflict
			if domErr.ProductID != "" {
				available := domErr.Available
				resp.ProductID = domErr.ProductID
				resp.Available = &available
			}
		case domain.KindAuthorization:
			status = http.StatusForbidden
		default:
			resp.Error = "internal error"
		}
	} else {
		resp.Error = "internal error"
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func init() {
	// API clients expect plain JSON numbers for money fields.
	decimal.MarshalJSONWithoutQuotes = true
}
