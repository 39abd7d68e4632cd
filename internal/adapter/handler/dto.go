package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoply/backend/internal/core/domain"
)

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	PaymentMethod   string             `json:"paymentMethod"`
	CardNumber      string             `json:"cardNumber,omitempty"`
}

type OrderItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type ShippingAddressDTO struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
	Phone      string `json:"phone"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type TrackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	Buyer           string              `json:"buyer"`
	Items           []OrderItemResponse `json:"items"`
	ShippingAddress ShippingAddressDTO  `json:"shippingAddress"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentStatus   string              `json:"paymentStatus"`
	Status          string              `json:"status"`
	StatusHistory   []StatusChangeDTO   `json:"statusHistory"`
	TrackingNumber  string              `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type OrderItemResponse struct {
	Product  ProductRefDTO   `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// ProductRefDTO is either a bare reference (write side) or a populated view
// (read side).
type ProductRefDTO struct {
	ID    string           `json:"id"`
	Title string           `json:"title,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

type StatusChangeDTO struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy string    `json:"changedBy"`
}

type StatsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	RelatedID string    `json:"relatedId,omitempty"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ProductID string `json:"productId,omitempty"`
	Available *int   `json:"available,omitempty"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			Product:  ProductRefDTO{ID: it.ProductID},
			Quantity: it.Quantity,
			Price:    it.Price,
		}
	}
	return orderResponseWithItems(o, items)
}

func toOrderViewResponse(v *domain.OrderView) OrderResponse {
	items := make([]OrderItemResponse, len(v.Items))
	for i, it := range v.Items {
		price := it.Product.Price
		items[i] = OrderItemResponse{
			Product: ProductRefDTO{
				ID:    it.Product.ID,
				Title: it.Product.Title,
				Price: &price,
			},
			Quantity: it.Quantity,
			Price:    it.Price,
		}
	}
	return orderResponseWithItems(&v.Order, items)
}

func orderResponseWithItems(o *domain.Order, items []OrderItemResponse) OrderResponse {
	history := make([]StatusChangeDTO, len(o.StatusHistory))
	for i, change := range o.StatusHistory {
		history[i] = StatusChangeDTO{
			Status:    string(change.Status),
			ChangedAt: change.ChangedAt,
			ChangedBy: change.ChangedBy,
		}
	}
	return OrderResponse{
		ID:    o.ID,
		Buyer: o.BuyerID,
		Items: items,
		ShippingAddress: ShippingAddressDTO{
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Phone:      o.ShippingAddress.Phone,
		},
		TotalAmount:    o.TotalAmount,
		PaymentMethod:  string(o.PaymentMethod),
		PaymentStatus:  string(o.PaymentStatus),
		Status:         string(o.Status),
		StatusHistory:  history,
		TrackingNumber: o.TrackingNumber,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func toOrderViewResponses(views []domain.OrderView) []OrderResponse {
	out := make([]OrderResponse, len(views))
	for i := range views {
		out[i] = toOrderViewResponse(&views[i])
	}
	return out
}

func toNotificationResponses(notifications []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		out[i] = NotificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			Read:      n.Read,
			RelatedID: n.RelatedID,
			Priority:  string(n.Priority),
			CreatedAt: n.CreatedAt,
		}
	}
	return out
}
