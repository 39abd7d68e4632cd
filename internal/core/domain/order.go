package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", Validation("invalid order status: %q", s)
}

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "Credit Card"
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentBankTransfer   PaymentMethod = "Bank Transfer"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCreditCard, PaymentCashOnDelivery, PaymentBankTransfer:
		return PaymentMethod(s), nil
	}
	return "", Validation("invalid payment method: %q", s)
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentRefunded  PaymentStatus = "Refunded"
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{13,19}$`)
	postalCodeRe = regexp.MustCompile(`^\d{5,6}$`)
)

// ValidCardNumber accepts 13-19 digits. The number is only format-checked,
// never charged.
func ValidCardNumber(s string) bool {
	return cardNumberRe.MatchString(s)
}

type ShippingAddress struct {
	Address    string
	City       string
	PostalCode string
	Phone      string
}

func (a ShippingAddress) Validate() error {
	if a.Address == "" {
		return Validation("shipping address is required")
	}
	if a.City == "" {
		return Validation("shipping city is required")
	}
	if a.Phone == "" {
		return Validation("shipping phone is required")
	}
	if a.PostalCode != "" && !postalCodeRe.MatchString(a.PostalCode) {
		return Validation("postal code must be 5 to 6 digits")
	}
	return nil
}

// OrderItem freezes the price the buyer paid; later catalog price changes
// never touch it.
type OrderItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// StatusChange is one entry in the order's append-only audit log.
type StatusChange struct {
	Status    OrderStatus
	ChangedAt time.Time
	ChangedBy string
}

type Order struct {
	ID              string
	BuyerID         string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	TotalAmount     decimal.Decimal
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	Status          OrderStatus
	StatusHistory   []StatusChange
	TrackingNumber  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Cancellable reports whether the cancel entry point may act on the order.
func (o *Order) Cancellable() bool {
	return o.Status == StatusProcessing || o.Status == StatusShipped
}

// ProductIDs returns the distinct product references across the line items.
func (o *Order) ProductIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
