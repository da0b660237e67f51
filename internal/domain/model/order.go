package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed},
	OrderStatusConfirmed: {OrderStatusCancelled, OrderStatusDelivered},
}

// ParseOrderStatus converts user input into a known status.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCancelled, OrderStatusDelivered:
		return status, true
	}
	return "", false
}

// CanTransitionTo reports whether next directly follows s in the lifecycle.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ManualTransitionAllowed reports whether an operator may move an order from s to next.
// PENDING orders are confirmed only by a verified payment.
func (s OrderStatus) ManualTransitionAllowed(next OrderStatus) bool {
	return s != OrderStatusPending && s.CanTransitionTo(next)
}

// Terminal reports whether no further transition exists.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// OrderItem is a line of an order frozen at checkout time.
type OrderItem struct {
	ProductID uuid.UUID
	Price     int64
	Quantity  int
}

// Order is a purchase bound to a single gateway payment reference.
type Order struct {
	ID                   uuid.UUID
	CustomerID           uuid.UUID
	AddressID            uuid.UUID
	CouponID             *uuid.UUID
	Items                []OrderItem
	OrderPrice           int64
	DiscountedOrderPrice int64
	Currency             string
	PaymentReference     string
	Receipt              string
	PaymentConfirmed     bool
	GatewayPaymentID     string
	Status               OrderStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewPendingOrder freezes the cart snapshot into an order awaiting payment.
func NewPendingOrder(id, customerID, addressID uuid.UUID, cart *CartSnapshot, intent *PaymentIntent) *Order {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, OrderItem{ProductID: line.ProductID, Price: line.UnitPrice, Quantity: line.Quantity})
	}
	var couponID *uuid.UUID
	if cart.Coupon != nil {
		id := cart.Coupon.ID
		couponID = &id
	}
	return &Order{
		ID:                   id,
		CustomerID:           customerID,
		AddressID:            addressID,
		CouponID:             couponID,
		Items:                items,
		OrderPrice:           cart.CartTotal,
		DiscountedOrderPrice: cart.PayableAmount(),
		Currency:             intent.Currency,
		PaymentReference:     intent.GatewayOrderRef,
		Receipt:              intent.Receipt,
		Status:               OrderStatusPending,
	}
}
