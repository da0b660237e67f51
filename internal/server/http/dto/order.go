package dto

import "time"

// StatusRequest changes the status of an order.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// StatusResponse reports the order after a status change.
type StatusResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AddressResponse struct {
	ID      string `json:"id"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Pincode string `json:"pincode"`
}

type CouponResponse struct {
	ID   string `json:"id"`
	Code string `json:"couponCode"`
	Name string `json:"name"`
}

// CustomerResponse omits the email for sellers.
type CustomerResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username"`
}

type ProductResponse struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
}

type OrderItemResponse struct {
	Product  ProductResponse `json:"product"`
	Price    int64           `json:"price"`
	Quantity int             `json:"quantity"`
}

// OrderResponse is an order with its address, coupon, customer and items resolved.
type OrderResponse struct {
	ID                   string              `json:"id"`
	Items                []OrderItemResponse `json:"items"`
	TotalItems           int                 `json:"totalItems"`
	OrderPrice           int64               `json:"orderPrice"`
	DiscountedOrderPrice int64               `json:"discountedOrderPrice"`
	Currency             string              `json:"currency"`
	PaymentReference     string              `json:"paymentReference"`
	PaymentConfirmed     bool                `json:"paymentConfirmed"`
	Status               string              `json:"status"`
	Address              AddressResponse     `json:"address"`
	Coupon               *CouponResponse     `json:"coupon,omitempty"`
	Customer             CustomerResponse    `json:"customer"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// OrderListResponse is a page of orders.
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
	HasNext    bool            `json:"hasNext"`
	HasPrev    bool            `json:"hasPrev"`
}
