package dto

import "encoding/json"

// CheckoutRequest selects the shipping address for the current cart.
type CheckoutRequest struct {
	AddressID string `json:"addressId" binding:"required,uuid"`
}

// CheckoutResponse carries what the buyer needs to open the gateway payment form.
type CheckoutResponse struct {
	Key      string          `json:"key"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Intent   json.RawMessage `json:"intent"`
}

// VerifyRequest is the payment callback posted by the gateway checkout form.
type VerifyRequest struct {
	OrderID   string `form:"razorpay_order_id" json:"razorpay_order_id"`
	PaymentID string `form:"razorpay_payment_id" json:"razorpay_payment_id"`
	Signature string `form:"razorpay_signature" json:"razorpay_signature"`
}
