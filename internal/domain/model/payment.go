package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentIntent is a gateway-side order created for checkout.
type PaymentIntent struct {
	GatewayOrderRef string
	Amount          int64
	Currency        string
	Receipt         string
	Payload         json.RawMessage
}

// CheckoutSession is handed to the buyer to complete payment at the gateway.
type CheckoutSession struct {
	KeyID    string
	Amount   int64
	Currency string
	Intent   json.RawMessage
}

// PaymentConfirmation is the callback received after the buyer pays.
type PaymentConfirmation struct {
	GatewayOrderRef   string
	GatewayPaymentRef string
	Signature         string
	CustomerID        uuid.UUID
}

// GatewayPaymentStatus mirrors payment states reported by the gateway.
type GatewayPaymentStatus string

const (
	GatewayPaymentCreated    GatewayPaymentStatus = "created"
	GatewayPaymentAuthorized GatewayPaymentStatus = "authorized"
	GatewayPaymentCaptured   GatewayPaymentStatus = "captured"
	GatewayPaymentRefunded   GatewayPaymentStatus = "refunded"
	GatewayPaymentFailed     GatewayPaymentStatus = "failed"
)

// GatewayPayment is a payment attempt recorded against a gateway order.
type GatewayPayment struct {
	ID       string
	OrderRef string
	Status   GatewayPaymentStatus
	Amount   int64
}

// StockLevel is the stock of a product after a decrement.
type StockLevel struct {
	ProductID uuid.UUID
	Stock     int
}

// FulfillmentResult describes the outcome of a payment confirmation.
type FulfillmentResult struct {
	OrderID          uuid.UUID
	CustomerID       uuid.UUID
	PaymentReference string
	GatewayPaymentID string
	// Applied is false when the payment had already been confirmed.
	Applied       bool
	Items         []OrderItem
	NegativeStock []StockLevel
	ConfirmedAt   time.Time
}
