package test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// IntentCall records a CreateIntent invocation.
type IntentCall struct {
	Amount   int64
	Currency string
	Receipt  string
}

// GatewayStub emulates the payment gateway.
type GatewayStub struct {
	mu sync.Mutex

	CreateIntentFn  func(context.Context, int64, string, string) (*model.PaymentIntent, error)
	OrderPaymentsFn func(context.Context, string) ([]model.GatewayPayment, error)

	Intents      []IntentCall
	PaymentCalls []string
}

// CreateIntent returns a fresh gateway order unless overridden.
func (g *GatewayStub) CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*model.PaymentIntent, error) {
	g.mu.Lock()
	g.Intents = append(g.Intents, IntentCall{Amount: amount, Currency: currency, Receipt: receipt})
	g.mu.Unlock()

	if g.CreateIntentFn != nil {
		return g.CreateIntentFn(ctx, amount, currency, receipt)
	}
	ref := RandomReference("order")
	payload, err := json.Marshal(map[string]any{
		"id":       ref,
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"status":   "created",
	})
	if err != nil {
		return nil, err
	}
	return &model.PaymentIntent{GatewayOrderRef: ref, Amount: amount, Currency: currency, Receipt: receipt, Payload: payload}, nil
}

// OrderPayments lists no payments unless overridden.
func (g *GatewayStub) OrderPayments(ctx context.Context, orderRef string) ([]model.GatewayPayment, error) {
	g.mu.Lock()
	g.PaymentCalls = append(g.PaymentCalls, orderRef)
	g.mu.Unlock()

	if g.OrderPaymentsFn != nil {
		return g.OrderPaymentsFn(ctx, orderRef)
	}
	return nil, nil
}

// IntentCount returns the number of CreateIntent calls.
func (g *GatewayStub) IntentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Intents)
}

// PublisherStub records published fulfillment events.
type PublisherStub struct {
	mu     sync.Mutex
	Events []*model.FulfillmentResult
	Err    error
}

func (p *PublisherStub) PublishOrderConfirmed(ctx context.Context, result *model.FulfillmentResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, result)
	return nil
}

// Count returns the number of recorded events.
func (p *PublisherStub) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events)
}
