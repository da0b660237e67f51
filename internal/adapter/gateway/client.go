package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const defaultRetryAfter = 5 * time.Second

// Client exposes the payment gateway operations used by checkout and reconciliation.
type Client interface {
	CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*model.PaymentIntent, error)
	OrderPayments(ctx context.Context, orderRef string) ([]model.GatewayPayment, error)
}

// HTTPClient talks to a Razorpay-compatible orders API.
type HTTPClient struct {
	baseURL    *url.URL
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     *slog.Logger
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type paymentsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
		Amount  int64  `json:"amount"`
	} `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Reason      string `json:"reason"`
	} `json:"error"`
}

// NewHTTPClient creates a gateway client authenticated with the key pair.
func NewHTTPClient(baseURL, keyID, keySecret string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:   parsed,
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// CreateIntent registers a gateway order for the amount in minor units.
func (c *HTTPClient) CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*model.PaymentIntent, error) {
	body, err := json.Marshal(createOrderRequest{Amount: amount, Currency: currency, Receipt: receipt})
	if err != nil {
		return nil, err
	}

	payload, err := c.do(ctx, http.MethodPost, "/v1/orders", body)
	if err != nil {
		return nil, err
	}

	var data orderResponse
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &domainErrors.GatewayError{StatusCode: http.StatusBadGateway, Reason: "malformed gateway response"}
	}
	if data.ID == "" {
		return nil, &domainErrors.GatewayError{StatusCode: http.StatusBadGateway, Reason: "gateway response has no order id"}
	}

	return &model.PaymentIntent{
		GatewayOrderRef: data.ID,
		Amount:          amount,
		Currency:        currency,
		Receipt:         receipt,
		Payload:         json.RawMessage(payload),
	}, nil
}

// OrderPayments lists payment attempts made against a gateway order.
func (c *HTTPClient) OrderPayments(ctx context.Context, orderRef string) ([]model.GatewayPayment, error) {
	payload, err := c.do(ctx, http.MethodGet, path.Join("/v1/orders", orderRef, "payments"), nil)
	if err != nil {
		return nil, err
	}

	var data paymentsResponse
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &domainErrors.GatewayError{StatusCode: http.StatusBadGateway, Reason: "malformed gateway response"}
	}

	payments := make([]model.GatewayPayment, 0, len(data.Items))
	for _, item := range data.Items {
		orderID := item.OrderID
		if orderID == "" {
			orderID = orderRef
		}
		payments = append(payments, model.GatewayPayment{
			ID:       item.ID,
			OrderRef: orderID,
			Status:   model.GatewayPaymentStatus(item.Status),
			Amount:   item.Amount,
		})
	}
	return payments, nil
}

func (c *HTTPClient) do(ctx context.Context, method, apiPath string, body []byte) ([]byte, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, apiPath)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return payload, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &domainErrors.GatewayError{
			StatusCode: resp.StatusCode,
			Reason:     "rate limited",
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		reason := errorReason(payload, resp.Status)
		c.logger.Error("gateway request failed",
			slog.String("method", method),
			slog.String("path", apiPath),
			slog.Int("status", resp.StatusCode),
			slog.String("reason", reason),
		)
		return nil, &domainErrors.GatewayError{StatusCode: resp.StatusCode, Reason: reason}
	}
}

func transportError(err error) error {
	status := http.StatusBadGateway
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		status = http.StatusGatewayTimeout
	}
	return fmt.Errorf("%w: %w", &domainErrors.GatewayError{StatusCode: status, Reason: "gateway unreachable"}, err)
}

func errorReason(payload []byte, fallback string) string {
	var data errorResponse
	if err := json.Unmarshal(payload, &data); err == nil {
		switch {
		case data.Error.Description != "":
			return data.Error.Description
		case data.Error.Reason != "":
			return data.Error.Reason
		case data.Error.Code != "":
			return data.Error.Code
		}
	}
	return fallback
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return defaultRetryAfter
}
