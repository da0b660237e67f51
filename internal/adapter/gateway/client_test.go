package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewHTTPClient(server.URL, "rzp_key", "rzp_secret", time.Second, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", "k", "s", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", "k", "s", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
	client, err := NewHTTPClient("http://gateway.local", "k", "s", 0, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.httpClient.Timeout != 10*time.Second {
		t.Fatalf("expected default timeout, got %v", client.httpClient.Timeout)
	}
}

func TestCreateIntentSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_key" || pass != "rzp_secret" {
			t.Errorf("unexpected basic auth %q %q", user, pass)
		}
		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Amount != 1800 || req.Currency != "INR" || req.Receipt != "rcpt_1" {
			t.Errorf("unexpected body %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","entity":"order","amount":1800,"currency":"INR","receipt":"rcpt_1","status":"created"}`))
	})

	intent, err := client.CreateIntent(context.Background(), 1800, "INR", "rcpt_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.GatewayOrderRef != "order_abc" || intent.Amount != 1800 || intent.Receipt != "rcpt_1" {
		t.Fatalf("unexpected intent %+v", intent)
	}
	var raw map[string]any
	if err := json.Unmarshal(intent.Payload, &raw); err != nil || raw["status"] != "created" {
		t.Fatalf("expected raw payload to be preserved, got %s", intent.Payload)
	}
}

func TestCreateIntentFailures(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		header     map[string]string
		wantStatus int
		wantReason string
	}{
		{
			name:       "bad request with description",
			status:     http.StatusBadRequest,
			body:       `{"error":{"code":"BAD_REQUEST_ERROR","description":"Order amount less than minimum amount allowed"}}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "Order amount less than minimum amount allowed",
		},
		{
			name:       "unauthorized with code only",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"code":"BAD_REQUEST_ERROR"}}`,
			wantStatus: http.StatusUnauthorized,
			wantReason: "BAD_REQUEST_ERROR",
		},
		{
			name:       "server error without body",
			status:     http.StatusInternalServerError,
			wantStatus: http.StatusInternalServerError,
			wantReason: "500 Internal Server Error",
		},
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			header:     map[string]string{"Retry-After": "7"},
			wantStatus: http.StatusTooManyRequests,
			wantReason: "rate limited",
		},
		{
			name:       "missing id",
			status:     http.StatusOK,
			body:       `{"entity":"order"}`,
			wantStatus: http.StatusBadGateway,
			wantReason: "gateway response has no order id",
		},
		{
			name:       "malformed body",
			status:     http.StatusOK,
			body:       `not-json`,
			wantStatus: http.StatusBadGateway,
			wantReason: "malformed gateway response",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tc.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.CreateIntent(context.Background(), 100, "INR", "r")
			var gwErr *domainErrors.GatewayError
			if !errors.As(err, &gwErr) {
				t.Fatalf("expected gateway error, got %v", err)
			}
			if gwErr.StatusCode != tc.wantStatus || gwErr.Reason != tc.wantReason {
				t.Fatalf("unexpected gateway error %+v", gwErr)
			}
			if !errors.Is(err, domainErrors.ErrPaymentGateway) {
				t.Fatal("expected error to match ErrPaymentGateway")
			}
			if tc.status == http.StatusTooManyRequests && gwErr.RetryAfter != 7*time.Second {
				t.Fatalf("expected retry after 7s, got %v", gwErr.RetryAfter)
			}
		})
	}
}

func TestCreateIntentTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.CreateIntent(ctx, 100, "INR", "r")
	var gwErr *domainErrors.GatewayError
	if !errors.As(err, &gwErr) || gwErr.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("expected gateway timeout error, got %v", err)
	}
}

func TestOrderPayments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/orders/order_abc/payments" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"entity":"collection","count":2,"items":[
			{"id":"pay_1","order_id":"order_abc","status":"failed","amount":1800},
			{"id":"pay_2","status":"captured","amount":1800}
		]}`))
	})

	payments, err := client.OrderPayments(context.Background(), "order_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected two payments, got %d", len(payments))
	}
	if payments[1].ID != "pay_2" || payments[1].Status != model.GatewayPaymentCaptured || payments[1].OrderRef != "order_abc" {
		t.Fatalf("unexpected payment %+v", payments[1])
	}
}

func TestOrderPaymentsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`))
	})

	_, err := client.OrderPayments(context.Background(), "order_missing")
	var gwErr *domainErrors.GatewayError
	if !errors.As(err, &gwErr) || gwErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found gateway error, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != defaultRetryAfter {
		t.Fatalf("expected default, got %v", got)
	}
	if got := parseRetryAfter("3"); got != 3*time.Second {
		t.Fatalf("expected 3s, got %v", got)
	}
	if got := parseRetryAfter("soon"); got != defaultRetryAfter {
		t.Fatalf("expected default for garbage, got %v", got)
	}
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 || got > time.Minute {
		t.Fatalf("expected positive duration up to a minute, got %v", got)
	}
}
