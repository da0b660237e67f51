package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func newEngine(facade testhelpers.StorefrontFacadeStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{SuccessRedirectURL: "http://shop.local/paymentsuccess"}
	return Setup(facade, cfg, logger)
}

func serve(engine *gin.Engine, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestSetupRoutes(t *testing.T) {
	customer := model.Identity{UserID: uuid.New(), Role: model.RoleCustomer}
	facade := testhelpers.StorefrontFacadeStub{TokenParserStub: testhelpers.TokenParserStub{Identity: customer}}
	engine := newEngine(facade)
	auth := map[string]string{"Authorization": "Bearer token", "Content-Type": "application/json"}

	cases := []struct {
		name    string
		method  string
		target  string
		body    string
		headers map[string]string
		want    int
	}{
		{name: "checkout", method: http.MethodPost, target: "/api/orders/checkout", body: `{"addressId":"` + uuid.NewString() + `"}`, headers: auth, want: http.StatusOK},
		{name: "checkout anonymous", method: http.MethodPost, target: "/api/orders/checkout", body: `{}`, want: http.StatusUnauthorized},
		{name: "history", method: http.MethodGet, target: "/api/orders", headers: auth, want: http.StatusOK},
		{name: "detail", method: http.MethodGet, target: "/api/orders/" + uuid.NewString(), headers: auth, want: http.StatusNotFound},
		{name: "admin as customer", method: http.MethodGet, target: "/api/admin/orders", headers: auth, want: http.StatusForbidden},
		{name: "admin anonymous", method: http.MethodGet, target: "/api/admin/orders", want: http.StatusUnauthorized},
		{
			name:    "verify anonymous",
			method:  http.MethodPost,
			target:  "/api/orders/verify",
			body:    "razorpay_order_id=o&razorpay_payment_id=p&razorpay_signature=s",
			headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
			want:    http.StatusSeeOther,
		},
		{name: "health", method: http.MethodGet, target: "/healthz", want: http.StatusOK},
		{name: "metrics", method: http.MethodGet, target: "/metrics", want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := serve(engine, tc.method, tc.target, strings.NewReader(tc.body), tc.headers)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestAdminRoutesForSellers(t *testing.T) {
	seller := model.Identity{UserID: uuid.New(), Role: model.RoleSeller}
	var gotStatus string
	facade := testhelpers.StorefrontFacadeStub{
		TokenParserStub: testhelpers.TokenParserStub{Identity: seller},
		SetOrderStatusFn: func(_ context.Context, id uuid.UUID, status string, requester model.Identity) (*model.Order, error) {
			if requester != seller {
				t.Fatalf("unexpected requester %+v", requester)
			}
			gotStatus = status
			return &model.Order{ID: id, Status: model.OrderStatusDelivered}, nil
		},
	}
	engine := newEngine(facade)
	headers := map[string]string{"Authorization": "Bearer token", "Content-Type": "application/json"}

	resp := serve(engine, http.MethodGet, "/api/admin/orders?status=CONFIRMED", nil, headers)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for seller listing, got %d", resp.Code)
	}

	resp = serve(engine, http.MethodPatch, "/api/admin/orders/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"DELIVERED"}`), headers)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for status change, got %d: %s", resp.Code, resp.Body.String())
	}
	if gotStatus != "DELIVERED" {
		t.Fatalf("unexpected status forwarded %q", gotStatus)
	}
}

func TestVerifyIgnoresInvalidToken(t *testing.T) {
	var got model.PaymentConfirmation
	facade := testhelpers.StorefrontFacadeStub{
		TokenParserStub: testhelpers.TokenParserStub{Err: pkgAuth.ErrInvalidToken},
		ConfirmPaymentFn: func(_ context.Context, in model.PaymentConfirmation) (*model.FulfillmentResult, error) {
			got = in
			return &model.FulfillmentResult{Applied: true}, nil
		},
	}
	engine := newEngine(facade)

	resp := serve(engine, http.MethodPost, "/api/orders/verify",
		strings.NewReader("razorpay_order_id=o&razorpay_payment_id=p&razorpay_signature=s"),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded", "Authorization": "Bearer expired"})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.Code)
	}
	if got.CustomerID != uuid.Nil {
		t.Fatalf("expected anonymous confirmation, got %s", got.CustomerID)
	}
}

var _ handlers.StorefrontFacade = testhelpers.StorefrontFacadeStub{}
