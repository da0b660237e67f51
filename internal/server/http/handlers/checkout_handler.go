package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// CheckoutHandler serves checkout and the gateway payment callback.
type CheckoutHandler struct {
	facade     CheckoutFacade
	successURL string
	logger     *slog.Logger
}

// NewCheckoutHandler constructs CheckoutHandler. Confirmed payments are redirected to successURL.
func NewCheckoutHandler(facade CheckoutFacade, successURL string, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{facade: facade, successURL: successURL, logger: logger}
}

// Checkout handles POST /api/orders/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domainErrors.ErrInvalidInput)
		return
	}
	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		writeError(c, domainErrors.ErrInvalidInput)
		return
	}

	identity := CurrentIdentity(c)
	session, err := h.facade.InitiateCheckout(c.Request.Context(), identity.UserID, addressID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{
		Key:      session.KeyID,
		Amount:   session.Amount,
		Currency: session.Currency,
		Intent:   session.Intent,
	})
}

// Verify handles POST /api/orders/verify. Duplicate callbacks redirect like the first one.
func (h *CheckoutHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, domainErrors.ErrInvalidInput)
		return
	}

	result, err := h.facade.ConfirmPayment(c.Request.Context(), model.PaymentConfirmation{
		GatewayOrderRef:   req.OrderID,
		GatewayPaymentRef: req.PaymentID,
		Signature:         req.Signature,
		CustomerID:        CurrentIdentity(c).UserID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if !result.Applied {
		h.logger.Debug("redirecting duplicate payment callback", slog.String("order_id", result.OrderID.String()))
	}
	c.Redirect(http.StatusSeeOther, h.redirectURL(req.PaymentID))
}

func (h *CheckoutHandler) redirectURL(paymentRef string) string {
	target, err := url.Parse(h.successURL)
	if err != nil {
		return h.successURL + "?ref=" + url.QueryEscape(paymentRef)
	}
	query := target.Query()
	query.Set("ref", paymentRef)
	target.RawQuery = query.Encode()
	return target.String()
}
