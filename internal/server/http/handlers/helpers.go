package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// CurrentIdentity extracts the authenticated caller from context.
func CurrentIdentity(c *gin.Context) model.Identity {
	identity, _ := middleware.Identity(c)
	return identity
}

func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		writeError(c, domainErrors.ErrInvalidInput)
		return uuid.Nil, false
	}
	return id, true
}

// pageRequest reads page and limit, falling back to defaults for missing or malformed values.
func pageRequest(c *gin.Context) model.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return model.NewPageRequest(page, limit)
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrInvalidSignature, http.StatusBadRequest, "invalid_signature"},
	{domainErrors.ErrAddressNotOwned, http.StatusBadRequest, "address_not_owned"},
	{domainErrors.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{domainErrors.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{domainErrors.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domainErrors.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domainErrors.ErrAlreadyExists, http.StatusConflict, "conflict"},
	{domainErrors.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domainErrors.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{domainErrors.ErrNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrConsistency, http.StatusInternalServerError, "consistency_error"},
}

// writeError renders err as a JSON error body with the matching status.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var gwErr *domainErrors.GatewayError
	if errors.As(err, &gwErr) {
		c.JSON(gatewayStatus(gwErr.StatusCode), dto.ErrorResponse{Error: gwErr.Error(), Code: "gateway_error"})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message := err.Error()
			if m.status >= http.StatusInternalServerError {
				message = m.target.Error()
			}
			c.JSON(m.status, dto.ErrorResponse{Error: message, Code: m.code})
			return
		}
	}

	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error", Code: "internal_error"})
}

// gatewayStatus passes gateway statuses through except for authentication failures, which are ours.
func gatewayStatus(status int) int {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return http.StatusBadGateway
	case status >= 400 && status < 600:
		return status
	default:
		return http.StatusBadGateway
	}
}
