package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	identity := CurrentIdentity(c)
	page, err := h.facade.MyOrders(c.Request.Context(), identity.UserID, pageRequest(c), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderListResponse(page))
}

// Detail handles GET /api/orders/:orderId.
func (h *OrderHandler) Detail(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	detail, err := h.facade.OrderDetail(c.Request.Context(), orderID, CurrentIdentity(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*detail))
}

// AdminList handles GET /api/admin/orders.
func (h *OrderHandler) AdminList(c *gin.Context) {
	page, err := h.facade.SellerOrders(c.Request.Context(), CurrentIdentity(c), pageRequest(c), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderListResponse(page))
}

// SetStatus handles PATCH /api/admin/orders/:orderId/status.
func (h *OrderHandler) SetStatus(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domainErrors.ErrInvalidInput)
		return
	}

	order, err := h.facade.SetOrderStatus(c.Request.Context(), orderID, req.Status, CurrentIdentity(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{ID: order.ID.String(), Status: string(order.Status), UpdatedAt: order.UpdatedAt})
}

func toOrderListResponse(page *model.Page[model.OrderDetail]) dto.OrderListResponse {
	orders := make([]dto.OrderResponse, 0, len(page.Items))
	for _, o := range page.Items {
		orders = append(orders, toOrderResponse(o))
	}
	return dto.OrderListResponse{
		Orders:     orders,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext(),
		HasPrev:    page.HasPrev(),
	}
}

func toOrderResponse(o model.OrderDetail) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, line := range o.Items {
		items = append(items, dto.OrderItemResponse{
			Product: dto.ProductResponse{
				ID:          line.Product.ID.String(),
				Owner:       line.Product.OwnerID.String(),
				Name:        line.Product.Name,
				Description: line.Product.Description,
				Price:       line.Product.Price,
				Stock:       line.Product.Stock,
			},
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}

	resp := dto.OrderResponse{
		ID:                   o.ID.String(),
		Items:                items,
		TotalItems:           o.TotalItems(),
		OrderPrice:           o.OrderPrice,
		DiscountedOrderPrice: o.DiscountedOrderPrice,
		Currency:             o.Currency,
		PaymentReference:     o.PaymentReference,
		PaymentConfirmed:     o.PaymentConfirmed,
		Status:               string(o.Status),
		Address: dto.AddressResponse{
			ID:      o.Address.ID.String(),
			Line1:   o.Address.Line1,
			Line2:   o.Address.Line2,
			City:    o.Address.City,
			State:   o.Address.State,
			Country: o.Address.Country,
			Pincode: o.Address.Pincode,
		},
		Customer: dto.CustomerResponse{
			ID:       o.Customer.ID.String(),
			Email:    o.Customer.Email,
			Username: o.Customer.Username,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.Coupon != nil {
		resp.Coupon = &dto.CouponResponse{ID: o.Coupon.ID.String(), Code: o.Coupon.Code, Name: o.Coupon.Name}
	}
	return resp
}
