package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit well inside the range of a SQL OFFSET.
	MaxPage = 1_000_000
)

// PageRequest selects a window of a paginated listing.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest applies defaults to non-positive values and caps the page and limit.
func NewPageRequest(page, limit int) PageRequest {
	if page <= 0 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset returns the number of rows skipped before the page.
func (p PageRequest) Offset() int {
	page, limit := min(p.Page, MaxPage), min(p.Limit, MaxLimit)
	if page <= 1 || limit <= 0 {
		return 0
	}
	return (page - 1) * limit
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status OrderStatus
	PageRequest
}

// Page is a slice of a listing together with navigation data.
type Page[T any] struct {
	Items      []T
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// NewPage builds page metadata for the requested window.
func NewPage[T any](items []T, req PageRequest, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Limit > 0 {
		pages = (total + req.Limit - 1) / req.Limit
	}
	return &Page[T]{Items: items, Page: req.Page, Limit: req.Limit, Total: total, TotalPages: pages}
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether an earlier non-empty page exists.
func (p *Page[T]) HasPrev() bool {
	return p.Page > 1 && p.TotalPages > 0
}

type AddressView struct {
	ID      uuid.UUID
	Line1   string
	Line2   string
	City    string
	State   string
	Country string
	Pincode string
}

type CouponSummary struct {
	ID   uuid.UUID
	Code string
	Name string
}

// CustomerSummary is the buyer as shown in projections. Email is left empty for sellers.
type CustomerSummary struct {
	ID       uuid.UUID
	Email    string
	Username string
}

type ProductView struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	Price       int64
	Stock       int
}

// OrderLine is an order item with its product resolved.
type OrderLine struct {
	Price    int64
	Quantity int
	Product  ProductView
}

// OrderDetail is the full projection of a single order.
type OrderDetail struct {
	ID                   uuid.UUID
	Items                []OrderLine
	OrderPrice           int64
	DiscountedOrderPrice int64
	Currency             string
	PaymentReference     string
	PaymentConfirmed     bool
	Status               OrderStatus
	Address              AddressView
	Coupon               *CouponSummary
	Customer             CustomerSummary
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TotalItems returns the number of order lines.
func (d *OrderDetail) TotalItems() int {
	return len(d.Items)
}

// OwnsAnyItem reports whether sellerID owns a product in the order.
func (d *OrderDetail) OwnsAnyItem(sellerID uuid.UUID) bool {
	for _, line := range d.Items {
		if line.Product.OwnerID == sellerID {
			return true
		}
	}
	return false
}

// ForSeller returns a copy holding only the seller's own lines and no customer email.
func (d *OrderDetail) ForSeller(sellerID uuid.UUID) *OrderDetail {
	view := *d
	view.Customer.Email = ""
	view.Items = make([]OrderLine, 0, len(d.Items))
	for _, line := range d.Items {
		if line.Product.OwnerID == sellerID {
			view.Items = append(view.Items, line)
		}
	}
	return &view
}

// OrderSummary is a row of the customer order history.
type OrderSummary = OrderDetail

// SellerOrder is an order as seen by a seller: only the seller's own lines and no customer email.
type SellerOrder = OrderDetail
