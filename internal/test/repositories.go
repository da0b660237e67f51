package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// Coupon is a flat discount applied to carts reaching a minimum value.
type Coupon struct {
	ID               uuid.UUID
	Code             string
	Name             string
	DiscountValue    int64
	MinimumCartValue int64
}

// CartItem places quantity units of a product into a cart.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
}

type memoryCart struct {
	items  []CartItem
	coupon *Coupon
}

// MemoryStore keeps products, addresses, carts and orders in memory. It implements the order,
// address and cart repositories with the same confirmation semantics as the database.
type MemoryStore struct {
	mu sync.Mutex

	products  map[uuid.UUID]*model.ProductView
	addresses map[uuid.UUID]uuid.UUID
	carts     map[uuid.UUID]*memoryCart
	orders    map[uuid.UUID]*model.Order
	byRef     map[string]uuid.UUID
	receipts  map[string]struct{}
	// reconciled holds the claim sequence of each order; zero means never claimed.
	reconciled map[uuid.UUID]uint64
	claims     uint64

	Now func() time.Time

	CreateErr  error
	ConfirmErr error
	SnapshotFn func(context.Context, uuid.UUID) (*model.CartSnapshot, error)
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:   make(map[uuid.UUID]*model.ProductView),
		addresses:  make(map[uuid.UUID]uuid.UUID),
		carts:      make(map[uuid.UUID]*memoryCart),
		orders:     make(map[uuid.UUID]*model.Order),
		byRef:      make(map[string]uuid.UUID),
		receipts:   make(map[string]struct{}),
		reconciled: make(map[uuid.UUID]uint64),
		Now:        time.Now,
	}
}

// AddProduct registers a product owned by ownerID and returns its id.
func (s *MemoryStore) AddProduct(ownerID uuid.UUID, name string, price int64, stock int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.products[id] = &model.ProductView{ID: id, OwnerID: ownerID, Name: name, Price: price, Stock: stock}
	return id
}

// AddAddress registers an address of ownerID and returns its id.
func (s *MemoryStore) AddAddress(ownerID uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.addresses[id] = ownerID
	return id
}

// SetCart replaces the cart of customerID.
func (s *MemoryStore) SetCart(customerID uuid.UUID, coupon *Coupon, items ...CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[customerID] = &memoryCart{items: append([]CartItem(nil), items...), coupon: coupon}
}

// SetPrice changes the live price of a product.
func (s *MemoryStore) SetPrice(productID uuid.UUID, price int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[productID]; ok {
		p.Price = price
	}
}

// Stock returns the current stock of a product.
func (s *MemoryStore) Stock(productID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[productID]; ok {
		return p.Stock
	}
	return 0
}

// CartItems returns the number of lines in the cart of customerID.
func (s *MemoryStore) CartItems(customerID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[customerID]; ok {
		return len(c.items)
	}
	return 0
}

// CartCoupon returns the coupon attached to the cart of customerID.
func (s *MemoryStore) CartCoupon(customerID uuid.UUID) *Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[customerID]; ok {
		return c.coupon
	}
	return nil
}

// OrderCount returns the number of stored orders.
func (s *MemoryStore) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// OrderByReference returns a copy of the order bound to the gateway reference.
func (s *MemoryStore) OrderByReference(ref string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byRef[ref]
	if !ok {
		return model.Order{}, false
	}
	return copyOrder(s.orders[id]), true
}

// Backdate moves the creation time of an order into the past.
func (s *MemoryStore) Backdate(id uuid.UUID, age time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		o.CreatedAt = o.CreatedAt.Add(-age)
	}
}

func (s *MemoryStore) Create(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := s.byRef[order.PaymentReference]; exists {
		return domainErrors.ErrAlreadyExists
	}
	if _, exists := s.receipts[order.Receipt]; exists {
		return domainErrors.ErrAlreadyExists
	}
	now := s.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	stored := copyOrder(order)
	s.orders[order.ID] = &stored
	s.byRef[order.PaymentReference] = order.ID
	s.receipts[order.Receipt] = struct{}{}
	return nil
}

func (s *MemoryStore) ConfirmPayment(ctx context.Context, paymentReference, gatewayPaymentID string) (*model.FulfillmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ConfirmErr != nil {
		return nil, s.ConfirmErr
	}

	id, ok := s.byRef[paymentReference]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	order := s.orders[id]
	result := &model.FulfillmentResult{
		OrderID:          order.ID,
		CustomerID:       order.CustomerID,
		PaymentReference: paymentReference,
	}

	if order.PaymentConfirmed {
		result.GatewayPaymentID = order.GatewayPaymentID
		result.ConfirmedAt = order.UpdatedAt
		return result, nil
	}
	if order.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: order in status %s", domainErrors.ErrInvalidTransition, order.Status)
	}

	order.PaymentConfirmed = true
	order.Status = model.OrderStatusConfirmed
	order.GatewayPaymentID = gatewayPaymentID
	order.UpdatedAt = s.Now()

	result.Applied = true
	result.GatewayPaymentID = gatewayPaymentID
	result.ConfirmedAt = order.UpdatedAt
	result.Items = append([]model.OrderItem(nil), order.Items...)

	for _, item := range order.Items {
		product, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		product.Stock -= item.Quantity
		if product.Stock < 0 {
			result.NegativeStock = append(result.NegativeStock, model.StockLevel{ProductID: product.ID, Stock: product.Stock})
		}
	}

	if cart, ok := s.carts[order.CustomerID]; ok {
		cart.items = nil
		cart.coupon = nil
	}
	return result, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	o := copyOrder(order)
	return &o, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok || order.Status != from {
		return fmt.Errorf("%w: order is no longer %s", domainErrors.ErrInvalidTransition, from)
	}
	order.Status = to
	order.UpdatedAt = s.Now()
	return nil
}

func (s *MemoryStore) SellerOwnsItem(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, item := range order.Items {
		if p, ok := s.products[item.ProductID]; ok && p.OwnerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, o := range s.orders {
		if !o.PaymentConfirmed && o.Status == model.OrderStatusPending && o.CreatedAt.Before(createdBefore) {
			result = append(result, copyOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ri, rj := s.reconciled[result[i].ID], s.reconciled[result[j].ID]
		if ri != rj {
			return ri < rj
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	for _, o := range result {
		s.claims++
		s.reconciled[o.ID] = s.claims
	}
	return result, nil
}

func (s *MemoryStore) IsOwnedBy(ctx context.Context, addressID, customerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.addresses[addressID]
	return ok && owner == customerID, nil
}

func (s *MemoryStore) Snapshot(ctx context.Context, customerID uuid.UUID) (*model.CartSnapshot, error) {
	if s.SnapshotFn != nil {
		return s.SnapshotFn(ctx, customerID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[customerID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}

	snapshot := &model.CartSnapshot{CustomerID: customerID}
	for _, item := range cart.items {
		product, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		line := model.CartLine{
			ProductID: product.ID,
			OwnerID:   product.OwnerID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		}
		snapshot.Items = append(snapshot.Items, line)
		snapshot.CartTotal += line.Subtotal()
	}

	snapshot.DiscountCartValue = snapshot.CartTotal
	if c := cart.coupon; c != nil && snapshot.CartTotal >= c.MinimumCartValue {
		snapshot.Coupon = &model.CouponSummary{ID: c.ID, Code: c.Code, Name: c.Name}
		snapshot.DiscountCartValue = max(snapshot.CartTotal-c.DiscountValue, 0)
	}
	return snapshot, nil
}

func copyOrder(o *model.Order) model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return c
}

// OrderQueryStub allows tests to customize read projections.
type OrderQueryStub struct {
	DetailFn         func(context.Context, uuid.UUID) (*model.OrderDetail, error)
	CustomerOrdersFn func(context.Context, uuid.UUID, model.OrderFilter) ([]model.OrderSummary, int, error)
	SellerOrdersFn   func(context.Context, uuid.UUID, model.OrderFilter) ([]model.SellerOrder, int, error)
}

func (s OrderQueryStub) Detail(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error) {
	if s.DetailFn != nil {
		return s.DetailFn(ctx, orderID)
	}
	return nil, domainErrors.ErrOrderNotFound
}

func (s OrderQueryStub) CustomerOrders(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) ([]model.OrderSummary, int, error) {
	if s.CustomerOrdersFn != nil {
		return s.CustomerOrdersFn(ctx, customerID, filter)
	}
	return nil, 0, nil
}

func (s OrderQueryStub) SellerOrders(ctx context.Context, sellerID uuid.UUID, filter model.OrderFilter) ([]model.SellerOrder, int, error) {
	if s.SellerOrdersFn != nil {
		return s.SellerOrdersFn(ctx, sellerID, filter)
	}
	return nil, 0, nil
}
