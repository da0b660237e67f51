package model

import "github.com/google/uuid"

// CartLine is a priced cart entry with the product resolved.
type CartLine struct {
	ProductID uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	UnitPrice int64
	Quantity  int
}

// Subtotal returns the line price in minor units.
func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// CartSnapshot is the priced cart as seen at checkout.
type CartSnapshot struct {
	CustomerID        uuid.UUID
	Items             []CartLine
	CartTotal         int64
	DiscountCartValue int64
	// Coupon is set only when the cart coupon applied, that is the cart reached its minimum value.
	Coupon *CouponSummary
}

// Empty reports whether the cart has nothing to buy.
func (c *CartSnapshot) Empty() bool {
	return c == nil || len(c.Items) == 0
}

// PayableAmount is the amount requested from the gateway. An applied coupon may bring it to zero.
func (c *CartSnapshot) PayableAmount() int64 {
	if c.Coupon != nil {
		return c.DiscountCartValue
	}
	return c.CartTotal
}
