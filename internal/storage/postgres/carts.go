package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// Snapshot prices the cart with live product prices and the coupon's flat discount.
func (r *cartRepository) Snapshot(ctx context.Context, customerID uuid.UUID) (*model.CartSnapshot, error) {
	const cartQuery = `SELECT c.owner_id, cp.id, cp.coupon_code, cp.name, cp.discount_value, cp.minimum_cart_value
                       FROM carts c LEFT JOIN coupons cp ON cp.id = c.coupon_id
                       WHERE c.owner_id=$1`
	const itemsQuery = `SELECT ci.product_id, p.owner_id, p.name, p.price, ci.quantity
                        FROM cart_items ci JOIN products p ON p.id = ci.product_id
                        WHERE ci.owner_id=$1
                        ORDER BY ci.added_at, ci.product_id`

	var (
		snapshot      model.CartSnapshot
		couponID      *uuid.UUID
		couponCode    *string
		couponName    *string
		discountValue *int64
		minimumValue  *int64
	)
	err := r.storage.pool.QueryRow(ctx, cartQuery, customerID).
		Scan(&snapshot.CustomerID, &couponID, &couponCode, &couponName, &discountValue, &minimumValue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	rows, err := r.storage.pool.Query(ctx, itemsQuery, customerID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line model.CartLine
		if err := rows.Scan(&line.ProductID, &line.OwnerID, &line.Name, &line.UnitPrice, &line.Quantity); err != nil {
			return nil, err
		}
		snapshot.Items = append(snapshot.Items, line)
		snapshot.CartTotal += line.Subtotal()
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snapshot.DiscountCartValue = snapshot.CartTotal
	if couponID != nil && discountValue != nil && (minimumValue == nil || snapshot.CartTotal >= *minimumValue) {
		snapshot.Coupon = &model.CouponSummary{ID: *couponID, Code: deref(couponCode), Name: deref(couponName)}
		snapshot.DiscountCartValue = max(snapshot.CartTotal-*discountValue, 0)
	}

	return &snapshot, nil
}

func (r *addressRepository) IsOwnedBy(ctx context.Context, addressID, customerID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM addresses WHERE id=$1 AND owner_id=$2)`
	var owned bool
	if err := r.storage.pool.QueryRow(ctx, query, addressID, customerID).Scan(&owned); err != nil {
		return false, err
	}
	return owned, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
