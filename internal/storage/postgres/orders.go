package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const orderColumns = `id, customer_id, address_id, coupon_id, order_price, discounted_order_price, currency,
                      payment_reference, receipt, payment_confirmed, gateway_payment_id, status, created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.CustomerID, &o.AddressID, &o.CouponID, &o.OrderPrice, &o.DiscountedOrderPrice, &o.Currency,
		&o.PaymentReference, &o.Receipt, &o.PaymentConfirmed, &o.GatewayPaymentID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const insertOrder = `INSERT INTO orders (id, customer_id, address_id, coupon_id, order_price, discounted_order_price,
                         currency, payment_reference, receipt, status)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                         RETURNING created_at, updated_at`
	const insertItem = `INSERT INTO order_items (order_id, position, product_id, price, quantity) VALUES ($1, $2, $3, $4, $5)`

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrder,
			order.ID, order.CustomerID, order.AddressID, order.CouponID, order.OrderPrice, order.DiscountedOrderPrice,
			order.Currency, order.PaymentReference, order.Receipt, order.Status,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domainErrors.ErrAlreadyExists
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for i, item := range order.Items {
			if _, err := tx.Exec(ctx, insertItem, order.ID, i, item.ProductID, item.Price, item.Quantity); err != nil {
				return fmt.Errorf("insert order item %d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *orderRepository) ConfirmPayment(ctx context.Context, paymentReference, gatewayPaymentID string) (*model.FulfillmentResult, error) {
	const confirmOrder = `UPDATE orders
                          SET payment_confirmed=TRUE, status='CONFIRMED', gateway_payment_id=$2, updated_at=NOW()
                          WHERE payment_reference=$1 AND payment_confirmed=FALSE AND status='PENDING'
                          RETURNING id, customer_id, updated_at`
	const decrementStock = `UPDATE products SET stock = stock - $2 WHERE id=$1 RETURNING stock`
	const clearCartItems = `DELETE FROM cart_items WHERE owner_id=$1`
	const clearCartCoupon = `UPDATE carts SET coupon_id=NULL, updated_at=NOW() WHERE owner_id=$1`

	result := &model.FulfillmentResult{PaymentReference: paymentReference, GatewayPaymentID: gatewayPaymentID}

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, confirmOrder, paymentReference, gatewayPaymentID).
			Scan(&result.OrderID, &result.CustomerID, &result.ConfirmedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.resolveUnconfirmed(ctx, tx, result)
			}
			return fmt.Errorf("confirm order: %w", err)
		}
		result.Applied = true

		items, err := listItems(ctx, tx, result.OrderID)
		if err != nil {
			return err
		}
		result.Items = items

		for _, item := range items {
			var stock int
			if err := tx.QueryRow(ctx, decrementStock, item.ProductID, item.Quantity).Scan(&stock); err != nil {
				return fmt.Errorf("decrement stock of %s: %w", item.ProductID, err)
			}
			if stock < 0 {
				result.NegativeStock = append(result.NegativeStock, model.StockLevel{ProductID: item.ProductID, Stock: stock})
			}
		}

		if _, err := tx.Exec(ctx, clearCartItems, result.CustomerID); err != nil {
			return fmt.Errorf("clear cart items: %w", err)
		}
		if _, err := tx.Exec(ctx, clearCartCoupon, result.CustomerID); err != nil {
			return fmt.Errorf("clear cart coupon: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveUnconfirmed explains why the confirmation update matched no row.
func (r *orderRepository) resolveUnconfirmed(ctx context.Context, tx pgx.Tx, result *model.FulfillmentResult) error {
	const lookup = `SELECT id, customer_id, payment_confirmed, gateway_payment_id, status, updated_at
                    FROM orders WHERE payment_reference=$1`

	var (
		confirmed bool
		status    model.OrderStatus
	)
	err := tx.QueryRow(ctx, lookup, result.PaymentReference).
		Scan(&result.OrderID, &result.CustomerID, &confirmed, &result.GatewayPaymentID, &status, &result.ConfirmedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrOrderNotFound
		}
		return fmt.Errorf("lookup order: %w", err)
	}

	if !confirmed {
		return fmt.Errorf("%w: order in status %s", domainErrors.ErrInvalidTransition, status)
	}

	r.storage.logger.Debug("payment already confirmed",
		slog.String("payment_reference", result.PaymentReference),
		slog.String("order_id", result.OrderID.String()),
	)
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listItems(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderItem, error) {
	const query = `SELECT product_id, price, quantity FROM order_items WHERE order_id=$1 ORDER BY position`
	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	var order model.Order
	if err := scanOrder(r.storage.pool.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, err
	}

	items, err := listItems(ctx, r.storage.pool, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error {
	const query = `UPDATE orders SET status=$3, updated_at=NOW() WHERE id=$1 AND status=$2`
	tag, err := r.storage.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order is no longer %s", domainErrors.ErrInvalidTransition, from)
	}
	return nil
}

func (r *orderRepository) SellerOwnsItem(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (
                       SELECT 1 FROM order_items oi JOIN products p ON p.id = oi.product_id
                       WHERE oi.order_id=$1 AND p.owner_id=$2
                   )`
	var owns bool
	if err := r.storage.pool.QueryRow(ctx, query, orderID, sellerID).Scan(&owns); err != nil {
		return false, err
	}
	return owns, nil
}

// ListAwaitingPayment claims up to limit unpaid orders older than createdBefore
// and stamps last_reconciled_at on each. Never-tried orders come first, then the
// least recently tried, so a backlog larger than limit rotates between passes.
func (r *orderRepository) ListAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]model.Order, error) {
	query := `UPDATE orders SET last_reconciled_at=NOW()
              WHERE id IN (
                  SELECT id FROM orders
                  WHERE payment_confirmed=FALSE AND status='PENDING' AND created_at < $1
                  ORDER BY last_reconciled_at NULLS FIRST, created_at
                  LIMIT $2
                  FOR UPDATE SKIP LOCKED
              )
              RETURNING ` + orderColumns
	rows, err := r.storage.pool.Query(ctx, query, createdBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
