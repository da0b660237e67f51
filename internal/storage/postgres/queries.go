package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var orderHeaderColumns = []string{
	"o.id", "o.order_price", "o.discounted_order_price", "o.currency", "o.payment_reference",
	"o.payment_confirmed", "o.status", "o.created_at", "o.updated_at",
	"a.id", "a.line1", "a.line2", "a.city", "a.state", "a.country", "a.pincode",
	"c.id", "c.coupon_code", "c.name",
	"u.id", "u.email", "u.username",
}

var orderLineColumns = []string{
	"oi.order_id", "oi.price", "oi.quantity",
	"p.id", "p.owner_id", "p.name", "p.description", "p.price", "p.stock",
}

func (r *orderQueryRepository) headerQuery() sq.SelectBuilder {
	return r.storage.qb.Select(orderHeaderColumns...).
		From("orders o").
		Join("users u ON u.id = o.customer_id").
		Join("addresses a ON a.id = o.address_id").
		LeftJoin("coupons c ON c.id = o.coupon_id")
}

func scanHeader(row pgx.Row) (model.OrderDetail, error) {
	var (
		d          model.OrderDetail
		couponID   *uuid.UUID
		couponCode *string
		couponName *string
	)
	err := row.Scan(
		&d.ID, &d.OrderPrice, &d.DiscountedOrderPrice, &d.Currency, &d.PaymentReference,
		&d.PaymentConfirmed, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.Address.ID, &d.Address.Line1, &d.Address.Line2, &d.Address.City, &d.Address.State, &d.Address.Country, &d.Address.Pincode,
		&couponID, &couponCode, &couponName,
		&d.Customer.ID, &d.Customer.Email, &d.Customer.Username,
	)
	if err != nil {
		return d, err
	}
	if couponID != nil {
		d.Coupon = &model.CouponSummary{ID: *couponID, Code: deref(couponCode), Name: deref(couponName)}
	}
	return d, nil
}

func (r *orderQueryRepository) Detail(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error) {
	query, args, err := r.headerQuery().Where(sq.Eq{"o.id": orderID.String()}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build order query: %w", err)
	}

	detail, err := scanHeader(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, err
	}

	lines, err := r.lines(ctx, []string{detail.ID.String()}, nil)
	if err != nil {
		return nil, err
	}
	detail.Items = lines[detail.ID]
	return &detail, nil
}

func (r *orderQueryRepository) CustomerOrders(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) ([]model.OrderSummary, int, error) {
	where := sq.And{sq.Eq{"o.customer_id": customerID.String()}}
	return r.list(ctx, where, filter, nil)
}

// SellerOrders lists orders holding at least one product of the seller. Each order keeps only the
// seller's own lines and drops the customer email.
func (r *orderQueryRepository) SellerOrders(ctx context.Context, sellerID uuid.UUID, filter model.OrderFilter) ([]model.SellerOrder, int, error) {
	seller := sellerID.String()
	where := sq.And{sq.Expr(`EXISTS (SELECT 1 FROM order_items soi JOIN products sp ON sp.id = soi.product_id
        WHERE soi.order_id = o.id AND sp.owner_id = ?)`, seller)}

	orders, total, err := r.list(ctx, where, filter, sq.Eq{"p.owner_id": seller})
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Customer.Email = ""
	}
	return orders, total, nil
}

func (r *orderQueryRepository) list(ctx context.Context, where sq.And, filter model.OrderFilter, lineFilter sq.Sqlizer) ([]model.OrderDetail, int, error) {
	if filter.Status != "" {
		where = append(where, sq.Eq{"o.status": string(filter.Status)})
	}

	countQuery, countArgs, err := r.storage.qb.Select("COUNT(*)").From("orders o").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	pageQuery, pageArgs, err := r.headerQuery().
		Where(where).
		OrderBy("o.created_at DESC", "o.id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build page query: %w", err)
	}

	var (
		total  int
		orders []model.OrderDetail
	)
	g, gctx := errgroup.WithContext(ctx)
	if r.parallelism > 0 {
		g.SetLimit(r.parallelism)
	}
	g.Go(func() error {
		if err := r.storage.pool.QueryRow(gctx, countQuery, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		rows, err := r.storage.pool.Query(gctx, pageQuery, pageArgs...)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			d, err := scanHeader(rows)
			if err != nil {
				return err
			}
			orders = append(orders, d)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if len(orders) == 0 {
		return []model.OrderDetail{}, total, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
	}
	lines, err := r.lines(ctx, ids, lineFilter)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = lines[orders[i].ID]
	}
	return orders, total, nil
}

func (r *orderQueryRepository) lines(ctx context.Context, orderIDs []string, filter sq.Sqlizer) (map[uuid.UUID][]model.OrderLine, error) {
	builder := r.storage.qb.Select(orderLineColumns...).
		From("order_items oi").
		Join("products p ON p.id = oi.product_id").
		Where(sq.Eq{"oi.order_id": orderIDs}).
		OrderBy("oi.order_id", "oi.position")
	if filter != nil {
		builder = builder.Where(filter)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]model.OrderLine, len(orderIDs))
	for rows.Next() {
		var (
			orderID uuid.UUID
			line    model.OrderLine
		)
		if err := rows.Scan(&orderID, &line.Price, &line.Quantity,
			&line.Product.ID, &line.Product.OwnerID, &line.Product.Name, &line.Product.Description,
			&line.Product.Price, &line.Product.Stock); err != nil {
			return nil, err
		}
		result[orderID] = append(result[orderID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
