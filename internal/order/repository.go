package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"booktime-be/internal/basket"
	"booktime-be/internal/logger"
)

type Repository interface {
	// ConvertBasketTx freezes an open basket and creates its order in a
	// single transaction. The basket status flip acts as the gate: only
	// one caller can move OPEN to SUBMITTED, everyone else gets
	// basket.ErrBasketAlreadyConverted.
	ConvertBasketTx(ctx context.Context, basketID uuid.UUID, userID uint, billing, shipping AddressSnapshot) (*Order, error)

	GetOrders(ctx context.Context, filter *Filter, limit, page *int32) ([]*Order, error)
	GetOrderDetail(ctx context.Context, orderID uint) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status Status) error

	ListPaidOrders(ctx context.Context, limit, page *int32) ([]*Order, error)
	ListPaidOrderLines(ctx context.Context, limit, page *int32) ([]*Line, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ConvertBasketTx(
	ctx context.Context,
	basketID uuid.UUID,
	userID uint,
	billing, shipping AddressSnapshot,
) (*Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "order"),
		zap.String("method", "ConvertBasketTx"),
		zap.String("basket_id", basketID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// 1. Freeze the basket. Zero rows means someone else got here
	// first, or the basket never existed.
	res, err := tx.ExecContext(ctx, `
		UPDATE baskets
		SET status = 'SUBMITTED', updated_at = NOW()
		WHERE id = $1 AND status = 'OPEN'
	`, basketID)
	if err != nil {
		return nil, err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		var status string
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM baskets WHERE id = $1", basketID,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, basket.ErrBasketNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, basket.ErrBasketAlreadyConverted
	}

	// 2. Snapshot the lines at current catalog prices.
	rows, err := tx.QueryContext(ctx, `
		SELECT l.product_id, l.quantity, p.price
		FROM basket_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.basket_id = $1
		ORDER BY l.product_id
	`, basketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	var total int
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.Price); err != nil {
			return nil, err
		}
		lines = append(lines, line)
		total += line.Quantity * line.Price
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, ErrEmptyBasketCheckout
	}

	// 3. Create the order with the address fields copied in.
	o := Order{
		UserID:   &userID,
		BasketID: basketID,
		Status:   StatusNew,
		Billing:  billing,
		Shipping: shipping,
		Total:    total,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			user_id, basket_id, status, total,
			billing_name, billing_address1, billing_address2,
			billing_zip_code, billing_city, billing_country,
			shipping_name, shipping_address1, shipping_address2,
			shipping_zip_code, shipping_city, shipping_country
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id, created_at, updated_at
	`,
		userID, basketID, o.Status, total,
		billing.Name, billing.Address1, billing.Address2,
		billing.ZipCode, billing.City, billing.Country,
		shipping.Name, shipping.Address1, shipping.Address2,
		shipping.ZipCode, shipping.City, shipping.Country,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// 4. Copy the lines.
	for i := range lines {
		lines[i].OrderID = o.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, o.ID, lines[i].ProductID, lines[i].Quantity, lines[i].Price,
		).Scan(&lines[i].ID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit conversion", zap.Error(err))
		return nil, err
	}
	committed = true

	o.Lines = lines

	log.Info("basket converted",
		zap.Uint("order_id", o.ID),
		zap.Int("line_count", len(lines)),
		zap.Int("total", total),
	)

	return &o, nil
}

func (r *repository) GetOrders(
	ctx context.Context,
	filter *Filter,
	limit, page *int32,
) ([]*Order, error) {

	finalLimit, offset := pagination(limit, page)

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "order"),
		zap.String("method", "GetOrders"),
		zap.Int32("limit", finalLimit),
		zap.Int32("offset", offset),
	)

	query := `
		SELECT
			o.id,
			o.user_id,
			o.basket_id,
			o.status,
			o.total,
			o.created_at,
			o.updated_at,
			u.email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE 1=1
	`

	args := []any{}
	argIndex := 1

	if filter != nil {

		if filter.CustomerEmail != nil && *filter.CustomerEmail != "" {
			query += fmt.Sprintf(" AND u.email ILIKE $%d", argIndex)
			args = append(args, "%"+*filter.CustomerEmail+"%")
			argIndex++
		}

		if filter.Status != nil && *filter.Status != "" {
			query += fmt.Sprintf(" AND o.status = $%d", argIndex)
			args = append(args, *filter.Status)
			argIndex++
		}

		if filter.CreatedFrom != nil {
			query += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
			args = append(args, *filter.CreatedFrom)
			argIndex++
		}

		if filter.CreatedTo != nil {
			query += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
			args = append(args, *filter.CreatedTo)
			argIndex++
		}

		if filter.UpdatedFrom != nil {
			query += fmt.Sprintf(" AND o.updated_at >= $%d", argIndex)
			args = append(args, *filter.UpdatedFrom)
			argIndex++
		}

		if filter.UpdatedTo != nil {
			query += fmt.Sprintf(" AND o.updated_at <= $%d", argIndex)
			args = append(args, *filter.UpdatedTo)
			argIndex++
		}
	}

	query += " ORDER BY o.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, finalLimit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.BasketID,
			&o.Status,
			&o.Total,
			&o.CreatedAt,
			&o.UpdatedAt,
			&o.CustomerEmail,
		); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Info("get orders success", zap.Int("count", len(orders)))

	return orders, nil
}

func (r *repository) GetOrderDetail(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT
			o.id, o.user_id, o.basket_id, o.status, o.total,
			o.billing_name, o.billing_address1, o.billing_address2,
			o.billing_zip_code, o.billing_city, o.billing_country,
			o.shipping_name, o.shipping_address1, o.shipping_address2,
			o.shipping_zip_code, o.shipping_city, o.shipping_country,
			o.created_at, o.updated_at
		FROM orders o
		WHERE o.id = $1
	`, orderID).Scan(
		&o.ID, &o.UserID, &o.BasketID, &o.Status, &o.Total,
		&o.Billing.Name, &o.Billing.Address1, &o.Billing.Address2,
		&o.Billing.ZipCode, &o.Billing.City, &o.Billing.Country,
		&o.Shipping.Name, &o.Shipping.Address1, &o.Shipping.Address2,
		&o.Shipping.ZipCode, &o.Shipping.City, &o.Shipping.Country,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ol.id, ol.product_id, ol.quantity, ol.price, p.name
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id = $1
		ORDER BY ol.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.ProductID, &line.Quantity, &line.Price, &line.ProductName); err != nil {
			return nil, err
		}
		line.OrderID = o.ID
		o.Lines = append(o.Lines, line)
	}

	return &o, rows.Err()
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uint, status Status) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) ListPaidOrders(ctx context.Context, limit, page *int32) ([]*Order, error) {
	finalLimit, offset := pagination(limit, page)

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			o.id, o.user_id, o.status, o.total,
			o.shipping_name, o.shipping_address1, o.shipping_address2,
			o.shipping_zip_code, o.shipping_city, o.shipping_country,
			o.created_at, o.updated_at
		FROM orders o
		WHERE o.status = 'PAID'
		ORDER BY o.id
		LIMIT $1 OFFSET $2
	`, finalLimit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Status, &o.Total,
			&o.Shipping.Name, &o.Shipping.Address1, &o.Shipping.Address2,
			&o.Shipping.ZipCode, &o.Shipping.City, &o.Shipping.Country,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

func (r *repository) ListPaidOrderLines(ctx context.Context, limit, page *int32) ([]*Line, error) {
	finalLimit, offset := pagination(limit, page)

	rows, err := r.db.QueryContext(ctx, `
		SELECT ol.id, ol.order_id, ol.product_id, ol.quantity, ol.price, p.name
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		JOIN products p ON p.id = ol.product_id
		WHERE o.status = 'PAID'
		ORDER BY ol.id
		LIMIT $1 OFFSET $2
	`, finalLimit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.Price, &line.ProductName); err != nil {
			return nil, err
		}
		lines = append(lines, &line)
	}

	return lines, rows.Err()
}

// maxPage keeps (page-1)*limit inside int32 at the largest allowed limit.
const maxPage = 1_000_000

func pagination(limit, page *int32) (int32, int32) {
	finalLimit := int32(20)
	finalPage := int32(1)

	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}
	if finalLimit > 100 {
		finalLimit = 100
	}
	if finalPage > maxPage {
		finalPage = maxPage
	}

	return finalLimit, (finalPage - 1) * finalLimit
}
