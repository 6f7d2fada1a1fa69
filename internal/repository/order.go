package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/storefront-api/internal/model"
)

const orderColumns = `id, create_at, is_paid, total, user_name, user_tel, user_email, user_address`

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.CreateAt, &o.IsPaid, &o.Total,
		&o.User.Name, &o.User.Tel, &o.User.Email, &o.User.Address)
}

func (r *pgOrderRepo) CreateFromCart(ctx context.Context, cartKey string, build BuildOrderFunc) (*model.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Row locks keep concurrent updates and deletes of these lines out until
	// the order is committed.
	rows, err := tx.Query(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE cart_key = $1 ORDER BY created_at, id FOR UPDATE`,
		cartKey,
	)
	if err != nil {
		return nil, fmt.Errorf("lock cart items: %w", err)
	}
	items, err := scanCartItems(rows)
	if err != nil {
		return nil, err
	}

	// Products are read on the transaction's connection; a second pool
	// connection here would let concurrent checkouts exhaust the pool.
	products, err := pgProductsByIDs(ctx, tx, cartProductIDs(items))
	if err != nil {
		return nil, err
	}

	order, err := build(ctx, items, products)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID, order.CreateAt, order.IsPaid, order.Total,
		order.User.Name, order.User.Tel, order.User.Email, order.User.Address,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for productID, line := range order.Products {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, qty, total, final_total, product)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, productID, line.Qty, line.Total, line.FinalTotal, line.Product,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, cartItemIDs(items)); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	order := &model.Order{}
	err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := loadOrderItems(ctx, r.pool, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *pgOrderRepo) List(ctx context.Context, limit, offset int) ([]model.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY create_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var page []*model.Order
	for rows.Next() {
		o := &model.Order{}
		if err := scanOrder(rows, o); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		page = append(page, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	rows.Close()

	if err := loadOrderItems(ctx, r.pool, page); err != nil {
		return nil, 0, err
	}

	orders := make([]model.Order, 0, len(page))
	for _, o := range page {
		orders = append(orders, *o)
	}
	return orders, total, nil
}

func loadOrderItems(ctx context.Context, q querier, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*model.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Products = map[string]model.OrderProduct{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := q.Query(ctx,
		`SELECT order_id, product_id, qty, total, final_total, product FROM order_items WHERE order_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var line model.OrderProduct
		if err := rows.Scan(&orderID, &line.ID, &line.Qty, &line.Total, &line.FinalTotal, &line.Product); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		byID[orderID].Products[line.ID] = line
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("get order items: %w", err)
	}
	return nil
}
