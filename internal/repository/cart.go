package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/storefront-api/internal/model"
)

const cartItemColumns = `id, cart_key, product_id, qty, total, created_at`

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

func scanCartItems(rows pgx.Rows) ([]model.CartItem, error) {
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.CartKey, &item.ProductID, &item.Qty, &item.Total, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cart items: %w", err)
	}
	return items, nil
}

func (r *pgCartRepo) ListItems(ctx context.Context, cartKey string) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE cart_key = $1 ORDER BY created_at, id`, cartKey,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	return scanCartItems(rows)
}

func (r *pgCartRepo) GetItem(ctx context.Context, id string) (*model.CartItem, error) {
	item := &model.CartItem{}
	err := r.pool.QueryRow(ctx, `SELECT `+cartItemColumns+` FROM cart_items WHERE id = $1`, id).
		Scan(&item.ID, &item.CartKey, &item.ProductID, &item.Qty, &item.Total, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

func (r *pgCartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	item.ID = model.NewID()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cart_items (id, cart_key, product_id, qty, total, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`,
		item.ID, item.CartKey, item.ProductID, item.Qty, item.Total,
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) UpdateItem(ctx context.Context, item *model.CartItem) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE cart_items SET product_id = $2, qty = $3, total = $4 WHERE id = $1
		 RETURNING cart_key, created_at`,
		item.ID, item.ProductID, item.Qty, item.Total,
	).Scan(&item.CartKey, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) DeleteItem(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
