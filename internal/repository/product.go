package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/storefront-api/internal/model"
)

const productColumns = `id, category, title, description, content, unit, price, origin_price,
	image_url, images_url, is_enabled, num, created_at`

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.Category, &p.Title, &p.Description, &p.Content, &p.Unit,
		&p.Price, &p.OriginPrice, &p.ImageURL, &p.ImagesURL, &p.IsEnabled, &p.Num, &p.CreatedAt,
	)
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	if product.ID == "" {
		product.ID = model.NewID()
	}
	if product.ImagesURL == nil {
		product.ImagesURL = []string{}
	}
	query := `INSERT INTO products (id, category, title, description, content, unit, price, origin_price,
				image_url, images_url, is_enabled, num, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW()) RETURNING created_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Category, product.Title, product.Description, product.Content, product.Unit,
		product.Price, product.OriginPrice, product.ImageURL, product.ImagesURL, product.IsEnabled, product.Num,
	).Scan(&product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	p := &model.Product{}
	err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Product, error) {
	return pgProductsByIDs(ctx, r.pool, ids)
}

// pgProductsByIDs runs on a pool or inside a transaction.
func pgProductsByIDs(ctx context.Context, q querier, ids []string) (map[string]*model.Product, error) {
	found := make(map[string]*model.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &model.Product{}
		if err := scanProduct(rows, p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return found, nil
}

func (r *pgProductRepo) List(ctx context.Context, limit, offset int) ([]model.Product, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	if product.ImagesURL == nil {
		product.ImagesURL = []string{}
	}
	query := `UPDATE products SET category=$2, title=$3, description=$4, content=$5, unit=$6, price=$7,
				origin_price=$8, image_url=$9, images_url=$10, is_enabled=$11, num=$12
			  WHERE id=$1 RETURNING created_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Category, product.Title, product.Description, product.Content, product.Unit,
		product.Price, product.OriginPrice, product.ImageURL, product.ImagesURL, product.IsEnabled, product.Num,
	).Scan(&product.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
