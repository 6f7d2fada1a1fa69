package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/storefront-api/internal/model"
)

type pgCouponRepo struct{ pool *pgxpool.Pool }

func NewCouponRepository(pool *pgxpool.Pool) CouponRepository {
	return &pgCouponRepo{pool: pool}
}

func (r *pgCouponRepo) Create(ctx context.Context, coupon *model.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = model.NewID()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (id, code, title, percent, due_date, is_enabled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		coupon.ID, coupon.Code, coupon.Title, coupon.Percent, coupon.DueDate, coupon.IsEnabled,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

func (r *pgCouponRepo) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	c := &model.Coupon{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, title, percent, due_date, is_enabled FROM coupons WHERE id = $1`, id,
	).Scan(&c.ID, &c.Code, &c.Title, &c.Percent, &c.DueDate, &c.IsEnabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return c, nil
}

func (r *pgCouponRepo) List(ctx context.Context, limit, offset int) ([]model.Coupon, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, code, title, percent, due_date, is_enabled FROM coupons
		 ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.Percent, &c.DueDate, &c.IsEnabled); err != nil {
			return nil, 0, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, total, nil
}

func (r *pgCouponRepo) Update(ctx context.Context, coupon *model.Coupon) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE coupons SET code=$2, title=$3, percent=$4, due_date=$5, is_enabled=$6 WHERE id=$1`,
		coupon.ID, coupon.Code, coupon.Title, coupon.Percent, coupon.DueDate, coupon.IsEnabled,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update coupon: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgCouponRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
