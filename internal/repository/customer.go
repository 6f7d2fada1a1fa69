package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/storefront-api/internal/model"
)

type pgCustomerRepo struct{ pool *pgxpool.Pool }

func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &pgCustomerRepo{pool: pool}
}

func (r *pgCustomerRepo) Upsert(ctx context.Context, customer *model.Customer) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (email, name, tel, address, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, tel = EXCLUDED.tel,
		   address = EXCLUDED.address, updated_at = NOW()
		 RETURNING updated_at`,
		customer.Email, customer.Name, customer.Tel, customer.Address,
	).Scan(&customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

func (r *pgCustomerRepo) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	c := &model.Customer{}
	err := r.pool.QueryRow(ctx,
		`SELECT email, name, tel, address, updated_at FROM customers WHERE email = $1`, email,
	).Scan(&c.Email, &c.Name, &c.Tel, &c.Address, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return c, nil
}
