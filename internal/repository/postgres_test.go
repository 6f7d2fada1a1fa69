package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-api/internal/model"
)

// Concurrent checkouts on a pool no larger than the number of callers must
// all finish: each one may only ever hold a single connection.
func TestPostgresCheckout_ConcurrentOnSmallPool(t *testing.T) {
	postgresStore(t)

	const checkouts = 4
	cfg, err := pgxpool.ParseConfig(testDSN)
	require.NoError(t, err)
	cfg.MaxConns = 2

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	defer pool.Close()
	store := NewPostgresStore(pool)

	product := newTestProduct("Apple", 100)
	require.NoError(t, store.Products.Create(ctx, product))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Carts.AddItem(ctx, &model.CartItem{
			CartKey: model.DefaultCartKey, ProductID: product.ID, Qty: 1, Total: decimal.NewFromInt(100),
		}))
	}

	var wg sync.WaitGroup
	errs := make([]error, checkouts)
	for i := range checkouts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = store.Orders.CreateFromCart(ctx, model.DefaultCartKey, buildTestOrder())
		}()
	}
	wg.Wait()

	require.NoError(t, ctx.Err(), "checkouts did not finish")
	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		assert.ErrorIs(t, err, errTestEmptyCart)
	}
	assert.Equal(t, 1, placed)

	orders, total, err := store.Orders.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.True(t, decimal.NewFromInt(300).Equal(orders[0].Total))
}
