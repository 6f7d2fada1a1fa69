package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-api/internal/model"
)

func newTestProduct(title string, price int64) *model.Product {
	return &model.Product{
		Category:    "fruit",
		Title:       title,
		Unit:        "box",
		Price:       decimal.NewFromInt(price),
		OriginPrice: decimal.NewFromInt(price + 20),
		ImagesURL:   []string{"https://img.example.com/1.png"},
		IsEnabled:   true,
		Num:         model.DefaultProductNum,
	}
}

var (
	errTestEmptyCart   = errors.New("empty cart")
	errTestGoneProduct = errors.New("product gone")
)

// buildTestOrder snapshots every line at its stored total.
func buildTestOrder() BuildOrderFunc {
	return func(_ context.Context, items []model.CartItem, products map[string]*model.Product) (*model.Order, error) {
		if len(items) == 0 {
			return nil, errTestEmptyCart
		}
		order := &model.Order{
			ID:       model.NewID(),
			CreateAt: 1700000000000,
			User:     model.OrderUser{Name: "Ann", Tel: "0912", Email: "ann@example.com", Address: "Taipei"},
			Products: map[string]model.OrderProduct{},
		}
		for _, item := range items {
			p, ok := products[item.ProductID]
			if !ok {
				return nil, errTestGoneProduct
			}
			order.Products[item.ProductID] = model.OrderProduct{
				ID: item.ProductID, Qty: item.Qty, Total: item.Total, FinalTotal: item.Total, Product: *p,
			}
			order.Total = order.Total.Add(item.Total)
		}
		return order, nil
	}
}

func TestProductRepo_CRUD(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		repo := store.Products

		product := newTestProduct("Apple", 100)
		require.NoError(t, repo.Create(ctx, product))
		assert.NotEmpty(t, product.ID)

		found, err := repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Apple", found.Title)
		assert.True(t, decimal.NewFromInt(100).Equal(found.Price))
		assert.Equal(t, []string{"https://img.example.com/1.png"}, found.ImagesURL)

		product.Title = "Green Apple"
		product.Price = decimal.NewFromInt(120)
		require.NoError(t, repo.Update(ctx, product))

		found, err = repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Green Apple", found.Title)
		assert.True(t, decimal.NewFromInt(120).Equal(found.Price))

		require.NoError(t, repo.Delete(ctx, product.ID))
		found, err = repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Nil(t, found)

		assert.ErrorIs(t, repo.Delete(ctx, product.ID), ErrNotFound)
		assert.ErrorIs(t, repo.Update(ctx, product), ErrNotFound)
	})
}

func TestProductRepo_ListAndGetByIDs(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		repo := store.Products

		var ids []string
		for _, title := range []string{"A", "B", "C"} {
			p := newTestProduct(title, 10)
			require.NoError(t, repo.Create(ctx, p))
			ids = append(ids, p.ID)
		}

		page, total, err := repo.List(ctx, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 2)
		assert.Equal(t, "A", page[0].Title)
		assert.Equal(t, "B", page[1].Title)

		page, _, err = repo.List(ctx, 2, 2)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "C", page[0].Title)

		found, err := repo.GetByIDs(ctx, []string{ids[0], ids[2], "missing"})
		require.NoError(t, err)
		assert.Len(t, found, 2)
		assert.Contains(t, found, ids[0])
		assert.NotContains(t, found, "missing")
	})
}

func TestCouponRepo_CRUD(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		repo := store.Coupons

		coupon := &model.Coupon{Code: "SAVE10", Title: "Ten off", Percent: 90, DueDate: 1893456000000, IsEnabled: true}
		require.NoError(t, repo.Create(ctx, coupon))

		dup := &model.Coupon{Code: "SAVE10", Title: "Again", Percent: 80, DueDate: 1893456000000}
		assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

		coupon.Percent = 85
		require.NoError(t, repo.Update(ctx, coupon))
		found, err := repo.GetByID(ctx, coupon.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 85, found.Percent)

		list, total, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, list, 1)

		require.NoError(t, repo.Delete(ctx, coupon.ID))
		assert.ErrorIs(t, repo.Delete(ctx, coupon.ID), ErrNotFound)
	})
}

func TestCartRepo_Lifecycle(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		repo := store.Carts

		item := &model.CartItem{CartKey: model.DefaultCartKey, ProductID: "p1", Qty: 2, Total: decimal.NewFromInt(200)}
		require.NoError(t, repo.AddItem(ctx, item))
		assert.NotEmpty(t, item.ID)

		items, err := repo.ListItems(ctx, model.DefaultCartKey)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Qty)

		other, err := repo.ListItems(ctx, "other")
		require.NoError(t, err)
		assert.Empty(t, other)

		item.Qty = 3
		item.Total = decimal.NewFromInt(300)
		require.NoError(t, repo.UpdateItem(ctx, item))
		assert.Equal(t, model.DefaultCartKey, item.CartKey)

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 3, got.Qty)
		assert.True(t, decimal.NewFromInt(300).Equal(got.Total))

		require.NoError(t, repo.DeleteItem(ctx, item.ID))
		got, err = repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, repo.DeleteItem(ctx, item.ID), ErrNotFound)
		assert.ErrorIs(t, repo.UpdateItem(ctx, item), ErrNotFound)
	})
}

func TestOrderRepo_CreateFromCart(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		ctx := context.Background()

		product := newTestProduct("Apple", 100)
		require.NoError(t, store.Products.Create(ctx, product))
		require.NoError(t, store.Carts.AddItem(ctx, &model.CartItem{
			CartKey: model.DefaultCartKey, ProductID: product.ID, Qty: 2, Total: decimal.NewFromInt(200),
		}))
		require.NoError(t, store.Carts.AddItem(ctx, &model.CartItem{
			CartKey: "other", ProductID: product.ID, Qty: 1, Total: decimal.NewFromInt(100),
		}))

		order, err := store.Orders.CreateFromCart(ctx, model.DefaultCartKey, buildTestOrder())
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(200).Equal(order.Total))

		items, err := store.Carts.ListItems(ctx, model.DefaultCartKey)
		require.NoError(t, err)
		assert.Empty(t, items)

		untouched, err := store.Carts.ListItems(ctx, "other")
		require.NoError(t, err)
		assert.Len(t, untouched, 1)

		found, err := store.Orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Ann", found.User.Name)
		require.Contains(t, found.Products, product.ID)
		assert.Equal(t, 2, found.Products[product.ID].Qty)
		assert.Equal(t, "Apple", found.Products[product.ID].Product.Title)

		missing, err := store.Orders.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestOrderRepo_CreateFromCartBuildErrorKeepsCart(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		require.NoError(t, store.Carts.AddItem(ctx, &model.CartItem{
			CartKey: model.DefaultCartKey, ProductID: "p1", Qty: 1, Total: decimal.NewFromInt(10),
		}))

		boom := errors.New("boom")
		_, err := store.Orders.CreateFromCart(ctx, model.DefaultCartKey,
			func(context.Context, []model.CartItem, map[string]*model.Product) (*model.Order, error) {
				return nil, boom
			})
		assert.ErrorIs(t, err, boom)

		items, err := store.Carts.ListItems(ctx, model.DefaultCartKey)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		_, total, err := store.Orders.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestOrderRepo_CreateFromCartPassesCurrentProducts(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		kept := newTestProduct("Apple", 100)
		gone := newTestProduct("Pear", 30)
		require.NoError(t, store.Products.Create(ctx, kept))
		require.NoError(t, store.Products.Create(ctx, gone))
		for _, p := range []*model.Product{kept, kept, gone} {
			require.NoError(t, store.Carts.AddItem(ctx, &model.CartItem{
				CartKey: model.DefaultCartKey, ProductID: p.ID, Qty: 1, Total: p.Price,
			}))
		}
		require.NoError(t, store.Products.Delete(ctx, gone.ID))

		var seen map[string]*model.Product
		_, err := store.Orders.CreateFromCart(ctx, model.DefaultCartKey,
			func(ctx context.Context, items []model.CartItem, products map[string]*model.Product) (*model.Order, error) {
				seen = products
				return buildTestOrder()(ctx, items, products)
			})
		assert.ErrorIs(t, err, errTestGoneProduct)

		require.Len(t, seen, 1)
		require.Contains(t, seen, kept.ID)
		assert.Equal(t, "Apple", seen[kept.ID].Title)

		items, err := store.Carts.ListItems(ctx, model.DefaultCartKey)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})
}

func TestOrderRepo_ListNewestFirst(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		product := newTestProduct("Apple", 100)
		require.NoError(t, store.Products.Create(ctx, product))

		var ids []string
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Carts.AddItem(ctx, &model.CartItem{
				CartKey: model.DefaultCartKey, ProductID: product.ID, Qty: 1, Total: decimal.NewFromInt(100),
			}))
			build := buildTestOrder()
			createAt := int64(1700000000000 + i)
			order, err := store.Orders.CreateFromCart(ctx, model.DefaultCartKey,
				func(ctx context.Context, items []model.CartItem, products map[string]*model.Product) (*model.Order, error) {
					o, err := build(ctx, items, products)
					if err != nil {
						return nil, err
					}
					o.CreateAt = createAt
					return o, nil
				})
			require.NoError(t, err)
			ids = append(ids, order.ID)
		}

		orders, total, err := store.Orders.List(ctx, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, orders, 2)
		assert.Equal(t, ids[2], orders[0].ID)
		assert.Equal(t, ids[1], orders[1].ID)
		assert.Len(t, orders[0].Products, 1)
	})
}

func TestCustomerRepo_Upsert(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		repo := store.Customers

		require.NoError(t, repo.Upsert(ctx, &model.Customer{Email: "ann@example.com", Name: "Ann", Tel: "1", Address: "A"}))
		require.NoError(t, repo.Upsert(ctx, &model.Customer{Email: "ann@example.com", Name: "Ann Lee", Tel: "2", Address: "B"}))

		found, err := repo.GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Ann Lee", found.Name)
		assert.Equal(t, "B", found.Address)

		missing, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestStore_Ping(t *testing.T) {
	backends(t, func(t *testing.T, store *Store) {
		assert.NoError(t, store.Ping(context.Background()))
	})
}
