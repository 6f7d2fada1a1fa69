package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/pagination"
	"github.com/flicky/storefront-api/internal/repository"
)

func orderRequest() dto.OrderRequest {
	return dto.OrderRequest{User: &dto.OrderUserInput{
		Name: "Ann", Tel: "0912345678", Email: "ann@example.com", Address: "Taipei",
	}}
}

func TestOrderService_PlaceOrder(t *testing.T) {
	store := repository.NewMemoryStore()
	p1 := seedProduct(t, store.Products, "Apple", 100)
	p2 := seedProduct(t, store.Products, "Pear", 30)
	carts := NewCartService(store.Carts, store.Products)
	pub := &recordingPublisher{}
	svc := NewOrderService(store.Orders, pub, nil)
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	ctx := context.Background()

	for _, in := range []dto.CartInput{{ProductID: p1.ID, Qty: 2}, {ProductID: p2.ID, Qty: 1}, {ProductID: p1.ID, Qty: 1}} {
		_, err := carts.Add(ctx, cartKey, in)
		require.NoError(t, err)
	}
	before, err := carts.List(ctx, cartKey)
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, cartKey, orderRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, int64(1700000000123), order.CreateAt)
	assert.False(t, order.IsPaid)
	assert.True(t, before.FinalTotal.Equal(order.Total))
	assert.True(t, decimal.NewFromInt(330).Equal(order.Total))

	require.Len(t, order.Products, 2)
	apple := order.Products[p1.ID]
	assert.Equal(t, 3, apple.Qty)
	assert.True(t, decimal.NewFromInt(300).Equal(apple.Total))
	assert.Equal(t, "Apple", apple.Product.Title)

	sum := decimal.Zero
	for _, line := range order.Products {
		sum = sum.Add(line.Total)
	}
	assert.True(t, sum.Equal(order.Total))

	after, err := carts.List(ctx, cartKey)
	require.NoError(t, err)
	assert.Empty(t, after.Carts)

	stored, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", stored.User.Name)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, order.ID, pub.msgs[0].OrderID)
	assert.Equal(t, "330", pub.msgs[0].Total)
	assert.Equal(t, "ann@example.com", pub.msgs[0].User.Email)
}

func TestOrderService_PlaceOrderEmptyCart(t *testing.T) {
	store := repository.NewMemoryStore()
	pub := &recordingPublisher{}
	svc := NewOrderService(store.Orders, pub, nil)

	_, err := svc.PlaceOrder(context.Background(), cartKey, orderRequest())
	assert.ErrorIs(t, err, ErrEmptyCart)

	page, err := svc.List(context.Background(), pagination.Normalize(1, 5))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Empty(t, pub.msgs)
}

func TestOrderService_PlaceOrderValidation(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewOrderService(store.Orders, nil, nil)

	req := orderRequest()
	req.User.Tel = ""
	req.User.Email = "nope"
	_, err := svc.PlaceOrder(context.Background(), cartKey, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"user.tel", "user.email"}, verr.Fields)
}

func TestOrderService_PlaceOrderRejectsDeletedProduct(t *testing.T) {
	store := repository.NewMemoryStore()
	p1 := seedProduct(t, store.Products, "Apple", 100)
	p2 := seedProduct(t, store.Products, "Pear", 30)
	carts := NewCartService(store.Carts, store.Products)
	svc := NewOrderService(store.Orders, nil, nil)
	ctx := context.Background()

	_, err := carts.Add(ctx, cartKey, dto.CartInput{ProductID: p1.ID, Qty: 1})
	require.NoError(t, err)
	_, err = carts.Add(ctx, cartKey, dto.CartInput{ProductID: p2.ID, Qty: 1})
	require.NoError(t, err)
	require.NoError(t, store.Products.Delete(ctx, p2.ID))

	_, err = svc.PlaceOrder(ctx, cartKey, orderRequest())
	assert.ErrorIs(t, err, ErrUnavailableProduct)

	summary, err := carts.List(ctx, cartKey)
	require.NoError(t, err)
	assert.Len(t, summary.Carts, 2, "cart left untouched")
}

func TestOrderService_PublishFailureDoesNotFailOrder(t *testing.T) {
	store := repository.NewMemoryStore()
	p1 := seedProduct(t, store.Products, "Apple", 100)
	carts := NewCartService(store.Carts, store.Products)
	svc := NewOrderService(store.Orders, &recordingPublisher{err: errBackend}, nil)
	ctx := context.Background()

	_, err := carts.Add(ctx, cartKey, dto.CartInput{ProductID: p1.ID, Qty: 1})
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, cartKey, orderRequest())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(order.Total))
}

func TestOrderService_ConcurrentCheckoutBillsEachLineOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	p1 := seedProduct(t, store.Products, "Apple", 10)
	carts := NewCartService(store.Carts, store.Products)
	svc := NewOrderService(store.Orders, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = carts.Add(ctx, cartKey, dto.CartInput{ProductID: p1.ID, Qty: 1})
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.PlaceOrder(ctx, cartKey, orderRequest())
		}()
	}
	wg.Wait()

	page, err := svc.List(ctx, pagination.Normalize(1, 100))
	require.NoError(t, err)
	billed := decimal.Zero
	for _, o := range page.Items {
		billed = billed.Add(o.Total)
	}
	left, err := carts.List(ctx, cartKey)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(200).Equal(billed.Add(left.FinalTotal)),
		"every added line is either billed once or still in the cart")
}

func TestOrderService_GetAndList(t *testing.T) {
	store := repository.NewMemoryStore()
	p1 := seedProduct(t, store.Products, "Apple", 100)
	carts := NewCartService(store.Carts, store.Products)
	svc := NewOrderService(store.Orders, nil, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		svc.now = func() time.Time { return time.UnixMilli(int64(1700000000000 + i)) }
		_, err := carts.Add(ctx, cartKey, dto.CartInput{ProductID: p1.ID, Qty: 1})
		require.NoError(t, err)
		order, err := svc.PlaceOrder(ctx, cartKey, orderRequest())
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	page, err := svc.List(ctx, pagination.Normalize(1, 2))
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[2], page.Items[0].ID)
	assert.Equal(t, ids[1], page.Items[1].ID)
	assert.True(t, page.Pagination.HasNext)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
