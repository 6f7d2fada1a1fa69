package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/pagination"
)

// NewMemoryStore returns a process-local backend. Nothing survives a restart;
// it is meant for local development and tests.
func NewMemoryStore() *Store {
	carts := &memCartRepo{items: map[string]model.CartItem{}}
	products := &memProductRepo{products: map[string]model.Product{}}
	return &Store{
		Products:  products,
		Coupons:   &memCouponRepo{coupons: map[string]model.Coupon{}},
		Carts:     carts,
		Orders:    &memOrderRepo{carts: carts, products: products, orders: map[string]model.Order{}},
		Customers: &memCustomerRepo{customers: map[string]model.Customer{}},
	}
}

// page expects offset to be a multiple of limit, as pagination.Request produces.
func page[T any](all []T, limit, offset int) []T {
	if limit < 1 {
		return []T{}
	}
	return pagination.Slice(all, pagination.Request{Page: offset/limit + 1, PageSize: limit})
}

func cloneProduct(p model.Product) model.Product {
	p.ImagesURL = slices.Clone(p.ImagesURL)
	if p.ImagesURL == nil {
		p.ImagesURL = []string{}
	}
	return p
}

type memProductRepo struct {
	mu       sync.RWMutex
	products map[string]model.Product
}

func (r *memProductRepo) Create(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == "" {
		product.ID = model.NewID()
	}
	if _, ok := r.products[product.ID]; ok {
		return ErrDuplicate
	}
	product.CreatedAt = time.Now().UTC()
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *memProductRepo) GetByIDs(_ context.Context, ids []string) (map[string]*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := make(map[string]*model.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			p = cloneProduct(p)
			found[id] = &p
		}
	}
	return found, nil
}

func (r *memProductRepo) List(_ context.Context, limit, offset int) ([]model.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := slices.SortedFunc(maps.Values(r.products), func(a, b model.Product) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	out := page(all, limit, offset)
	for i := range out {
		out[i] = cloneProduct(out[i])
	}
	return out, len(all), nil
}

func (r *memProductRepo) Update(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type memCouponRepo struct {
	mu      sync.RWMutex
	coupons map[string]model.Coupon
}

func (r *memCouponRepo) codeTaken(code, exceptID string) bool {
	for _, c := range r.coupons {
		if c.Code == code && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *memCouponRepo) Create(_ context.Context, coupon *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if coupon.ID == "" {
		coupon.ID = model.NewID()
	}
	if r.codeTaken(coupon.Code, "") {
		return ErrDuplicate
	}
	r.coupons[coupon.ID] = *coupon
	return nil
}

func (r *memCouponRepo) GetByID(_ context.Context, id string) (*model.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coupons[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCouponRepo) List(_ context.Context, limit, offset int) ([]model.Coupon, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := slices.SortedFunc(maps.Values(r.coupons), func(a, b model.Coupon) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return page(all, limit, offset), len(all), nil
}

func (r *memCouponRepo) Update(_ context.Context, coupon *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[coupon.ID]; !ok {
		return ErrNotFound
	}
	if r.codeTaken(coupon.Code, coupon.ID) {
		return ErrDuplicate
	}
	r.coupons[coupon.ID] = *coupon
	return nil
}

func (r *memCouponRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[id]; !ok {
		return ErrNotFound
	}
	delete(r.coupons, id)
	return nil
}

type memCartRepo struct {
	mu    sync.Mutex
	items map[string]model.CartItem
}

// listLocked expects r.mu to be held.
func (r *memCartRepo) listLocked(cartKey string) []model.CartItem {
	items := []model.CartItem{}
	for _, item := range r.items {
		if item.CartKey == cartKey {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b model.CartItem) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return items
}

func (r *memCartRepo) ListItems(_ context.Context, cartKey string) ([]model.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listLocked(cartKey), nil
}

func (r *memCartRepo) GetItem(_ context.Context, id string) (*model.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *memCartRepo) AddItem(_ context.Context, item *model.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = model.NewID()
	item.CreatedAt = time.Now().UTC()
	r.items[item.ID] = *item
	return nil
}

func (r *memCartRepo) UpdateItem(_ context.Context, item *model.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	existing.ProductID = item.ProductID
	existing.Qty = item.Qty
	existing.Total = item.Total
	r.items[item.ID] = existing
	item.CartKey = existing.CartKey
	item.CreatedAt = existing.CreatedAt
	return nil
}

func (r *memCartRepo) DeleteItem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type memOrderRepo struct {
	carts    *memCartRepo
	products *memProductRepo

	mu     sync.RWMutex
	orders map[string]model.Order
}

func (r *memOrderRepo) CreateFromCart(ctx context.Context, cartKey string, build BuildOrderFunc) (*model.Order, error) {
	// Holding the cart lock for the whole checkout keeps cart writes out
	// until the billed lines are gone.
	r.carts.mu.Lock()
	defer r.carts.mu.Unlock()

	items := r.carts.listLocked(cartKey)
	products, err := r.products.GetByIDs(ctx, cartProductIDs(items))
	if err != nil {
		return nil, err
	}
	order, err := build(ctx, items, products)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.orders[order.ID] = cloneOrder(*order)
	r.mu.Unlock()

	for _, item := range items {
		delete(r.carts.items, item.ID)
	}
	return order, nil
}

func cloneOrder(o model.Order) model.Order {
	products := make(map[string]model.OrderProduct, len(o.Products))
	for id, line := range o.Products {
		line.Product = cloneProduct(line.Product)
		products[id] = line
	}
	o.Products = products
	return o
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *memOrderRepo) List(_ context.Context, limit, offset int) ([]model.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := slices.SortedFunc(maps.Values(r.orders), func(a, b model.Order) int {
		return cmp.Or(cmp.Compare(b.CreateAt, a.CreateAt), cmp.Compare(b.ID, a.ID))
	})
	out := page(all, limit, offset)
	for i := range out {
		out[i] = cloneOrder(out[i])
	}
	return out, len(all), nil
}

type memCustomerRepo struct {
	mu        sync.RWMutex
	customers map[string]model.Customer
}

func (r *memCustomerRepo) Upsert(_ context.Context, customer *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer.UpdatedAt = time.Now().UTC()
	r.customers[customer.Email] = *customer
	return nil
}

func (r *memCustomerRepo) GetByEmail(_ context.Context, email string) (*model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[email]
	if !ok {
		return nil, nil
	}
	return &c, nil
}
