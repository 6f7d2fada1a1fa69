package repository

import (
	"context"
	"errors"

	"github.com/flicky/storefront-api/internal/model"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("duplicate resource")
)

// Lookups by id return (nil, nil) when nothing matches. Updates and deletes
// return ErrNotFound instead.

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Product, error)
	List(ctx context.Context, limit, offset int) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, id string) (*model.Coupon, error)
	List(ctx context.Context, limit, offset int) ([]model.Coupon, int, error)
	Update(ctx context.Context, coupon *model.Coupon) error
	Delete(ctx context.Context, id string) error
}

type CartRepository interface {
	ListItems(ctx context.Context, cartKey string) ([]model.CartItem, error)
	GetItem(ctx context.Context, id string) (*model.CartItem, error)
	AddItem(ctx context.Context, item *model.CartItem) error
	UpdateItem(ctx context.Context, item *model.CartItem) error
	DeleteItem(ctx context.Context, id string) error
}

// BuildOrderFunc turns the locked cart contents into the order to persist.
// products holds the current rows for the lines' product ids, read inside the
// checkout transaction; a missing key means the product was deleted.
// Returning an error aborts the checkout and leaves the cart untouched. It may
// be invoked more than once if the backend retries the transaction.
type BuildOrderFunc func(ctx context.Context, items []model.CartItem, products map[string]*model.Product) (*model.Order, error)

type OrderRepository interface {
	// CreateFromCart reads the cart, persists the built order and removes the
	// billed cart lines in a single transaction.
	CreateFromCart(ctx context.Context, cartKey string, build BuildOrderFunc) (*model.Order, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, limit, offset int) ([]model.Order, int, error)
}

type CustomerRepository interface {
	Upsert(ctx context.Context, customer *model.Customer) error
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Products  ProductRepository
	Coupons   CouponRepository
	Carts     CartRepository
	Orders    OrderRepository
	Customers CustomerRepository

	ping func(ctx context.Context) error
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// cartProductIDs returns the distinct product ids referenced by the lines.
func cartProductIDs(items []model.CartItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// cartItemIDs returns the ids of the given cart lines.
func cartItemIDs(items []model.CartItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
