package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

// CartService operates on one cart identified by a cart key. Every client
// currently shares model.DefaultCartKey.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// List returns the cart lines joined with their live products. A line whose
// product was deleted is kept with a nil Product.
func (s *CartService) List(ctx context.Context, cartKey string) (*dto.CartSummary, error) {
	items, err := s.cartRepo.ListItems(ctx, cartKey)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs(items))
	if err != nil {
		return nil, fmt.Errorf("get cart products: %w", err)
	}

	summary := &dto.CartSummary{Carts: make([]model.CartLine, 0, len(items))}
	for _, item := range items {
		summary.Carts = append(summary.Carts, model.CartLine{
			CartItem:   item,
			FinalTotal: item.Total,
			Product:    products[item.ProductID],
		})
		summary.Total = summary.Total.Add(item.Total)
	}
	summary.FinalTotal = summary.Total
	return summary, nil
}

// Add appends a new line priced at the current product price. Lines for the
// same product are never merged.
func (s *CartService) Add(ctx context.Context, cartKey string, in dto.CartInput) (*model.CartLine, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	product, err := s.lookupProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	item := &model.CartItem{
		CartKey:   cartKey,
		ProductID: product.ID,
		Qty:       in.Qty,
		Total:     lineTotal(product, in.Qty),
	}
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return &model.CartLine{CartItem: *item, FinalTotal: item.Total, Product: product}, nil
}

// Update replaces the product and quantity of a line and reprices it.
func (s *CartService) Update(ctx context.Context, cartKey, id string, in dto.CartInput) (*model.CartLine, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	product, err := s.lookupProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := s.lookupItem(ctx, cartKey, id); err != nil {
		return nil, err
	}

	item := &model.CartItem{
		ID:        id,
		ProductID: product.ID,
		Qty:       in.Qty,
		Total:     lineTotal(product, in.Qty),
	}
	if err := s.cartRepo.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return &model.CartLine{CartItem: *item, FinalTotal: item.Total, Product: product}, nil
}

func (s *CartService) Delete(ctx context.Context, cartKey, id string) error {
	if _, err := s.lookupItem(ctx, cartKey, id); err != nil {
		return err
	}
	if err := s.cartRepo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (s *CartService) lookupProduct(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// lookupItem treats a line from another cart as missing.
func (s *CartService) lookupItem(ctx context.Context, cartKey, id string) (*model.CartItem, error) {
	item, err := s.cartRepo.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	if item == nil || item.CartKey != cartKey {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

func lineTotal(p *model.Product, qty int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(qty)))
}

// productIDs returns the distinct product ids referenced by items.
func productIDs(items []model.CartItem) []string {
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
