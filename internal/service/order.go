package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/pagination"
	"github.com/flicky/storefront-api/internal/repository"
)

// OrderPublisher announces placed orders to downstream consumers.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg model.OrderMessage) error
}

type OrderService struct {
	orderRepo repository.OrderRepository
	publisher OrderPublisher
	log       *slog.Logger
	now       func() time.Time
}

// NewOrderService builds the order service. publisher may be nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	publisher OrderPublisher,
	log *slog.Logger,
) *OrderService {
	if log == nil {
		log = slog.Default()
	}
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// PlaceOrder turns the whole cart into an unpaid order and empties it. The
// read, the insert and the removal of the billed lines share one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, cartKey string, req dto.OrderRequest) (*model.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	user := model.OrderUser{
		Name:    req.User.Name,
		Tel:     req.User.Tel,
		Email:   req.User.Email,
		Address: req.User.Address,
	}

	order, err := s.orderRepo.CreateFromCart(ctx, cartKey, func(_ context.Context, items []model.CartItem, products map[string]*model.Product) (*model.Order, error) {
		return s.buildOrder(user, items, products)
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrUnavailableProduct) {
			return nil, err
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publish(ctx, order)
	return order, nil
}

func (s *OrderService) buildOrder(user model.OrderUser, items []model.CartItem, products map[string]*model.Product) (*model.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &model.Order{
		ID:       model.NewID(),
		CreateAt: s.now().UnixMilli(),
		IsPaid:   false,
		Total:    decimal.Zero,
		User:     user,
		Products: make(map[string]model.OrderProduct, len(products)),
	}
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnavailableProduct, item.ProductID)
		}

		// Lines for the same product are merged so the mapping still sums
		// to the order total.
		line, ok := order.Products[item.ProductID]
		if !ok {
			line = model.OrderProduct{ID: item.ProductID, Product: *product}
		}
		line.Qty += item.Qty
		line.Total = line.Total.Add(item.Total)
		line.FinalTotal = line.Total
		order.Products[item.ProductID] = line

		order.Total = order.Total.Add(item.Total)
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, order *model.Order) {
	if s.publisher == nil {
		return
	}
	msg := model.OrderMessage{OrderID: order.ID, User: order.User, Total: order.Total.String()}
	if err := s.publisher.PublishOrderPlaced(ctx, msg); err != nil {
		s.log.Error("publish order placed", "order_id", order.ID, "error", err)
	}
}

func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List pages through all orders, newest first.
func (s *OrderService) List(ctx context.Context, req pagination.Request) (*Page[model.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &Page[model.Order]{Items: orders, Pagination: pagination.New(req, total)}, nil
}
