package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/pagination"
	"github.com/flicky/storefront-api/internal/repository"
)

const productCacheTTL = 60 * time.Second

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
	log         *slog.Logger
}

// NewProductService builds the product service. redisClient may be nil, in
// which case reads always go to the repository.
func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client, log *slog.Logger) *ProductService {
	if log == nil {
		log = slog.Default()
	}
	return &ProductService{productRepo: productRepo, redisClient: redisClient, log: log}
}

func productCacheKey(id string) string { return "product:" + id }

func (s *ProductService) List(ctx context.Context, req pagination.Request) (*Page[model.Product], error) {
	products, total, err := s.productRepo.List(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &Page[model.Product]{Items: products, Pagination: pagination.New(req, total)}, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, productCacheKey(id)).Bytes(); err == nil {
			var p model.Product
			if json.Unmarshal(cached, &p) == nil {
				return &p, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("read product cache", "product_id", id, "error", err)
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(product); err == nil {
			if err := s.redisClient.Set(ctx, productCacheKey(id), data, productCacheTTL).Err(); err != nil {
				s.log.Warn("write product cache", "product_id", id, "error", err)
			}
		}
	}
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, in dto.ProductInput) (*model.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	product := &model.Product{}
	applyProductInput(product, in)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in dto.ProductInput) (*model.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	product := &model.Product{ID: id}
	applyProductInput(product, in)

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, productCacheKey(id)).Err(); err != nil {
		s.log.Warn("invalidate product cache", "product_id", id, "error", err)
	}
}

func applyProductInput(p *model.Product, in dto.ProductInput) {
	p.Title = in.Title
	p.Category = in.Category
	p.Unit = in.Unit
	p.Description = in.Description
	p.Content = in.Content
	p.ImageURL = in.ImageURL
	p.ImagesURL = in.ImagesURL
	if p.ImagesURL == nil {
		p.ImagesURL = []string{}
	}
	p.Price = *in.Price
	p.OriginPrice = decimal.Zero
	if in.OriginPrice != nil {
		p.OriginPrice = *in.OriginPrice
	}
	p.IsEnabled = in.IsEnabled
	p.Num = model.DefaultProductNum
	if in.Num != nil {
		p.Num = *in.Num
	}
}
