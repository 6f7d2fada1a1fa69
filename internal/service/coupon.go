package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/pagination"
	"github.com/flicky/storefront-api/internal/repository"
)

type CouponService struct {
	couponRepo repository.CouponRepository
}

func NewCouponService(couponRepo repository.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

func (s *CouponService) List(ctx context.Context, req pagination.Request) (*Page[model.Coupon], error) {
	coupons, total, err := s.couponRepo.List(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return &Page[model.Coupon]{Items: coupons, Pagination: pagination.New(req, total)}, nil
}

func (s *CouponService) Get(ctx context.Context, id string) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

func (s *CouponService) Create(ctx context.Context, in dto.CouponInput) (*model.Coupon, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	coupon := newCoupon("", in)
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateCoupon
		}
		return nil, fmt.Errorf("create coupon: %w", err)
	}
	return coupon, nil
}

func (s *CouponService) Update(ctx context.Context, id string, in dto.CouponInput) (*model.Coupon, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	coupon := newCoupon(id, in)
	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCouponNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateCoupon
		}
		return nil, fmt.Errorf("update coupon: %w", err)
	}
	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("delete coupon: %w", err)
	}
	return nil
}

// newCoupon expects in to have passed validation.
func newCoupon(id string, in dto.CouponInput) *model.Coupon {
	return &model.Coupon{
		ID:        id,
		Code:      in.Code,
		Title:     in.Title,
		Percent:   *in.Percent,
		DueDate:   *in.DueDate,
		IsEnabled: *in.IsEnabled,
	}
}
