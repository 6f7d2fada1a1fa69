package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/pagination"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUnavailableProduct = errors.New("cart references a product that no longer exists")
	ErrDuplicateCoupon    = errors.New("coupon code already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError lists the request fields that are missing or out of range.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

func validate(v any) error {
	err := dto.Validate(v)
	if err == nil {
		return nil
	}
	if fields := dto.FieldNames(err); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return fmt.Errorf("validate: %w", err)
}

// Page is one page of a listing plus its pagination block.
type Page[T any] struct {
	Items      []T
	Pagination pagination.Pagination
}
