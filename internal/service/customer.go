package service

import (
	"context"
	"fmt"

	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

// CustomerService reads the directory the order worker maintains.
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

func (s *CustomerService) Get(ctx context.Context, email string) (*model.Customer, error) {
	customer, err := s.customerRepo.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}
