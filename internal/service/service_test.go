package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func productInput(title string, price int64) dto.ProductInput {
	return dto.ProductInput{
		Title: title, Category: "fruit", Unit: "box",
		Description: "fresh", Content: "from the farm", ImageURL: "https://img/1.png",
		Price: ptr(decimal.NewFromInt(price)),
	}
}

func seedProduct(t *testing.T, repo repository.ProductRepository, title string, price int64) *model.Product {
	t.Helper()
	p := &model.Product{Title: title, Category: "fruit", Unit: "box", Price: decimal.NewFromInt(price), Num: model.DefaultProductNum}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

// failingProductRepo lets individual product calls fail.
type failingProductRepo struct {
	repository.ProductRepository
	getErr error
}

func (r *failingProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.ProductRepository.GetByID(ctx, id)
}

func (r *failingProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Product, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.ProductRepository.GetByIDs(ctx, ids)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []model.OrderMessage
	err  error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, msg model.OrderMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

var errBackend = errors.New("connection refused")
