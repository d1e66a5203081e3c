package service_test

import (
	"context"

	"github.com/niksmo/salesops/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ListProducts(
	ctx context.Context, f domain.ProductFilter,
) ([]domain.Product, error) {
	args := m.Called(ctx, f)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockStorage) DistinctValues(
	ctx context.Context, field domain.ProductField,
) ([]string, error) {
	args := m.Called(ctx, field)
	vs, _ := args.Get(0).([]string)
	return vs, args.Error(1)
}

func (m *MockStorage) ReadProduct(
	ctx context.Context, id string,
) (domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(domain.Product)
	return p, args.Error(1)
}

func (m *MockStorage) ReadProducts(
	ctx context.Context, ids []string,
) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockStorage) UpdateProduct(
	ctx context.Context, id string, patch domain.ProductPatch,
) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *MockStorage) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) StoreProducts(
	ctx context.Context, ps []domain.Product,
) ([]string, error) {
	args := m.Called(ctx, ps)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) IndexProducts(ctx context.Context, ps []domain.Product) error {
	return m.Called(ctx, ps).Error(0)
}

func (m *MockIndex) Search(
	ctx context.Context, q string, limit int,
) ([]string, error) {
	args := m.Called(ctx, q, limit)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type MockItemsProducer struct {
	mock.Mock
}

func (m *MockItemsProducer) ProduceItems(
	ctx context.Context, ps []domain.Product,
) error {
	return m.Called(ctx, ps).Error(0)
}

type MockExclusionProducer struct {
	mock.Mock
}

func (m *MockExclusionProducer) ProduceExclusion(
	ctx context.Context, r domain.ExclusionRule,
) error {
	return m.Called(ctx, r).Error(0)
}
