package mocks

import (
	"context"
	"net/url"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockRequester struct {
	mock.Mock
}

var _ domain.Requester = (*MockRequester)(nil)

func (m *MockRequester) Execute(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	args := m.Called(ctx, method, path, params)

	var body []byte
	if args.Get(0) != nil {
		body = args.Get(0).([]byte)
	}
	return body, args.Error(1)
}

type MockItemSource struct {
	mock.Mock
}

var _ domain.ItemSource = (*MockItemSource)(nil)

func (m *MockItemSource) GetItems(ctx context.Context, opts ...domain.FilterOption) ([]domain.Item, error) {
	args := m.Called(ctx, domain.NewItemFilter(opts...))

	var items []domain.Item
	if args.Get(0) != nil {
		items = args.Get(0).([]domain.Item)
	}
	return items, args.Error(1)
}

func (m *MockItemSource) GetItemsWithMetadata(ctx context.Context, opts ...domain.FilterOption) (*domain.ItemCollection, error) {
	args := m.Called(ctx, domain.NewItemFilter(opts...))

	var coll *domain.ItemCollection
	if args.Get(0) != nil {
		coll = args.Get(0).(*domain.ItemCollection)
	}
	return coll, args.Error(1)
}

func (m *MockItemSource) GetItem(ctx context.Context, id int) (*domain.Item, error) {
	args := m.Called(ctx, id)

	var item *domain.Item
	if args.Get(0) != nil {
		item = args.Get(0).(*domain.Item)
	}
	return item, args.Error(1)
}
