package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/domain/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

var _ domain.Repository = (*MockRepository)(nil)

func (m *MockRepository) Upsert(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) BulkUpsert(ctx context.Context, items []domain.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockRepository) GetLastUpdated(ctx context.Context) (*domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockRepository) GetContentHashes(ctx context.Context, ids []int) (map[int]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]string), args.Error(1)
}

type MockEventProducer struct {
	mock.Mock
}

var _ domain.EventProducer = (*MockEventProducer)(nil)

func (m *MockEventProducer) Publish(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockEventProducer) PublishBatch(ctx context.Context, items []domain.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockEventProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

func unreadQuery() SavedQuery {
	return SavedQuery{
		Name:   "unread",
		Filter: domain.NewItemFilter(domain.WithArchived(false), domain.WithPerPage(2)),
	}
}

func collectionOf(items ...domain.Item) *domain.ItemCollection {
	return &domain.ItemCollection{Page: 1, PerPage: 2, Pages: 1, Total: len(items), Embedded: domain.EmbeddedItems{Items: items}}
}

func TestMirrorService_RunQuery_PublishesOnlyChanged(t *testing.T) {
	repo := new(MockRepository)
	source := new(mocks.MockItemSource)
	producer := new(MockEventProducer)

	unchanged := domain.Item{ID: 1, URL: "https://example.com/1", Title: "Same"}
	fresh := domain.Item{ID: 2, URL: "https://example.com/2", Title: "New", Content: `<p onclick="x()">hi</p><script>alert(1)</script>`}

	q := unreadQuery()
	source.On("GetItemsWithMetadata", mock.Anything, q.Filter).
		Return(collectionOf(unchanged, fresh, unchanged), nil)

	repo.On("GetContentHashes", mock.Anything, []int{1, 2}).
		Return(map[int]string{1: unchanged.ComputeHash()}, nil)
	repo.On("BulkUpsert", mock.Anything, mock.MatchedBy(func(items []domain.Item) bool {
		return len(items) == 2
	})).Return(nil)

	var published []domain.Item
	producer.On("PublishBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).([]domain.Item) }).
		Return(nil)

	svc := NewMirrorService(repo, source, producer, []SavedQuery{q}, time.Minute, 1)
	require.NoError(t, svc.RunQuery(context.Background(), q))

	require.Len(t, published, 1)
	assert.Equal(t, 2, published[0].ID)
	assert.NotEmpty(t, published[0].ContentHash)
	assert.Equal(t, "<p>hi</p>", published[0].Content, "content must be sanitized before mirroring")

	source.AssertExpectations(t)
	repo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestMirrorService_RunQuery_NothingChanged(t *testing.T) {
	repo := new(MockRepository)
	source := new(mocks.MockItemSource)
	producer := new(MockEventProducer)

	item := domain.Item{ID: 7, Title: "Stable"}
	q := unreadQuery()
	source.On("GetItemsWithMetadata", mock.Anything, mock.Anything).Return(collectionOf(item), nil)
	repo.On("GetContentHashes", mock.Anything, []int{7}).Return(map[int]string{7: item.ComputeHash()}, nil)
	repo.On("BulkUpsert", mock.Anything, mock.Anything).Return(nil)

	svc := NewMirrorService(repo, source, producer, []SavedQuery{q}, time.Minute, 1)
	require.NoError(t, svc.RunQuery(context.Background(), q))

	producer.AssertNotCalled(t, "PublishBatch", mock.Anything, mock.Anything)
}

func TestMirrorService_RunQuery_NilCollection(t *testing.T) {
	repo := new(MockRepository)
	source := new(mocks.MockItemSource)
	producer := new(MockEventProducer)

	q := unreadQuery()
	source.On("GetItemsWithMetadata", mock.Anything, mock.Anything).Return(nil, nil)

	svc := NewMirrorService(repo, source, producer, []SavedQuery{q}, time.Minute, 1)
	assert.NoError(t, svc.RunQuery(context.Background(), q))

	repo.AssertNotCalled(t, "BulkUpsert", mock.Anything, mock.Anything)
}

func TestMirrorService_RunQuery_FetchError(t *testing.T) {
	repo := new(MockRepository)
	source := new(mocks.MockItemSource)
	producer := new(MockEventProducer)

	q := unreadQuery()
	fetchErr := errors.New("circuit breaker is open")
	source.On("GetItemsWithMetadata", mock.Anything, mock.Anything).Return(nil, fetchErr)

	svc := NewMirrorService(repo, source, producer, []SavedQuery{q}, time.Minute, 1)
	err := svc.RunQuery(context.Background(), q)

	assert.ErrorIs(t, err, fetchErr)
	repo.AssertNotCalled(t, "GetContentHashes", mock.Anything, mock.Anything)
}

func TestMirrorService_RunQuery_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(MockRepository)
	source := new(mocks.MockItemSource)
	producer := new(MockEventProducer)

	q := unreadQuery()
	source.On("GetItemsWithMetadata", mock.Anything, mock.Anything).Return(collectionOf(domain.Item{ID: 3}), nil)
	repo.On("GetContentHashes", mock.Anything, []int{3}).Return(map[int]string{}, nil)
	repo.On("BulkUpsert", mock.Anything, mock.Anything).Return(nil)
	producer.On("PublishBatch", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := NewMirrorService(repo, source, producer, []SavedQuery{q}, time.Minute, 1)
	assert.NoError(t, svc.RunQuery(context.Background(), q))
	producer.AssertExpectations(t)
}

func TestMirrorService_RunQuery_UpsertError(t *testing.T) {
	repo := new(MockRepository)
	source := new(mocks.MockItemSource)
	producer := new(MockEventProducer)

	q := unreadQuery()
	source.On("GetItemsWithMetadata", mock.Anything, mock.Anything).Return(collectionOf(domain.Item{ID: 3}), nil)
	repo.On("GetContentHashes", mock.Anything, []int{3}).Return(map[int]string{}, nil)
	repo.On("BulkUpsert", mock.Anything, mock.Anything).Return(errors.New("write conflict"))

	svc := NewMirrorService(repo, source, producer, []SavedQuery{q}, time.Minute, 1)
	err := svc.RunQuery(context.Background(), q)

	assert.ErrorContains(t, err, "bulk upsert failed")
	producer.AssertNotCalled(t, "PublishBatch", mock.Anything, mock.Anything)
}

func TestMirrorService_StartStopsOnCancel(t *testing.T) {
	repo := new(MockRepository)
	source := new(mocks.MockItemSource)
	producer := new(MockEventProducer)

	q := unreadQuery()
	fetched := make(chan struct{}, 1)
	source.On("GetItemsWithMetadata", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case fetched <- struct{}{}:
			default:
			}
		}).
		Return(nil, nil)

	repo.On("GetLastUpdated", mock.Anything).Return(&domain.Item{ID: 99, UpdatedAt: time.Now()}, nil)

	svc := NewMirrorService(repo, source, producer, []SavedQuery{q}, time.Hour, 2)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("initial run did not happen")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
}
