package provider

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/domain/mocks"
	"github.com/ReadLaterSync/internal/infra/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const collectionBody = `{
	"page": 2,
	"limit": 2,
	"pages": 5,
	"total": 9,
	"_embedded": {
		"items": [
			{
				"id": 11,
				"url": "https://example.com/article/1",
				"title": "First",
				"preview_picture": "/img/cover.jpg",
				"is_archived": 0,
				"is_starred": 1,
				"created_at": "2024-03-01T10:00:00+0100",
				"updated_at": "2024-03-02T10:00:00+01:00",
				"tags": [{"id": 1, "label": "go", "slug": "go"}]
			},
			{
				"id": 12,
				"url": "https://other.example.org/posts/2",
				"title": "Second",
				"preview_picture": "https://cdn.example.net/p.png",
				"is_archived": true,
				"is_starred": false
			}
		]
	}
}`

const itemBody = `{
	"id": 11,
	"url": "https://example.com/article/1",
	"preview_picture": "/img/cover.jpg",
	"is_archived": 1,
	"is_starred": 0
}`

func newTestProvider() (*EntriesProvider, *mocks.MockRequester) {
	requester := new(mocks.MockRequester)
	return NewEntriesProvider(requester, codec.NewJSONDecoder()), requester
}

func TestEntriesProvider_GetItemsWithMetadata(t *testing.T) {
	p, requester := newTestProvider()

	wantQuery := url.Values{
		"starred": {"1"},
		"sort":    {"updated"},
		"order":   {"desc"},
		"page":    {"2"},
		"perPage": {"2"},
	}
	requester.On("Execute", mock.Anything, "GET", "/entries", wantQuery).Return([]byte(collectionBody), nil)

	coll, err := p.GetItemsWithMetadata(context.Background(),
		domain.WithStarred(true),
		domain.WithDateOrder(domain.ByLastModificationDate),
		domain.WithSortOrder(domain.Descending),
		domain.WithPage(2),
		domain.WithPerPage(2),
	)
	require.NoError(t, err)
	require.NotNil(t, coll)

	assert.Equal(t, 2, coll.Page)
	assert.Equal(t, 2, coll.PerPage)
	assert.Equal(t, 5, coll.Pages)
	assert.Equal(t, 9, coll.Total)

	items := coll.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 11, items[0].ID)
	assert.Equal(t, "https://example.com/img/cover.jpg", items[0].PreviewPicture)
	assert.False(t, items[0].IsArchived)
	assert.True(t, items[0].IsStarred)
	assert.True(t, items[0].CreatedAt.Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, []domain.Tag{{ID: 1, Label: "go", Slug: "go"}}, items[0].Tags)

	assert.Equal(t, 12, items[1].ID)
	assert.Equal(t, "https://cdn.example.net/p.png", items[1].PreviewPicture)
	assert.True(t, items[1].IsArchived)

	requester.AssertExpectations(t)
}

func TestEntriesProvider_GetItemsIsProjectionOfMetadata(t *testing.T) {
	p, requester := newTestProvider()
	requester.On("Execute", mock.Anything, "GET", "/entries", url.Values{"tags": {"a,b"}}).Return([]byte(collectionBody), nil)

	coll, err := p.GetItemsWithMetadata(context.Background(), domain.WithTags("a", "b"))
	require.NoError(t, err)

	items, err := p.GetItems(context.Background(), domain.WithTags("a", "b"))
	require.NoError(t, err)

	assert.Equal(t, coll.Items(), items)
	requester.AssertNumberOfCalls(t, "Execute", 2)
}

func TestEntriesProvider_NullCollection(t *testing.T) {
	for _, body := range []string{"null", "", "  null\n"} {
		p, requester := newTestProvider()
		requester.On("Execute", mock.Anything, "GET", "/entries", url.Values{}).Return([]byte(body), nil)

		coll, err := p.GetItemsWithMetadata(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, coll)

		items, err := p.GetItems(context.Background())
		assert.NoError(t, err, "body %q", body)
		assert.Nil(t, items, "body %q", body)
	}
}

func TestEntriesProvider_ErrorsPropagateUnchanged(t *testing.T) {
	p, requester := newTestProvider()
	transportErr := errors.New("connection refused")
	requester.On("Execute", mock.Anything, "GET", "/entries", mock.Anything).Return(nil, transportErr)

	items, err := p.GetItems(context.Background(), domain.WithArchived(true))
	assert.Same(t, transportErr, err)
	assert.Nil(t, items)

	coll, err := p.GetItemsWithMetadata(context.Background())
	assert.Same(t, transportErr, err)
	assert.Nil(t, coll)
}

func TestEntriesProvider_MalformedJSON(t *testing.T) {
	p, requester := newTestProvider()
	requester.On("Execute", mock.Anything, "GET", "/entries", mock.Anything).Return([]byte(`{"page": "x"`), nil)

	coll, err := p.GetItemsWithMetadata(context.Background())
	assert.Error(t, err)
	assert.Nil(t, coll)
}

func TestEntriesProvider_GetItem(t *testing.T) {
	p, requester := newTestProvider()
	requester.On("Execute", mock.Anything, "GET", "/entries/11", url.Values(nil)).Return([]byte(itemBody), nil)

	item, err := p.GetItem(context.Background(), 11)
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, 11, item.ID)
	assert.Equal(t, "https://example.com/img/cover.jpg", item.PreviewPicture)
	assert.True(t, item.IsArchived)
	assert.False(t, item.IsStarred)
	requester.AssertExpectations(t)
}

func TestEntriesProvider_GetItem_NullAndErrors(t *testing.T) {
	p, requester := newTestProvider()
	requester.On("Execute", mock.Anything, "GET", "/entries/1", mock.Anything).Return([]byte("null"), nil)
	notFound := errors.New("api returned status 404")
	requester.On("Execute", mock.Anything, "GET", "/entries/2", mock.Anything).Return(nil, notFound)

	item, err := p.GetItem(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, item)

	item, err = p.GetItem(context.Background(), 2)
	assert.Same(t, notFound, err)
	assert.Nil(t, item)
}
