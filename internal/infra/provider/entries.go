package provider

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ReadLaterSync/internal/domain"
)

const entriesPath = "/entries"

// EntriesProvider reads saved items from the read-later API. The HTTP call
// and JSON parsing are delegated; errors from either are returned as is.
type EntriesProvider struct {
	requester domain.Requester
	decoder   domain.Decoder
}

var _ domain.ItemSource = (*EntriesProvider)(nil)

func NewEntriesProvider(requester domain.Requester, decoder domain.Decoder) *EntriesProvider {
	return &EntriesProvider{
		requester: requester,
		decoder:   decoder,
	}
}

// GetItems returns the items of one page. It is GetItemsWithMetadata without
// the pagination fields; a nil collection yields nil items and no error.
func (p *EntriesProvider) GetItems(ctx context.Context, opts ...domain.FilterOption) ([]domain.Item, error) {
	coll, err := p.GetItemsWithMetadata(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return coll.Items(), nil
}

// GetItemsWithMetadata fetches one page of items with its pagination data.
func (p *EntriesProvider) GetItemsWithMetadata(ctx context.Context, opts ...domain.FilterOption) (*domain.ItemCollection, error) {
	query := BuildQuery(domain.NewItemFilter(opts...))
	slog.Debug("Fetching items", "path", entriesPath, "query", query.Encode())

	body, err := p.requester.Execute(ctx, http.MethodGet, entriesPath, query)
	if err != nil {
		return nil, err
	}
	if isNullBody(body) {
		return nil, nil
	}

	var coll *domain.ItemCollection
	if err := p.decoder.Decode(body, &coll); err != nil {
		return nil, err
	}
	if coll == nil {
		return nil, nil
	}

	for i := range coll.Embedded.Items {
		ResolvePreviewPicture(&coll.Embedded.Items[i])
	}

	slog.Debug("Fetched items",
		"page", coll.Page,
		"pages", coll.Pages,
		"total", coll.Total,
		"items_on_page", len(coll.Embedded.Items))
	return coll, nil
}

// GetItem fetches a single item by id. A null body yields nil and no error.
func (p *EntriesProvider) GetItem(ctx context.Context, id int) (*domain.Item, error) {
	path := fmt.Sprintf("%s/%d", entriesPath, id)

	body, err := p.requester.Execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if isNullBody(body) {
		return nil, nil
	}

	var item *domain.Item
	if err := p.decoder.Decode(body, &item); err != nil {
		return nil, err
	}

	ResolvePreviewPicture(item)
	return item, nil
}

func isNullBody(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
