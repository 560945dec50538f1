package domain

import (
	"context"
	"fmt"
	"net/url"
)

// DateOrder selects which timestamp the API sorts on.
type DateOrder int

const (
	ByCreationDate DateOrder = iota
	ByLastModificationDate
)

// QueryValue is the wire form of the sort field.
func (o DateOrder) QueryValue() string {
	if o == ByLastModificationDate {
		return "updated"
	}
	return "created"
}

// ParseDateOrder maps "created"/"updated" back to a DateOrder.
func ParseDateOrder(s string) (DateOrder, error) {
	switch s {
	case "created":
		return ByCreationDate, nil
	case "updated":
		return ByLastModificationDate, nil
	default:
		return 0, fmt.Errorf("unknown date order %q", s)
	}
}

// SortOrder is the sort direction.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) QueryValue() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return 0, fmt.Errorf("unknown sort order %q", s)
	}
}

// ItemFilter holds the optional list filters. A nil field is absent and is
// never sent to the server; a non-nil Tags slice is sent even when empty.
type ItemFilter struct {
	Archived  *bool
	Starred   *bool
	DateOrder *DateOrder
	SortOrder *SortOrder
	Page      *int
	PerPage   *int
	Tags      []string
}

// FilterOption sets one field of an ItemFilter.
type FilterOption func(*ItemFilter)

func WithArchived(archived bool) FilterOption {
	return func(f *ItemFilter) { f.Archived = &archived }
}

func WithStarred(starred bool) FilterOption {
	return func(f *ItemFilter) { f.Starred = &starred }
}

func WithDateOrder(order DateOrder) FilterOption {
	return func(f *ItemFilter) { f.DateOrder = &order }
}

func WithSortOrder(order SortOrder) FilterOption {
	return func(f *ItemFilter) { f.SortOrder = &order }
}

func WithPage(page int) FilterOption {
	return func(f *ItemFilter) { f.Page = &page }
}

func WithPerPage(perPage int) FilterOption {
	return func(f *ItemFilter) { f.PerPage = &perPage }
}

// WithTags restricts the list to items carrying the given tags.
func WithTags(tags ...string) FilterOption {
	return func(f *ItemFilter) {
		if tags == nil {
			tags = []string{}
		}
		f.Tags = tags
	}
}

// NewItemFilter applies opts to an empty filter.
func NewItemFilter(opts ...FilterOption) ItemFilter {
	var f ItemFilter
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Options turns a filter back into the options that produce it.
func (f ItemFilter) Options() []FilterOption {
	var opts []FilterOption
	if f.Archived != nil {
		opts = append(opts, WithArchived(*f.Archived))
	}
	if f.Starred != nil {
		opts = append(opts, WithStarred(*f.Starred))
	}
	if f.DateOrder != nil {
		opts = append(opts, WithDateOrder(*f.DateOrder))
	}
	if f.SortOrder != nil {
		opts = append(opts, WithSortOrder(*f.SortOrder))
	}
	if f.Page != nil {
		opts = append(opts, WithPage(*f.Page))
	}
	if f.PerPage != nil {
		opts = append(opts, WithPerPage(*f.PerPage))
	}
	if f.Tags != nil {
		opts = append(opts, WithTags(f.Tags...))
	}
	return opts
}

// Requester executes one HTTP call against the API and returns the raw body.
type Requester interface {
	Execute(ctx context.Context, method, path string, params url.Values) ([]byte, error)
}

// Decoder parses a raw response body into v.
type Decoder interface {
	Decode(data []byte, v any) error
}

// ItemSource is the read side of the entries API.
type ItemSource interface {
	GetItems(ctx context.Context, opts ...FilterOption) ([]Item, error)
	GetItemsWithMetadata(ctx context.Context, opts ...FilterOption) (*ItemCollection, error)
	GetItem(ctx context.Context, id int) (*Item, error)
}
