package provider

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/ReadLaterSync/internal/domain"
)

const (
	paramArchive = "archive"
	paramStarred = "starred"
	paramSort    = "sort"
	paramOrder   = "order"
	paramPage    = "page"
	paramPerPage = "perPage"
	paramTags    = "tags"
)

// BuildQuery encodes the supplied filters as query parameters.
// Absent filters are omitted; values are not range checked.
func BuildQuery(f domain.ItemFilter) url.Values {
	q := url.Values{}
	if f.Archived != nil {
		q.Set(paramArchive, boolParam(*f.Archived))
	}
	if f.Starred != nil {
		q.Set(paramStarred, boolParam(*f.Starred))
	}
	if f.DateOrder != nil {
		q.Set(paramSort, f.DateOrder.QueryValue())
	}
	if f.SortOrder != nil {
		q.Set(paramOrder, f.SortOrder.QueryValue())
	}
	if f.Page != nil {
		q.Set(paramPage, strconv.Itoa(*f.Page))
	}
	if f.PerPage != nil {
		q.Set(paramPerPage, strconv.Itoa(*f.PerPage))
	}
	if f.Tags != nil {
		q.Set(paramTags, html.EscapeString(strings.Join(f.Tags, ",")))
	}
	return q
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
