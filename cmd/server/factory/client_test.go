package factory

import (
	"testing"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSavedQuery(t *testing.T) {
	archived := false
	perPage := 30
	q, err := ToSavedQuery(config.QueryConfig{
		Name:     "unread",
		Archived: &archived,
		Sort:     "updated",
		Order:    "desc",
		PerPage:  &perPage,
		Tags:     []string{"go"},
	})
	require.NoError(t, err)

	assert.Equal(t, "unread", q.Name)
	require.NotNil(t, q.Filter.Archived)
	assert.False(t, *q.Filter.Archived)
	assert.Nil(t, q.Filter.Starred)
	assert.Equal(t, domain.ByLastModificationDate, *q.Filter.DateOrder)
	assert.Equal(t, domain.Descending, *q.Filter.SortOrder)
	assert.Nil(t, q.Filter.Page)
	assert.Equal(t, 30, *q.Filter.PerPage)
	assert.Equal(t, []string{"go"}, q.Filter.Tags)
}

func TestToSavedQuery_Invalid(t *testing.T) {
	_, err := ToSavedQuery(config.QueryConfig{})
	assert.Error(t, err)

	_, err = ToSavedQuery(config.QueryConfig{Name: "x", Sort: "published"})
	assert.Error(t, err)

	_, err = ToSavedQuery(config.QueryConfig{Name: "x", Order: "up"})
	assert.Error(t, err)
}

func TestNewSavedQueries_SkipsInvalid(t *testing.T) {
	cfg := &config.Config{Queries: []config.QueryConfig{
		{Name: "bad", Sort: "nope"},
		{Name: "starred"},
	}}

	queries, err := NewSavedQueries(cfg)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "starred", queries[0].Name)

	_, err = NewSavedQueries(&config.Config{})
	assert.Error(t, err)
}
