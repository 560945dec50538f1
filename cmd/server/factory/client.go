package factory

import (
	"fmt"
	"log/slog"

	"github.com/ReadLaterSync/internal/app"
	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/infra/api"
	"github.com/ReadLaterSync/internal/infra/codec"
	"github.com/ReadLaterSync/internal/infra/provider"
	"github.com/ReadLaterSync/pkg/config"
)

// NewAPIClient creates the HTTP requester for the read-later API.
func NewAPIClient(cfg *config.Config) (domain.Requester, error) {
	return api.NewClient(api.Options{
		BaseURL:    cfg.APIBaseURL,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.APITimeout,
		MaxRetries: cfg.APIMaxRetries,
	})
}

// NewDecoder resolves the configured response decoder.
func NewDecoder(cfg *config.Config) (domain.Decoder, error) {
	return codec.GetDecoder(cfg.Decoder)
}

// NewItemSource creates the entries client.
func NewItemSource(requester domain.Requester, decoder domain.Decoder) domain.ItemSource {
	return provider.NewEntriesProvider(requester, decoder)
}

// NewSavedQueries converts configured queries into filters, skipping invalid ones.
func NewSavedQueries(cfg *config.Config) ([]app.SavedQuery, error) {
	var queries []app.SavedQuery
	for _, qc := range cfg.Queries {
		q, err := ToSavedQuery(qc)
		if err != nil {
			slog.Warn("Skipping query", "query", qc.Name, "error", err)
			continue
		}
		queries = append(queries, q)
		slog.Info("Registered query", "query", q.Name)
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("no valid queries configured")
	}
	return queries, nil
}

// ToSavedQuery maps one configured query onto an item filter.
func ToSavedQuery(qc config.QueryConfig) (app.SavedQuery, error) {
	if qc.Name == "" {
		return app.SavedQuery{}, fmt.Errorf("query name is required")
	}

	var opts []domain.FilterOption
	if qc.Archived != nil {
		opts = append(opts, domain.WithArchived(*qc.Archived))
	}
	if qc.Starred != nil {
		opts = append(opts, domain.WithStarred(*qc.Starred))
	}
	if qc.Sort != "" {
		order, err := domain.ParseDateOrder(qc.Sort)
		if err != nil {
			return app.SavedQuery{}, err
		}
		opts = append(opts, domain.WithDateOrder(order))
	}
	if qc.Order != "" {
		order, err := domain.ParseSortOrder(qc.Order)
		if err != nil {
			return app.SavedQuery{}, err
		}
		opts = append(opts, domain.WithSortOrder(order))
	}
	if qc.Page != nil {
		opts = append(opts, domain.WithPage(*qc.Page))
	}
	if qc.PerPage != nil {
		opts = append(opts, domain.WithPerPage(*qc.PerPage))
	}
	if qc.Tags != nil {
		opts = append(opts, domain.WithTags(qc.Tags...))
	}

	return app.SavedQuery{Name: qc.Name, Filter: domain.NewItemFilter(opts...)}, nil
}
