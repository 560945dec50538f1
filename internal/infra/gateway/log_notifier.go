package gateway

import (
	"context"
	"log/slog"

	"github.com/ReadLaterSync/internal/domain"
)

// LogNotifier is a Notifier that only records the change in the log.
type LogNotifier struct {
	logger *slog.Logger
}

var _ domain.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, item *domain.Item) error {
	n.logger.InfoContext(ctx, "Saved item changed",
		"item_id", item.ID,
		"title", item.Title,
		"url", item.URL,
		"archived", item.IsArchived,
		"starred", item.IsStarred,
		"updated_at", item.UpdatedAt)
	return nil
}
