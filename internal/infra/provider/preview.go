package provider

import (
	"log/slog"
	"net/url"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/infra/metrics"
)

// ResolvePreviewPicture makes item.PreviewPicture absolute by resolving it
// against the scheme and host of item.URL. Empty or already absolute values
// are left untouched, as are items whose URL has no scheme and host. A value
// that does not parse as a URI reference is treated as a literal path.
func ResolvePreviewPicture(item *domain.Item) {
	if item == nil || item.PreviewPicture == "" {
		return
	}

	ref, err := url.Parse(item.PreviewPicture)
	if err != nil {
		// Unescaped paths such as "/img/50%off.jpg" are taken literally.
		slog.Debug("Escaping unparseable preview picture", "item_id", item.ID, "preview_picture", item.PreviewPicture, "error", err)
		ref = &url.URL{Path: item.PreviewPicture}
	}
	if ref.IsAbs() {
		return
	}

	source, err := url.Parse(item.URL)
	if err != nil || source.Scheme == "" || source.Host == "" {
		slog.Debug("Cannot resolve preview picture, item URL has no host", "item_id", item.ID, "url", item.URL)
		return
	}

	origin := &url.URL{Scheme: source.Scheme, User: source.User, Host: source.Host}
	item.PreviewPicture = origin.ResolveReference(ref).String()
	metrics.PreviewPicturesResolved.Inc()
}
