package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Item represents a single saved article as returned by the read-later API.
type Item struct {
	ID             int       `json:"id" bson:"_id"`
	URL            string    `json:"url" bson:"url"`
	Title          string    `json:"title" bson:"title"`
	Content        string    `json:"content" bson:"content"`
	PreviewPicture string    `json:"preview_picture,omitempty" bson:"preview_picture"` // may be relative on the wire
	IsArchived     bool      `json:"is_archived" bson:"is_archived"`
	IsStarred      bool      `json:"is_starred" bson:"is_starred"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
	Tags           []Tag     `json:"tags" bson:"tags"`
	DomainName     string    `json:"domain_name,omitempty" bson:"domain_name"`
	ReadingTime    int       `json:"reading_time" bson:"reading_time"`
	Language       string    `json:"language,omitempty" bson:"language"`
	MimeType       string    `json:"mimetype,omitempty" bson:"mimetype"`
	ContentHash    string    `json:"content_hash,omitempty" bson:"content_hash"`
}

// Tag is a label attached to an item.
type Tag struct {
	ID    int    `json:"id" bson:"id"`
	Label string `json:"label" bson:"label"`
	Slug  string `json:"slug" bson:"slug"`
}

// UnmarshalJSON accepts the API's loose encodings: 0/1 flags and
// timestamps with or without a colon in the zone offset.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	aux := struct {
		*plain
		IsArchived flag      `json:"is_archived"`
		IsStarred  flag      `json:"is_starred"`
		CreatedAt  timestamp `json:"created_at"`
		UpdatedAt  timestamp `json:"updated_at"`
	}{plain: (*plain)(i)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.IsArchived = bool(aux.IsArchived)
	i.IsStarred = bool(aux.IsStarred)
	i.CreatedAt = time.Time(aux.CreatedAt)
	i.UpdatedAt = time.Time(aux.UpdatedAt)
	return nil
}

// ComputeHash generates a deterministic hash of the item's user-visible state.
// Timestamps are excluded so a touch without content change is not reported.
func (i *Item) ComputeHash() string {
	hasher := sha256.New()
	for _, field := range []string{i.URL, i.Title, i.Content, i.PreviewPicture} {
		hasher.Write([]byte(field))
		hasher.Write([]byte{0})
	}
	fmt.Fprintf(hasher, "|%t|%t|", i.IsArchived, i.IsStarred)
	for _, t := range i.Tags {
		hasher.Write([]byte(t.Label))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// ItemCollection is one page of items plus pagination metadata.
type ItemCollection struct {
	Page     int           `json:"page"`
	PerPage  int           `json:"limit"`
	Pages    int           `json:"pages"`
	Total    int           `json:"total"`
	Embedded EmbeddedItems `json:"_embedded"`
}

// EmbeddedItems wraps the item list the way the API nests it.
type EmbeddedItems struct {
	Items []Item `json:"items"`
}

// Items returns the page's items in server order.
func (c *ItemCollection) Items() []Item {
	if c == nil {
		return nil
	}
	return c.Embedded.Items
}

type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "1", "true":
		*f = true
	case "0", "false", "null", "":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
}

type timestamp time.Time

func (t *timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = timestamp(time.Time{})
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// ItemWriter handles item persistence operations.
type ItemWriter interface {
	Upsert(ctx context.Context, item *Item) error
	BulkUpsert(ctx context.Context, items []Item) error
}

// ItemReader handles item retrieval from the mirror.
type ItemReader interface {
	GetLastUpdated(ctx context.Context) (*Item, error)
}

// HashReader handles content hash retrieval for change detection.
type HashReader interface {
	GetContentHashes(ctx context.Context, ids []int) (map[int]string, error)
}

// Repository is the composite mirror store.
type Repository interface {
	ItemWriter
	ItemReader
	HashReader
}

// EventProducer publishes item events to a queue.
type EventProducer interface {
	Publish(ctx context.Context, item *Item) error
	PublishBatch(ctx context.Context, items []Item) error
	Close() error
}

// Notifier is the downstream consumer of changed items.
type Notifier interface {
	Notify(ctx context.Context, item *Item) error
}
