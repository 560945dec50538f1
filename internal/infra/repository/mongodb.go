package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ReadLaterSync/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository is the local mirror of saved items, keyed by API id.
type MongoRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

var _ domain.Repository = (*MongoRepository)(nil)

func NewMongoRepository(client *mongo.Client, dbName, collectionName string) (*MongoRepository, error) {
	db := client.Database(dbName)
	repo := &MongoRepository{
		db:         db,
		collection: db.Collection(collectionName),
	}

	if err := repo.createIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return repo, nil
}

func (r *MongoRepository) createIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("updated_at_idx"),
		},
		{
			Keys: bson.D{
				{Key: "is_archived", Value: 1},
				{Key: "is_starred", Value: 1},
			},
			Options: options.Index().SetName("state_idx"),
		},
		{
			Keys:    bson.D{{Key: "tags.slug", Value: 1}},
			Options: options.Index().SetName("tag_slug_idx"),
		},
	}

	opts := options.CreateIndexes().SetMaxTime(10 * time.Second)
	_, err := r.collection.Indexes().CreateMany(ctx, models, opts)
	return err
}

func (r *MongoRepository) Upsert(ctx context.Context, item *domain.Item) error {
	filter := bson.M{"_id": item.ID}
	update := bson.M{"$set": item}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert item %d: %w", item.ID, err)
	}
	return nil
}

func (r *MongoRepository) BulkUpsert(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(items))
	for _, item := range items {
		model := mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": item.ID}).
			SetUpdate(bson.M{"$set": item}).
			SetUpsert(true)
		models = append(models, model)
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := r.collection.BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("failed to bulk upsert items: %w", err)
	}
	return nil
}

// GetLastUpdated returns the most recently updated mirrored item, or nil
// when the mirror is empty.
func (r *MongoRepository) GetLastUpdated(ctx context.Context) (*domain.Item, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	var item domain.Item
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MongoRepository) GetContentHashes(ctx context.Context, ids []int) (map[int]string, error) {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "content_hash": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			slog.Warn("Failed to close cursor", "error", err)
		}
	}()

	results := make(map[int]string)
	for cursor.Next(ctx) {
		var doc struct {
			ID          int    `bson:"_id"`
			ContentHash string `bson:"content_hash"`
		}
		if err := cursor.Decode(&doc); err != nil {
			slog.Warn("Skipping malformed hash document", "error", err)
			continue
		}
		results[doc.ID] = doc.ContentHash
	}
	return results, cursor.Err()
}
