package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DataStore is the subset of a collection the repositories use.
type DataStore interface {
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CreateIndexes(ctx context.Context, models []mongo.IndexModel) error
}

// CollectionProvider hands out collections by name.
type CollectionProvider interface {
	Collection(name string) DataStore
}

// Collection adapts *mongo.Collection to DataStore.
type Collection struct {
	*mongo.Collection
}

// BulkWrite performs a bulk write operation.
func (c *Collection) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	result, err := c.Collection.BulkWrite(ctx, models, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform BulkWrite on %s: %w", c.Name(), err)
	}

	return result, nil
}

// CreateIndexes creates the given indexes if they do not exist.
func (c *Collection) CreateIndexes(ctx context.Context, models []mongo.IndexModel) error {
	if _, err := c.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create indexes on %s: %w", c.Name(), err)
	}

	return nil
}

// Provider adapts a mongo database to CollectionProvider.
type Provider struct {
	db *mongo.Database
}

// NewProvider creates a Provider for the named database.
func NewProvider(client *mongo.Client, database string) *Provider {
	return &Provider{db: client.Database(database)}
}

// Collection returns a DataStore for the given collection name.
func (p *Provider) Collection(name string) DataStore {
	return &Collection{p.db.Collection(name)}
}
