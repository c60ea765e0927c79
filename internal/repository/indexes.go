package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates every collection index the repositories rely on.
// Safe to call on every startup; index creation is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	creators := []interface {
		CreateIndexes(ctx context.Context) error
	}{
		&mongoCartRepository{collection: db.Collection("carts")},
		&mongoProductRepository{collection: db.Collection("products")},
		&mongoOrderRepository{collection: db.Collection("orders")},
		&mongoUserRepository{collection: db.Collection("users")},
		&mongoFavoriteRepository{collection: db.Collection("favorites")},
	}

	for _, c := range creators {
		if err := c.CreateIndexes(ctx); err != nil {
			return err
		}
	}

	return nil
}
