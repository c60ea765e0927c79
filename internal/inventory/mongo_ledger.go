package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoLedger struct {
	collection *mongo.Collection
}

// NewMongoLedger returns a Ledger over the products collection. Reserve is a
// single conditional update (stock >= quantity guard inside the filter), which
// is the only atomicity the store offers and the only one the ledger needs.
func NewMongoLedger(db *mongo.Database) Ledger {
	return &mongoLedger{
		collection: db.Collection("products"),
	}
}

func (m *mongoLedger) Read(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product

	err := m.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	return &product, nil
}

func (m *mongoLedger) Reserve(ctx context.Context, productID string, quantity int) error {
	filter := bson.M{
		"_id":   productID,
		"stock": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	if result.MatchedCount == 0 {
		// The guard rejected the update: either the product is gone or the
		// stock is short. Re-read to tell the two apart.
		product, readErr := m.Read(ctx, productID)
		if readErr != nil {
			return readErr
		}
		return &InsufficientStockError{ProductID: productID, Name: product.Name}
	}

	return nil
}

func (m *mongoLedger) Release(ctx context.Context, productID string, quantity int) error {
	update := bson.M{
		"$inc": bson.M{"stock": quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}
