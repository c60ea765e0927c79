package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection("products"),
	}
}

func (m *mongoProductRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product

	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (m *mongoProductRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error) {
	query := bson.M{}

	if filter.Category != "" && filter.Category != "all" {
		query["category"] = filter.Category
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["price"] = price
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	sort := sortOption(filter.Sort)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := m.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}

	total, err := m.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	return products, total, nil
}

func sortOption(key string) bson.D {
	switch key {
	case "name":
		return bson.D{{Key: "name", Value: 1}}
	case "-name":
		return bson.D{{Key: "name", Value: -1}}
	case "price":
		return bson.D{{Key: "price", Value: 1}}
	case "-price":
		return bson.D{{Key: "price", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (m *mongoProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (m *mongoProductRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now()

	result, err := m.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (m *mongoProductRepository) DeleteProduct(ctx context.Context, id string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (m *mongoProductRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
