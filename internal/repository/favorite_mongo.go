package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoFavoriteRepository struct {
	collection *mongo.Collection
}

func NewMongoFavoriteRepository(db *mongo.Database) FavoriteRepository {
	return &mongoFavoriteRepository{
		collection: db.Collection("favorites"),
	}
}

func (m *mongoFavoriteRepository) ListFavorites(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer cursor.Close(ctx)

	var favorites []*domain.Favorite
	if err := cursor.All(ctx, &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}

	return favorites, nil
}

func (m *mongoFavoriteRepository) AddFavorite(ctx context.Context, fav *domain.Favorite) error {
	if fav.ID == "" {
		fav.ID = uuid.New().String()
	}
	fav.CreatedAt = time.Now()

	_, err := m.collection.InsertOne(ctx, fav)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateFavorite
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	return nil
}

func (m *mongoFavoriteRepository) RemoveFavorite(ctx context.Context, userID, productID string) error {
	filter := bson.M{"user_id": userID, "product_id": productID}

	_, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	return nil
}

func (m *mongoFavoriteRepository) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	filter := bson.M{"user_id": userID, "product_id": productID}

	err := m.collection.FindOne(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}

	return true, nil
}

func (m *mongoFavoriteRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
