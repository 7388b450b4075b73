package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beautycita/database"
	"beautycita/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrServiceNotFound = errors.New("service not found")

// MongoCatalogRepo implements CatalogRepository over the "categories" and "services" collections.
type MongoCatalogRepo struct {
	categories *mongo.Collection
	services   *mongo.Collection
}

func NewMongoCatalogRepo() CatalogRepository {
	db := database.DB()
	return &MongoCatalogRepo{categories: db.Collection("categories"), services: db.Collection("services")}
}

// NewCatalogRepoWithCollections wraps existing collections.
func NewCatalogRepoWithCollections(categories, services *mongo.Collection) *MongoCatalogRepo {
	return &MongoCatalogRepo{categories: categories, services: services}
}

func (r *MongoCatalogRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cursor, err := r.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)
	out := []models.Category{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return out, nil
}

func (r *MongoCatalogRepo) ListServicesByCategory(ctx context.Context, category string) ([]models.ServiceRef, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cursor, err := r.services.Find(ctx, bson.M{"category": category}, options.Find().SetSort(bson.D{{Key: "basePrice", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list services for %s: %w", category, err)
	}
	defer cursor.Close(ctx)
	out := []models.ServiceRef{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return out, nil
}

func (r *MongoCatalogRepo) GetService(ctx context.Context, id string) (*models.ServiceRef, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var svc models.ServiceRef
	if err := r.services.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch service %s: %w", id, err)
	}
	return &svc, nil
}
