package catalogRepo

import (
	"context"

	"beautycita/models"
)

// CatalogRepository reads service categories and services.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListServicesByCategory(ctx context.Context, category string) ([]models.ServiceRef, error)
	GetService(ctx context.Context, id string) (*models.ServiceRef, error)
}
