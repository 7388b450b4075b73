package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	catalogRepo "beautycita/database/repository/catalog"
	"beautycita/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	categoriesCacheKey = "catalog:categories"
	categoriesCacheTTL = 10 * time.Minute
)

// DefaultCategories is served when the store has nothing or cannot be reached.
var DefaultCategories = []models.Category{
	{ID: "hair", Name: "Hair Services", Description: "Cuts, styling, coloring, treatments", Icon: "fas fa-cut"},
	{ID: "makeup", Name: "Makeup Services", Description: "Professional makeup for any occasion", Icon: "fas fa-palette"},
	{ID: "nails", Name: "Nail Services", Description: "Complete nail care and artistry", Icon: "fas fa-hand-sparkles"},
	{ID: "skincare", Name: "Skincare Services", Description: "Rejuvenating facial treatments", Icon: "fas fa-spa"},
}

// DefaultCatalogService serves the service catalogue, caching categories in Redis when a
// cache client is configured.
type DefaultCatalogService struct {
	Repo        catalogRepo.CatalogRepository
	CacheClient *redis.Client
	Logger      *zap.Logger
}

func NewDefaultCatalogService(repo catalogRepo.CatalogRepository, cache *redis.Client, logger *zap.Logger) *DefaultCatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultCatalogService{Repo: repo, CacheClient: cache, Logger: logger}
}

// GetServiceCategories never fails: store errors degrade to DefaultCategories.
func (s *DefaultCatalogService) GetServiceCategories(ctx context.Context) ([]models.Category, error) {
	if s.CacheClient != nil {
		cached, err := s.CacheClient.Get(ctx, categoriesCacheKey).Result()
		if err == nil && cached != "" {
			var categories []models.Category
			if err := json.Unmarshal([]byte(cached), &categories); err == nil {
				return categories, nil
			}
		}
	}

	categories, err := s.Repo.ListCategories(ctx)
	if err != nil {
		s.Logger.Warn("Falling back to default categories", zap.Error(err))
		return defaults(), nil
	}
	if len(categories) == 0 {
		return defaults(), nil
	}

	if s.CacheClient != nil {
		if data, err := json.Marshal(categories); err == nil {
			if err := s.CacheClient.Set(ctx, categoriesCacheKey, data, categoriesCacheTTL).Err(); err != nil {
				s.Logger.Debug("Failed to cache categories", zap.Error(err))
			}
		}
	}
	return categories, nil
}

func (s *DefaultCatalogService) GetServicesByCategory(ctx context.Context, category string) ([]models.ServiceRef, error) {
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}
	services, err := s.Repo.ListServicesByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	return services, nil
}

func (s *DefaultCatalogService) GetService(ctx context.Context, id string) (*models.ServiceRef, error) {
	return s.Repo.GetService(ctx, id)
}

func defaults() []models.Category {
	out := make([]models.Category, len(DefaultCategories))
	copy(out, DefaultCategories)
	return out
}
