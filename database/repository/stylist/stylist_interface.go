package stylistRepo

import (
	"context"

	"beautycita/models"
)

// StylistRepository defines stylist data access.
type StylistRepository interface {
	// GetByID retrieves a stylist by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Stylist, error)
	// Create inserts a new stylist record.
	Create(ctx context.Context, s *models.Stylist) error
	// SearchStylists returns active stylists near params.Location that offer the requested
	// category or service, nearest first, with distances in miles.
	SearchStylists(ctx context.Context, params models.StylistSearchParams) ([]models.CandidateStylist, error)
}
