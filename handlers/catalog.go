package handlers

import (
	"net/http"

	"beautycita/models"
	"beautycita/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	Catalog booking.Catalog
	Logger  *zap.Logger
}

func NewCatalogHandler(catalog booking.Catalog, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{Catalog: catalog, Logger: logger}
}

// GetCategories handles GET /api/services/categories.
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.Catalog.GetServiceCategories(c.Request.Context())
	if err != nil {
		h.Logger.Error("GetCategories: failed to fetch categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch categories", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetServicesByCategory handles GET /api/services/categories/:category.
func (h *CatalogHandler) GetServicesByCategory(c *gin.Context) {
	services, err := h.Catalog.GetServicesByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.Logger.Error("GetServicesByCategory: failed to fetch services", zap.String("category", c.Param("category")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch services", "message": err.Error()})
		return
	}
	if services == nil {
		services = []models.ServiceRef{}
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}
