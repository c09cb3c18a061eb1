package handler

import (
	"github.com/driveport/service-rental/internal/application"
	"github.com/driveport/service-rental/internal/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler exposes read access to the car catalog and hubs, plus the
// maintenance-flag toggle.
type CatalogHandler struct {
	fleet  *application.FleetService
	logger *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(fleet *application.FleetService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{fleet: fleet, logger: logger}
}

// RegisterRoutes registers the catalog read routes on the given group.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cars", h.ListCars)
	rg.GET("/hubs", h.ListHubs)
}

// RegisterStaffRoutes registers catalog routes requiring staff privileges.
func (h *CatalogHandler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.PUT("/cars/:id/availability", h.SetAvailability)
}

// ListCars handles GET /cars.
func (h *CatalogHandler) ListCars(c *gin.Context) {
	cars, err := h.fleet.ListCars(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cars)
}

// ListHubs handles GET /hubs.
func (h *CatalogHandler) ListHubs(c *gin.Context) {
	hubs, err := h.fleet.ListHubs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, hubs)
}

type setAvailabilityRequest struct {
	Available string `json:"available" binding:"required"`
}

// SetAvailability handles PUT /cars/:id/availability. The flag accepts the
// catalog's historical truthy/falsy string encodings.
func (h *CatalogHandler) SetAvailability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.fleet.SetCarAvailability(c.Request.Context(), id, req.Available); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
