package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/interfaces/http/dto"
)

// LocationHandler handles the location registry endpoints
type LocationHandler struct {
	BaseHandler
	registry *appinventory.LocationRegistry
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(registry *appinventory.LocationRegistry) *LocationHandler {
	return &LocationHandler{registry: registry}
}

// List godoc
// @ID           listLocations
// @Summary      List locations
// @Description  All locations ordered by priority, active or not
// @Tags         locations
// @Produce      json
// @Success      200 {object} dto.Response{data=[]dto.LocationResponse}
// @Failure      500 {object} dto.Response
// @Router       /locations [get]
func (h *LocationHandler) List(c *gin.Context) {
	locations, err := h.registry.ListLocations(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToLocationResponses(locations))
}

// Create godoc
// @ID           createLocation
// @Summary      Create a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateLocationRequest true "Location"
// @Success      201 {object} dto.Response{data=dto.LocationResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	var req dto.CreateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	location, err := h.registry.AddLocation(c.Request.Context(), inventory.LocationSpec{
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
		Type:     inventory.LocationType(req.Type),
		Priority: req.Priority,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToLocationResponse(location))
}

// Get godoc
// @ID           getLocation
// @Summary      Get a location
// @Tags         locations
// @Produce      json
// @Param        id path string true "Location ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.LocationResponse}
// @Failure      404 {object} dto.Response
// @Router       /locations/{id} [get]
func (h *LocationHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	location, err := h.registry.GetLocation(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToLocationResponse(location))
}

// Update godoc
// @ID           updateLocation
// @Summary      Activate, deactivate or reprioritize a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        id path string true "Location ID" format(uuid)
// @Param        request body dto.UpdateLocationRequest true "Changes"
// @Success      200 {object} dto.Response{data=dto.LocationResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /locations/{id} [patch]
func (h *LocationHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Active == nil && req.Priority == nil {
		h.BadRequest(c, "Nothing to update")
		return
	}

	ctx := c.Request.Context()
	location, err := h.registry.GetLocation(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.Priority != nil {
		if location, err = h.registry.SetPriority(ctx, id, *req.Priority); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.Active != nil {
		if location, err = h.registry.SetActive(ctx, id, *req.Active); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.Success(c, dto.ToLocationResponse(location))
}
