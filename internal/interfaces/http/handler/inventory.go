package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/interfaces/http/dto"
)

// InventoryHandler handles ledger, reservation, allocation, alert and
// forecast endpoints
type InventoryHandler struct {
	BaseHandler
	svc *appinventory.Service
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(svc *appinventory.Service) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// stockKey parses the product_id and location_id path parameters
func (h *InventoryHandler) stockKey(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	productID, ok := h.ParamUUID(c, "product_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	locationID, ok := h.ParamUUID(c, "location_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return productID, locationID, true
}

// GetItem godoc
// @ID           getInventoryItem
// @Summary      Get the ledger entry of a product at a location
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        location_id path string true "Location ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.InventoryItemResponse}
// @Failure      404 {object} dto.Response
// @Router       /inventory/items/{product_id}/{location_id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	productID, locationID, ok := h.stockKey(c)
	if !ok {
		return
	}
	item, err := h.svc.Ledger.GetItem(c.Request.Context(), productID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if item == nil {
		h.HandleError(c, inventory.NewProductNotTrackedError(inventory.NewStockKey(productID, locationID)))
		return
	}
	h.Success(c, dto.ToInventoryItemResponse(item))
}

// UpdateThresholds godoc
// @ID           updateInventoryThresholds
// @Summary      Set alert and reorder thresholds of an item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        location_id path string true "Location ID" format(uuid)
// @Param        request body dto.UpdateThresholdsRequest true "Thresholds"
// @Success      200 {object} dto.Response{data=dto.InventoryItemResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /inventory/items/{product_id}/{location_id}/thresholds [put]
func (h *InventoryHandler) UpdateThresholds(c *gin.Context) {
	productID, locationID, ok := h.stockKey(c)
	if !ok {
		return
	}
	var req dto.UpdateThresholdsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.svc.Ledger.UpdateThresholds(c.Request.Context(), productID, locationID, req.ToThresholds())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToInventoryItemResponse(item))
}

// History godoc
// @ID           listInventoryMovements
// @Summary      Movement history of an item in sequence order
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        location_id path string true "Location ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]dto.MovementResponse}
// @Router       /inventory/items/{product_id}/{location_id}/movements [get]
func (h *InventoryHandler) History(c *gin.Context) {
	productID, locationID, ok := h.stockKey(c)
	if !ok {
		return
	}
	movements, err := h.svc.Ledger.History(c.Request.Context(), productID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToMovementResponses(movements))
}

// Reconcile godoc
// @ID           reconcileInventoryItem
// @Summary      Replay the movement history and compare it with the item
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        location_id path string true "Location ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.ReconciliationResponse}
// @Failure      404 {object} dto.Response
// @Router       /inventory/items/{product_id}/{location_id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	productID, locationID, ok := h.stockKey(c)
	if !ok {
		return
	}
	result, err := h.svc.Ledger.Reconcile(c.Request.Context(), productID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToReconciliationResponse(result))
}

// ListByProduct godoc
// @ID           listInventoryByProduct
// @Summary      Ledger entries of a product at every location
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]dto.InventoryItemResponse}
// @Router       /inventory/products/{product_id}/items [get]
func (h *InventoryHandler) ListByProduct(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "product_id")
	if !ok {
		return
	}
	items, err := h.svc.Ledger.ItemsForProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToInventoryItemResponses(items))
}

// TotalAvailable godoc
// @ID           getProductAvailability
// @Summary      Available quantity of a product summed over all locations
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.AvailabilityResponse}
// @Router       /inventory/products/{product_id}/available [get]
func (h *InventoryHandler) TotalAvailable(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "product_id")
	if !ok {
		return
	}
	total, err := h.svc.Ledger.TotalAvailable(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.AvailabilityResponse{ProductID: productID, Available: total})
}

// ListByLocation godoc
// @ID           listInventoryByLocation
// @Summary      Ledger entries held at a location
// @Tags         inventory
// @Produce      json
// @Param        location_id path string true "Location ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]dto.InventoryItemResponse}
// @Failure      404 {object} dto.Response
// @Router       /inventory/locations/{location_id}/items [get]
func (h *InventoryHandler) ListByLocation(c *gin.Context) {
	locationID, ok := h.ParamUUID(c, "location_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.svc.Locations.GetLocation(ctx, locationID); err != nil {
		h.HandleError(c, err)
		return
	}
	items, err := h.svc.Ledger.ItemsForLocation(ctx, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToInventoryItemResponses(items))
}

// RecordMovement godoc
// @ID           recordInventoryMovement
// @Summary      Record a purchase, sale, adjustment, loss or return
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Actor header string false "Who performs the movement"
// @Param        request body dto.RecordMovementRequest true "Movement"
// @Success      201 {object} dto.Response{data=dto.MovementResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	movement, err := h.svc.Ledger.RecordMovement(c.Request.Context(), req.ToSpec(actor(c)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToMovementResponse(movement))
}

// Transfer godoc
// @ID           transferInventory
// @Summary      Move stock between two locations atomically
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Actor header string false "Who performs the transfer"
// @Param        request body dto.TransferRequest true "Transfer"
// @Success      201 {object} dto.Response{data=[]dto.MovementResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	movements, err := h.svc.Ledger.Transfer(c.Request.Context(), req.ToSpec(actor(c)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToMovementResponses(movements))
}

// Reserve godoc
// @ID           reserveInventory
// @Summary      Reserve stock at a location or at the first location that can cover it
// @Description  Returns reserved=false when no single eligible location has enough available stock
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        request body dto.ReservationRequest true "Reservation"
// @Success      200 {object} dto.Response{data=dto.ReservationResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /inventory/reservations [post]
func (h *InventoryHandler) Reserve(c *gin.Context) {
	var req dto.ReservationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	reserved, err := h.svc.Reservations.Reserve(c.Request.Context(), req.ToReserveRequest(actor(c)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ReservationResponse{Reserved: reserved})
}

// Release godoc
// @ID           releaseInventory
// @Summary      Give back reserved stock
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        request body dto.ReservationRequest true "Release"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /inventory/reservations/release [post]
func (h *InventoryHandler) Release(c *gin.Context) {
	var req dto.ReservationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.svc.Reservations.Release(c.Request.Context(), req.ToReleaseRequest(actor(c))); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}

// Allocate godoc
// @ID           allocateInventory
// @Summary      Reserve a quantity across locations in priority order
// @Description  A partial allocation is not an error; check complete and shortfall
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        request body dto.AllocateRequest true "Allocation"
// @Success      200 {object} dto.Response{data=dto.AllocationResponse}
// @Failure      400 {object} dto.Response
// @Router       /inventory/allocations [post]
func (h *InventoryHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.svc.Allocator.Allocate(c.Request.Context(), req.ToAllocateRequest(actor(c)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToAllocationResponse(result))
}

// ListAlerts godoc
// @ID           listStockAlerts
// @Summary      Active stock alerts, optionally for one location
// @Tags         alerts
// @Produce      json
// @Param        location_id query string false "Location ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]dto.StockAlertResponse}
// @Failure      400 {object} dto.Response
// @Router       /inventory/alerts [get]
func (h *InventoryHandler) ListAlerts(c *gin.Context) {
	var locationID *uuid.UUID
	if raw := c.Query("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid location_id format")
			return
		}
		locationID = &id
	}
	alerts, err := h.svc.Alerts.ActiveAlerts(c.Request.Context(), locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToStockAlertResponses(alerts))
}

// forecastQuery are the query parameters of the forecast endpoint
type forecastQuery struct {
	ProductID  string `form:"product_id" binding:"required,uuid"`
	LocationID string `form:"location_id" binding:"required,uuid"`
	Period     string `form:"period"`
}

// Forecast godoc
// @ID           getInventoryForecast
// @Summary      Demand forecast and reorder advice for an item
// @Tags         forecast
// @Produce      json
// @Param        product_id query string true "Product ID" format(uuid)
// @Param        location_id query string true "Location ID" format(uuid)
// @Param        period query string false "Horizon" Enums(week, month, quarter) default(month)
// @Success      200 {object} dto.Response{data=dto.ForecastResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /inventory/forecast [get]
func (h *InventoryHandler) Forecast(c *gin.Context) {
	var q forecastQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "product_id and location_id must be valid UUIDs")
		return
	}
	period := inventory.ForecastPeriod(q.Period)
	if period == "" {
		period = inventory.ForecastPeriodMonth
	}

	forecast, err := h.svc.Forecasts.Forecast(c.Request.Context(),
		uuid.MustParse(q.ProductID), uuid.MustParse(q.LocationID), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToForecastResponse(forecast))
}

// ReorderSuggestions godoc
// @ID           listReorderSuggestions
// @Summary      Draft purchase orders for items at or below their reorder point
// @Tags         forecast
// @Produce      json
// @Success      200 {object} dto.Response{data=[]dto.PurchaseOrderResponse}
// @Router       /inventory/reorder-suggestions [get]
func (h *InventoryHandler) ReorderSuggestions(c *gin.Context) {
	orders, err := h.svc.Forecasts.GenerateReorderSuggestions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToPurchaseOrderResponses(orders))
}
