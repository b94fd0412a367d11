package router

import (
	"github.com/storefront/inventory/internal/interfaces/http/handler"
)

// LocationRoutes are the location registry endpoints
func LocationRoutes(h *handler.LocationHandler) *DomainGroup {
	return NewDomainGroup("locations", "/locations").
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.Get).
		PATCH("/:id", h.Update)
}

// InventoryRoutes are the ledger, reservation, allocation, alert and
// forecast endpoints
func InventoryRoutes(h *handler.InventoryHandler) *DomainGroup {
	g := NewDomainGroup("inventory", "/inventory")

	g.Group("items", "/items").
		GET("/:product_id/:location_id", h.GetItem).
		PUT("/:product_id/:location_id/thresholds", h.UpdateThresholds).
		GET("/:product_id/:location_id/movements", h.History).
		GET("/:product_id/:location_id/reconcile", h.Reconcile)

	g.Group("products", "/products").
		GET("/:product_id/items", h.ListByProduct).
		GET("/:product_id/available", h.TotalAvailable)

	g.Group("locations", "/locations").
		GET("/:location_id/items", h.ListByLocation)

	g.POST("/movements", h.RecordMovement).
		POST("/transfers", h.Transfer).
		POST("/reservations", h.Reserve).
		POST("/reservations/release", h.Release).
		POST("/allocations", h.Allocate).
		GET("/alerts", h.ListAlerts).
		GET("/forecast", h.Forecast).
		GET("/reorder-suggestions", h.ReorderSuggestions)

	return g
}
