package event

import (
	"context"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// AlertLogHandler writes raised and resolved stock alerts to the log so
// operators see them without a dashboard.
type AlertLogHandler struct {
	logger *zap.Logger
}

// NewAlertLogHandler creates the handler
func NewAlertLogHandler(logger *zap.Logger) *AlertLogHandler {
	return &AlertLogHandler{logger: logger.Named("stock_alerts")}
}

// EventTypes implements shared.EventHandler
func (h *AlertLogHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockAlertRaised,
		inventory.EventTypeStockAlertResolved,
		inventory.EventTypeReorderSuggested,
	}
}

// Handle implements shared.EventHandler
func (h *AlertLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockAlertRaisedEvent:
		h.logger.Warn("stock alert raised",
			zap.String("alert_type", string(e.AlertType)),
			zap.String("severity", string(e.Severity)),
			zap.String("product_id", e.ProductID.String()),
			zap.String("location_id", e.LocationID.String()),
			zap.String("message", e.Message),
		)
	case *inventory.StockAlertResolvedEvent:
		h.logger.Info("stock alert resolved",
			zap.String("alert_type", string(e.AlertType)),
			zap.String("product_id", e.ProductID.String()),
			zap.String("location_id", e.LocationID.String()),
		)
	case *inventory.ReorderSuggestedEvent:
		h.logger.Info("reorder suggested",
			zap.String("number", e.Number),
			zap.String("location_id", e.LocationID.String()),
			zap.Int("lines", e.LineCount),
			zap.String("total", e.TotalAmount),
		)
	}
	return nil
}

var _ shared.EventHandler = (*AlertLogHandler)(nil)
