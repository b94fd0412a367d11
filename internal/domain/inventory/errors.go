package inventory

import (
	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/shared"
)

// Error codes for the inventory error kinds. Callers match them with errors.Is
// against the sentinels below.
const (
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeInvalidRelease     = "INVALID_RELEASE"
	CodeLocationNotFound   = "LOCATION_NOT_FOUND"
	CodeProductNotTracked  = "PRODUCT_NOT_TRACKED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeForecastInvalid    = "INVALID_FORECAST_PERIOD"
	CodeLocationDuplicated = "LOCATION_CODE_EXISTS"
)

var (
	ErrInsufficientStock = shared.NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInvalidRelease    = shared.NewDomainError(CodeInvalidRelease, "Release exceeds reserved quantity")
	ErrLocationNotFound  = shared.NewDomainError(CodeLocationNotFound, "Location not found")
	ErrProductNotTracked = shared.NewDomainError(CodeProductNotTracked, "Product is not tracked at location")
	ErrValidation        = shared.NewDomainError(CodeValidation, "Validation failed")
)

// NewInsufficientStockError reports a movement or reservation that needs more
// than the item can give.
func NewInsufficientStockError(key StockKey, requested, available int64) *shared.DomainError {
	return shared.NewDomainErrorf(CodeInsufficientStock,
		"insufficient stock for product %s at location %s: requested %d, available %d",
		key.ProductID, key.LocationID, requested, available)
}

// NewInvalidReleaseError reports a release larger than the reserved quantity.
func NewInvalidReleaseError(key StockKey, requested, reserved int64) *shared.DomainError {
	return shared.NewDomainErrorf(CodeInvalidRelease,
		"cannot release %d units of product %s at location %s: only %d reserved",
		requested, key.ProductID, key.LocationID, reserved)
}

// NewLocationNotFoundError reports an unknown location id.
func NewLocationNotFoundError(id uuid.UUID) *shared.DomainError {
	return shared.NewDomainErrorf(CodeLocationNotFound, "location %s not found", id)
}

// NewProductNotTrackedError reports a key with no ledger entry.
func NewProductNotTrackedError(key StockKey) *shared.DomainError {
	return shared.NewDomainErrorf(CodeProductNotTracked,
		"product %s has no ledger entry at location %s", key.ProductID, key.LocationID)
}

// NewValidationError reports a malformed request.
func NewValidationError(format string, args ...any) *shared.DomainError {
	return shared.NewDomainErrorf(CodeValidation, format, args...)
}

// NewUnlocatedReleaseError reports a release without a location that no
// single location can cover.
func NewUnlocatedReleaseError(productID uuid.UUID, requested int64) *shared.DomainError {
	return shared.NewDomainErrorf(CodeInvalidRelease,
		"cannot release %d units of product %s: no location holds that many reserved", requested, productID)
}
