package dto

import "net/http"

// Error codes returned in ErrorInfo.Code. Format: ERR_<DESCRIPTION>

// General error codes
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeNotFound   = "ERR_NOT_FOUND"
	ErrCodeConflict   = "ERR_CONFLICT"
)

// Inventory error codes
const (
	ErrCodeInsufficientStock     = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInvalidRelease        = "ERR_INVALID_RELEASE"
	ErrCodeLocationNotFound      = "ERR_LOCATION_NOT_FOUND"
	ErrCodeLocationExists        = "ERR_LOCATION_EXISTS"
	ErrCodeProductNotTracked     = "ERR_PRODUCT_NOT_TRACKED"
	ErrCodeInvalidForecastPeriod = "ERR_INVALID_FORECAST_PERIOD"
	ErrCodeConcurrencyConflict   = "ERR_CONCURRENCY_CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeConflict:   http.StatusConflict,

	ErrCodeLocationNotFound:      http.StatusNotFound,
	ErrCodeProductNotTracked:     http.StatusNotFound,
	ErrCodeLocationExists:        http.StatusConflict,
	ErrCodeConcurrencyConflict:   http.StatusConflict,
	ErrCodeInvalidForecastPeriod: http.StatusBadRequest,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeInvalidRelease:    http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeConflict,
	"INVALID_INPUT":           ErrCodeValidation,
	"INVALID_STATE":           ErrCodeConflict,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"INSUFFICIENT_STOCK":      ErrCodeInsufficientStock,
	"INVALID_RELEASE":         ErrCodeInvalidRelease,
	"LOCATION_NOT_FOUND":      ErrCodeLocationNotFound,
	"LOCATION_CODE_EXISTS":    ErrCodeLocationExists,
	"PRODUCT_NOT_TRACKED":     ErrCodeProductNotTracked,
	"INVALID_FORECAST_PERIOD": ErrCodeInvalidForecastPeriod,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Unknown codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
