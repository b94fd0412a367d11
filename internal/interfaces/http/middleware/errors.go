package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/inventory/internal/infrastructure/logger"
	"github.com/storefront/inventory/internal/interfaces/http/dto"
)

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(code, message, logger.RequestID(c.Request.Context())))
}
