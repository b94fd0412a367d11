// Package middleware provides HTTP middleware for the inventory API.
package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/inventory/internal/infrastructure/logger"
)

// Header names read and written by the middleware
const (
	HeaderRequestID = "X-Request-ID"
	HeaderActor     = "X-Actor"
)

// MaxRequestIDLength bounds client supplied request ids
const MaxRequestIDLength = 128

// MaxActorLength bounds the actor header
const MaxActorLength = 100

// RequestID assigns a request id, keeping a well-formed client supplied one,
// and places a request scoped logger on the request context.
func RequestID(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = generateRequestID()
		}

		ctx, _ := logger.WithRequestID(c.Request.Context(), base, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// Actor records who performs the request. Movements store it for audit.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(HeaderActor)
		if len(actor) > MaxActorLength {
			actor = actor[:MaxActorLength]
		}
		if actor != "" {
			c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}

func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}
