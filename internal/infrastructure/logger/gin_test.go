package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"success logs info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs warn", http.StatusConflict, zapcore.WarnLevel},
		{"server error logs error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			r := gin.New()
			r.Use(func(c *gin.Context) {
				ctx, _ := WithRequestID(c.Request.Context(), zap.NewNop(), "req-9")
				c.Request = c.Request.WithContext(WithActor(ctx, "picker"))
				c.Next()
			})
			r.Use(GinMiddleware(zap.New(core)))
			r.GET("/items", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items?sku=A", nil))

			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.Equal(t, "req-9", fields["request_id"])
			assert.Equal(t, "picker", fields["actor"])
			assert.Equal(t, "sku=A", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
		})
	}
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "Panic recovered", recorded.All()[0].Message)
}
