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

func newGinRouter(t *testing.T, level zapcore.Level) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(level)
	r := gin.New()
	r.Use(Recovery(zap.New(core)), GinMiddleware(zap.New(core), "/health"))
	return r, logs
}

func TestGinMiddleware_AccessLog(t *testing.T) {
	r, logs := newGinRouter(t, zapcore.InfoLevel)
	r.GET("/api/v1/contracts/:id", func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithTenantID(c.Request.Context(), "tenant-1"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/42?expand=charges", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/api/v1/contracts/:id", fields["route"])
	assert.Equal(t, int64(200), fields["status"])
	assert.Equal(t, "expand=charges", fields["query"])
	assert.Equal(t, "req-abc", fields["request_id"])
	assert.Equal(t, "tenant-1", fields["tenant_id"])
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	r, logs := newGinRouter(t, zapcore.InfoLevel)
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestGinMiddleware_SkipsPaths(t *testing.T) {
	r, logs := newGinRouter(t, zapcore.DebugLevel)
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, logs.FilterMessage("HTTP request").Len())
}

func TestGinMiddleware_RequestLoggerInContext(t *testing.T) {
	r, logs := newGinRouter(t, zapcore.InfoLevel)
	r.GET("/work", func(c *gin.Context) {
		FromGin(c).Info("Handling")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/work", nil)
	req.Header.Set(RequestIDHeader, "req-ctx")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("Handling").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-ctx", entries[0].ContextMap()["request_id"])
}

func TestRecovery(t *testing.T) {
	r, logs := newGinRouter(t, zapcore.InfoLevel)
	r.GET("/panic", func(c *gin.Context) { panic("ledger exploded") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
	require.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}
