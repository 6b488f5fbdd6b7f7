package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/assetflow/assetflow_backend/utils"
	"github.com/gin-gonic/gin"
)

func TestCorrelationIdKeepsInboundHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationId())

	var seen string
	r.GET("/", func(c *gin.Context) {
		seen, _ = utils.GetCorrelationIdFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-correlation-id", "cid-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != "cid-123" {
		t.Errorf("context correlation id = %q, want the inbound header", seen)
	}
	if got := w.Header().Get("x-correlation-id"); got != "cid-123" {
		t.Errorf("response correlation id = %q, want the inbound header", got)
	}
}

func TestCorrelationIdMintsOneWhenAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationId())

	var seen string
	r.GET("/", func(c *gin.Context) {
		seen, _ = utils.GetCorrelationIdFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("expected a minted correlation id in the context")
	}
	if w.Header().Get("x-correlation-id") != seen {
		t.Errorf("response header %q does not match context id %q", w.Header().Get("x-correlation-id"), seen)
	}
}
