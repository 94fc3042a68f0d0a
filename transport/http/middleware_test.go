package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/layer-3/sentinel/core"
)

func TestRequestContext(t *testing.T) {
	router := gin.New()
	router.Use(requestid.New(), RequestContext())
	router.GET("/echo", func(c *gin.Context) {
		id, _ := core.RequestIDFromContext(c.Request.Context())
		c.String(http.StatusOK, id)
	})

	t.Run("Success_PropagatesIncomingID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Body.String())
	})

	t.Run("Success_GeneratedID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo", nil))

		assert.NotEmpty(t, rec.Body.String())
		assert.Equal(t, rec.Header().Get("X-Request-ID"), rec.Body.String())
	})
}
