package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(0.5, 1, discardLogger())
	router := gin.New()
	router.Use(l.Middleware())
	router.GET("/limited", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, call().Code)

	// Rejections do not push the next allowed request further out
	for i := 0; i < 3; i++ {
		rec := call()
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	}
}

func TestIPRateLimiter_EvictIdle(t *testing.T) {
	l := NewIPRateLimiter(1, 1, discardLogger())

	l.limiterFor("10.0.0.1")
	l.limiterFor("10.0.0.2")
	l.limiters["10.0.0.1"].lastAccess = time.Now().Add(-2 * limiterIdleTimeout)

	l.evictIdle(time.Now().Add(-limiterIdleTimeout))

	assert.NotContains(t, l.limiters, "10.0.0.1")
	assert.Contains(t, l.limiters, "10.0.0.2")
}

func TestIPRateLimiter_RunStopsWithContext(t *testing.T) {
	l := NewIPRateLimiter(1, 1, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("rate limiter cleanup did not stop")
	}
}
