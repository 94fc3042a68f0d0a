package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/service"
)

const sessionContextKey = "session"

// AuthMiddleware validates the session cookie and stores the session in the context
func AuthMiddleware(authService service.Authenticator, cookieName string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)

		session, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			handleError(c, err, logger)
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func sessionFromContext(c *gin.Context) (*core.Session, bool) {
	v, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}

	session, ok := v.(*core.Session)
	return session, ok
}

// RequestContext copies the request id into the request context for the layers below gin
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := requestid.Get(c); id != "" {
			c.Request = c.Request.WithContext(core.WithRequestID(c.Request.Context(), id))
		}
		c.Next()
	}
}

// RequestLogger logs one line per request with its request id
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.InfoContext(c.Request.Context(), "http request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
