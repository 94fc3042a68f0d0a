package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/layer-3/sentinel/service"
)

// RouterConfig holds what the router needs besides the auth service
type RouterConfig struct {
	Cookie CookieConfig
	Logger *slog.Logger
	// RateLimiter guards the credential endpoints when set
	RateLimiter *IPRateLimiter
	// MetricsHandler is mounted at /metrics when set
	MetricsHandler http.Handler
}

// SetupRouter sets up the Gin router
func SetupRouter(authService service.Authenticator, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestid.New(), RequestContext(), RequestLogger(cfg.Logger))

	handlers := NewAuthHandlers(authService, cfg.Cookie, cfg.Logger)

	router.GET("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	credentials := router.Group("/")
	if cfg.RateLimiter != nil {
		credentials.Use(cfg.RateLimiter.Middleware())
	}
	{
		credentials.POST("/signup", handlers.Signup)
		credentials.POST("/login", handlers.Login)
		credentials.POST("/verify-2fa", handlers.VerifyTwoFA)
	}

	router.POST("/logout", handlers.Logout)
	router.POST("/verify-token", handlers.VerifyToken)

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService, cfg.Cookie.Name, cfg.Logger))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
