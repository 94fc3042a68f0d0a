package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/sentinel/service"
)

// CookieConfig controls the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService service.Authenticator
	cookie      CookieConfig
	logger      *slog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService service.Authenticator, cookie CookieConfig, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

type signupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Requires2FA *bool  `json:"requires2FA" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyTwoFARequest struct {
	Email          string `json:"email" binding:"required"`
	LoginAttemptID string `json:"loginAttemptId" binding:"required"`
	Code           string `json:"2FACode" binding:"required"`
}

type verifyTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Signup handles user registration
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleMalformedBody(c, err, h.logger)
		return
	}

	err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		Requires2FA: *req.Requires2FA,
	})
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!"})
}

// Login handles the first factor
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleMalformedBody(c, err, h.logger)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	if result.TwoFactorRequired {
		c.JSON(http.StatusPartialContent, gin.H{
			"message":        "2FA required",
			"loginAttemptId": result.LoginAttemptID.String(),
		})
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// VerifyTwoFA handles the second factor
func (h *AuthHandlers) VerifyTwoFA(c *gin.Context) {
	var req verifyTwoFARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleMalformedBody(c, err, h.logger)
		return
	}

	result, err := h.authService.VerifyTwoFA(c.Request.Context(), service.VerifyTwoFAInput{
		Email:          req.Email,
		LoginAttemptID: req.LoginAttemptID,
		Code:           req.Code,
	})
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// Logout revokes the session carried by the cookie and clears it
func (h *AuthHandlers) Logout(c *gin.Context) {
	// A missing cookie reaches the service as an empty token
	token, _ := c.Cookie(h.cookie.Name)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		handleError(c, err, h.logger)
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// VerifyToken validates a raw token for other services
func (h *AuthHandlers) VerifyToken(c *gin.Context) {
	var req verifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleMalformedBody(c, err, h.logger)
		return
	}

	if _, err := h.authService.Authenticate(c.Request.Context(), req.Token); err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.Status(http.StatusOK)
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unexpected error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":     session.Subject.String(),
		"expiresAt": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Health reports liveness
func (h *AuthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.authService.TokenTTL() / time.Second),
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
