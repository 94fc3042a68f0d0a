package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/sentinel/core"
)

// handleError maps domain errors to status codes. Unexpected errors are logged
// with their full chain and reported without detail.
func handleError(c *gin.Context, err error, logger *slog.Logger) {
	statusCode := http.StatusInternalServerError
	errorMsg := "Unexpected error"

	switch {
	case errors.Is(err, core.ErrUnexpected):
	case errors.Is(err, core.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errorMsg = "Invalid credentials"
	case errors.Is(err, core.ErrIncorrectCredentials):
		statusCode = http.StatusUnauthorized
		errorMsg = "Incorrect credentials"
	case errors.Is(err, core.ErrUserAlreadyExists):
		statusCode = http.StatusConflict
		errorMsg = "User already exists"
	case errors.Is(err, core.ErrMissingToken):
		statusCode = http.StatusBadRequest
		errorMsg = "Missing auth token"
	case errors.Is(err, core.ErrInvalidToken):
		statusCode = http.StatusUnauthorized
		errorMsg = "Invalid auth token"
	}

	if statusCode == http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	} else {
		logger.DebugContext(c.Request.Context(), "request rejected",
			slog.String("path", c.FullPath()),
			slog.Int("status_code", statusCode),
			slog.Any("error", err),
		)
	}

	c.AbortWithStatusJSON(statusCode, gin.H{"error": errorMsg})
}

// handleMalformedBody answers requests whose body could not be decoded
func handleMalformedBody(c *gin.Context, err error, logger *slog.Logger) {
	logger.DebugContext(c.Request.Context(), "malformed request body", slog.Any("error", err))
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Malformed request body"})
}
