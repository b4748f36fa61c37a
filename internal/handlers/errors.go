package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// retryAfterSeconds is advertised on 503 responses for transient ledger failures.
const retryAfterSeconds = "1"

// accountNotFoundMessage is shared by missing and foreign accounts.
const accountNotFoundMessage = "Account not found"

// respondError maps a service error onto a status code and a safe message.
// Missing and foreign accounts produce the same 404.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Account not accessible", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": accountNotFoundMessage})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrBusinessRule):
		logger.Warn("Request refused by ledger rules", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case apperrors.IsRetryable(err):
		logger.Error("Transient ledger failure", slog.String("error", err.Error()))
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ledger temporarily unavailable, please retry"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
