package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnbalancedEntry), errors.Is(err, apperrors.ErrCurrencyMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the status for err. Server side failures get a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error, failure string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error(failure, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": failure})
		return
	}
	logger.Warn(failure, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}
