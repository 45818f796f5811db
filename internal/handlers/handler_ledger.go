package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ledgerHandler exposes the posting and reversal workflows.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to journal entries.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.recordJournalEntry)
		entries.GET("/:entryID", h.getJournalEntry)
		entries.POST("/:entryID/reversals", h.reverseJournalEntry)
	}
}

func entryIDParam(c *gin.Context, logger *slog.Logger) (uuid.UUID, bool) {
	raw := c.Param("entryID")
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid journal entry ID in path", slog.String("entry_id", raw))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid journal entry ID"})
		return uuid.Nil, false
	}
	return id, true
}

// recordJournalEntry posts a journal entry and applies it to the accounts.
func (h *ledgerHandler) recordJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.ledgerService.RecordJournalEntry(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to record journal entry")
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

func (h *ledgerHandler) getJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID, ok := entryIDParam(c, logger)
	if !ok {
		return
	}

	entry, err := h.ledgerService.GetJournalEntry(c.Request.Context(), entryID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseJournalEntry posts the mirror of an existing entry.
func (h *ledgerHandler) reverseJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID, ok := entryIDParam(c, logger)
	if !ok {
		return
	}

	var req dto.ReverseJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	reversal, err := h.ledgerService.ReverseJournalEntry(c.Request.Context(), entryID, req.ReversalDate.Time)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse journal entry")
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}
