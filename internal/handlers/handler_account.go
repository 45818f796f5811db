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

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PATCH("/:accountID", h.updateAccountName)
	}
}

// accountIDParam parses the :accountID path segment, answering 400 when it is not a UUID.
func accountIDParam(c *gin.Context, logger *slog.Logger) (uuid.UUID, bool) {
	raw := c.Param("accountID")
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid account ID in path", slog.String("account_id", raw))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return uuid.Nil, false
	}
	return id, true
}

// createAccount creates an account with a unique name.
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to create account", slog.String("account_name", req.Name))

	account, err := h.accountService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := accountIDParam(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccountName renames an account.
func (h *accountHandler) updateAccountName(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := accountIDParam(c, logger)
	if !ok {
		return
	}

	var req dto.UpdateAccountNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccountName", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.UpdateAccountName(c.Request.Context(), accountID, req.Name)
	if err != nil {
		respondError(c, logger, err, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
