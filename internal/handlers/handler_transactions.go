package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/banking_ledger/internal/dto"
	"github.com/SscSPs/banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// listTransactions godoc
// @Summary List transactions for an account
// @Description Retrieves one page of an account's history, newest first, optionally filtered by type and category
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   page query int false "Page number, starting at 1" default(1)
// @Param   limit query int false "Page size, capped by the server" default(20)
// @Param   type query string false "Only debits or only credits" Enums(debit, credit)
// @Param   category query string false "Exact category match"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Failure 503 {object} map[string]string "Ledger temporarily unavailable"
// @Security BearerAuth
// @Router /accounts/{id}/transactions [get]
func (h *accountHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}
	accountID := c.Param("id")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("account_id", accountID))
	page, err := h.transactionService.ListTransactionsForUser(c.Request.Context(), userID, accountID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(page))
}
