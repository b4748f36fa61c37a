package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/banking_ledger/internal/dto"
	"github.com/SscSPs/banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transfer godoc
// @Summary Transfer money to another account
// @Description Moves an amount from the path account, which must belong to the caller, to the account with the given number. Not idempotent: a repeated request transfers again.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Source account ID"
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid amount, self-transfer or currency mismatch"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Insufficient funds or inactive account"
// @Failure 500 {object} map[string]string "Failed to transfer"
// @Failure 503 {object} map[string]string "Ledger temporarily unavailable, retry is safe"
// @Security BearerAuth
// @Router /accounts/{id}/transfer [post]
func (h *accountHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}
	sourceAccountID := c.Param("id")

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("source_account_id", sourceAccountID))
	logger.Info("Received transfer request", slog.String("to_account_number", req.ToAccountNumber))

	result, err := h.transferService.Transfer(c.Request.Context(), userID, sourceAccountID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to transfer")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(result))
}
