package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/dto"
	"github.com/SscSPs/banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts and their ledger.
type accountHandler struct {
	accountService     portssvc.AccountSvcFacade
	transferService    portssvc.TransferSvcFacade
	transactionService portssvc.TransactionSvcFacade
	analyticsService   portssvc.AnalyticsSvc
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(services *portssvc.ServiceContainer) *accountHandler {
	return &accountHandler{
		accountService:     services.Account,
		transferService:    services.Transfer,
		transactionService: services.Transaction,
		analyticsService:   services.Analytics,
	}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newAccountHandler(services)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/analytics", h.getAnalytics)
		accounts.GET("/:id/transactions", h.listTransactions)
		accounts.POST("/:id/transfer", h.transfer)
	}
}

// callerID returns the authenticated user or writes a 401.
func callerID(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

// listAccounts godoc
// @Summary List accounts for the logged-in user
// @Description Lists the caller's active accounts, each with its five most recent transactions
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Failure 503 {object} map[string]string "Ledger temporarily unavailable"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	accounts, err := h.accountService.GetAccountsWithRecentTransactions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}

	logger.Debug("Accounts listed", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// getAnalytics godoc
// @Summary Get ledger analytics for the logged-in user
// @Description Monthly debit/credit totals for the last six months, category totals for the current month, and the total balance of active accounts. Empty buckets are omitted.
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute analytics"
// @Failure 503 {object} map[string]string "Ledger temporarily unavailable"
// @Security BearerAuth
// @Router /accounts/analytics [get]
func (h *accountHandler) getAnalytics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.GetAnalytics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to compute analytics")
		return
	}

	c.JSON(http.StatusOK, dto.ToAnalyticsResponse(analytics))
}
