package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/banking_ledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains routes that are never tracked.
var pathsToSkip = map[string]bool{
	"/health":       true,
	"/swagger/*any": true,
}

// eventName turns a route template into an event name:
// "/api/v1/accounts/:id/transfer" becomes "api_v1_accounts_id_transfer".
func eventName(fullPath string) string {
	name := strings.TrimPrefix(fullPath, "/")
	name = strings.ReplaceAll(name, ":", "")
	return strings.ReplaceAll(name, "/", "_")
}

// PosthogMiddleware records one usage event per successful authenticated request.
// Amounts and account numbers are never sent.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || pathsToSkip[c.FullPath()] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}
		name := eventName(c.FullPath())
		if name == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status_code": c.Writer.Status(),
			"request_id":  RequestIDFromCtx(c.Request.Context()),
		}
		if id := c.Param("id"); id != "" {
			props["account_id"] = id
		}
		posthogClient.Enqueue(userID, name, props)
	}
}
