package services

import (
	"context"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
)

// AnalyticsSvc defines the interface for the owner analytics summary
type AnalyticsSvc interface {
	// GetAnalytics returns the caller's monthly series, current-month category
	// breakdown and total active balance, all evaluated at call time.
	GetAnalytics(ctx context.Context, userID string) (*domain.Analytics, error)
}
