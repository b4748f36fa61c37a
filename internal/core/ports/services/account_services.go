package services

import (
	"context"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
)

// RecentTransactionsPerAccount is how many history rows are attached to each account in an overview.
const RecentTransactionsPerAccount = 5

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountsWithRecentTransactions lists the caller's active accounts, each
	// with up to RecentTransactionsPerAccount of its newest transactions.
	GetAccountsWithRecentTransactions(ctx context.Context, userID string) ([]domain.AccountWithTransactions, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
}
