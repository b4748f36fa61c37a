package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionReader
}

// NewAccountService creates the account overview service.
func NewAccountService(accountRepo portsrepo.AccountReader, transactionRepo portsrepo.TransactionReader) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService:     newBaseService(),
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// GetAccountsWithRecentTransactions implements portssvc.AccountReaderSvc
func (s *accountService) GetAccountsWithRecentTransactions(ctx context.Context, userID string) ([]domain.AccountWithTransactions, error) {
	accounts, err := s.accountRepo.ListAccountsByUserID(ctx, userID, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list accounts for user %s: %w", userID, err)
	}

	result := make([]domain.AccountWithTransactions, 0, len(accounts))
	for _, acc := range accounts {
		recent, _, err := s.transactionRepo.ListTransactionsByAccountID(ctx, acc.AccountID, domain.TransactionFilter{}, portssvc.RecentTransactionsPerAccount, 0)
		if err != nil {
			s.LogError(ctx, err, "Failed to list recent transactions", slog.String("account_id", acc.AccountID))
			return nil, fmt.Errorf("failed to list recent transactions for account %s: %w", acc.AccountID, err)
		}
		if recent == nil {
			recent = []domain.Transaction{}
		}
		result = append(result, domain.AccountWithTransactions{Account: acc, RecentTransactions: recent})
	}
	return result, nil
}
