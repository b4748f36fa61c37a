package services

import (
	"context"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/dto"
)

// TransactionReaderSvc defines paginated history queries.
type TransactionReaderSvc interface {
	// ListTransactions returns one page of an account's history, newest first.
	ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*domain.TransactionPage, error)

	// ListTransactionsForUser is ListTransactions after checking that userID owns the account.
	ListTransactionsForUser(ctx context.Context, userID string, accountID string, params dto.ListTransactionsParams) (*domain.TransactionPage, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
}
