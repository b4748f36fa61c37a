package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
)

// TransactionReader defines read operations over committed transaction history.
type TransactionReader interface {
	// ListTransactionsByAccountID returns one window of an account's history, newest
	// first with ties broken by id descending, along with the filtered total.
	ListTransactionsByAccountID(ctx context.Context, accountID string, filter domain.TransactionFilter, limit int, offset int) ([]domain.Transaction, int, error)

	// StreamTransactions calls fn for every transaction of the given accounts with
	// from <= createdAt <= to. Iteration stops at the first error fn returns.
	StreamTransactions(ctx context.Context, accountIDs []string, from time.Time, to time.Time, fn func(domain.Transaction) error) error
}

// TransactionRepositoryFacade is the read side of the transaction log. Writes
// only happen through a LedgerUnit.
type TransactionRepositoryFacade interface {
	TransactionReader
}
