package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerUnit is an open atomic unit of work. Reads and writes issued through it
// are invisible to other units until Commit; Rollback discards them.
// A unit must be resolved exactly once; Rollback after Commit is a no-op.
type LedgerUnit interface {
	// FindAccountByID reads an account without locking it.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber reads an account by its external number without locking it.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// FindAccountsByIDsForUpdate locks the given accounts in ascending id order and
	// returns their current state. Lock waits are bounded; a timeout is ErrTransient.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed deltas to accounts locked by this unit.
	UpdateAccountBalancesInTx(ctx context.Context, balanceChanges map[string]decimal.Decimal, now time.Time) error

	// InsertTransactions appends transaction records.
	InsertTransactions(ctx context.Context, transactions []domain.Transaction) error

	// Commit persists every change of the unit or none of them.
	Commit(ctx context.Context) error

	// Rollback discards the unit.
	Rollback(ctx context.Context) error
}

// TransactionManager opens atomic units against the ledger store.
type TransactionManager interface {
	// Begin starts a new unit.
	Begin(ctx context.Context) (LedgerUnit, error)
}
