package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxTransactionManager opens ledger units as READ COMMITTED transactions with
// a bounded lock wait.
type PgxTransactionManager struct {
	BaseRepository
	lockTimeout time.Duration
}

func newPgxTransactionManager(pool *pgxpool.Pool, lockTimeout time.Duration) *PgxTransactionManager {
	return &PgxTransactionManager{BaseRepository: BaseRepository{Pool: pool}, lockTimeout: lockTimeout}
}

var _ portsrepo.TransactionManager = (*PgxTransactionManager)(nil)

// Begin starts a new database transaction
func (m *PgxTransactionManager) Begin(ctx context.Context) (portsrepo.LedgerUnit, error) {
	tx, err := m.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, classifyError(err, "begin ledger unit")
	}
	// set_config(..., true) is SET LOCAL: it ends with the transaction.
	if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, lockTimeoutSetting(m.lockTimeout)); err != nil {
		rollbackQuietly(ctx, tx)
		return nil, classifyError(err, "set lock timeout")
	}
	return &pgxLedgerUnit{tx: tx}, nil
}

type pgxLedgerUnit struct {
	tx     pgx.Tx
	locked map[string]bool
}

var _ portsrepo.LedgerUnit = (*pgxLedgerUnit)(nil)

func (u *pgxLedgerUnit) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return findAccount(ctx, u.tx, "account_id", accountID)
}

func (u *pgxLedgerUnit) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return findAccount(ctx, u.tx, "account_number", accountNumber)
}

// FindAccountsByIDsForUpdate locks rows in account_id order so two units never
// wait on each other in a cycle.
func (u *pgxLedgerUnit) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := u.tx.Query(ctx, query, ids)
	if err != nil {
		return nil, classifyError(err, "lock accounts")
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account, len(ids))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, classifyError(err, "scan locked account")
		}
		accountsMap[acc.AccountID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(err, "lock accounts")
	}

	if u.locked == nil {
		u.locked = make(map[string]bool, len(ids))
	}
	for _, id := range ids {
		if _, ok := accountsMap[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		u.locked[id] = true
	}
	return accountsMap, nil
}

// UpdateAccountBalancesInTx updates the balance for multiple accounts in one round trip.
func (u *pgxLedgerUnit) UpdateAccountBalancesInTx(ctx context.Context, balanceChanges map[string]decimal.Decimal, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}
	ids := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		if !u.locked[id] {
			return fmt.Errorf("%w: account %s updated without a row lock", apperrors.ErrStorage, id)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(`UPDATE accounts SET balance = balance + $1, last_updated_at = $2 WHERE account_id = $3`, balanceChanges[id], now, id)
	}
	br := u.tx.SendBatch(ctx, batch)
	defer br.Close()

	for _, id := range ids {
		ct, err := br.Exec()
		if err != nil {
			return classifyError(err, "update balance of account "+id)
		}
		if ct.RowsAffected() != 1 {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return nil
}

// InsertTransactions appends the given legs in one batch.
func (u *pgxLedgerUnit) InsertTransactions(ctx context.Context, transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	query := `INSERT INTO transactions (` + transactionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	batch := &pgx.Batch{}
	for _, txn := range transactions {
		m := mapping.ToModelTransaction(txn)
		batch.Queue(query,
			m.TransactionID,
			m.AccountID,
			m.TransactionType,
			m.Amount,
			m.BalanceAfter,
			m.CounterpartyAccountID,
			m.Category,
			m.Description,
			m.Reference,
			m.CreatedAt,
		)
	}
	br := u.tx.SendBatch(ctx, batch)
	defer br.Close()

	for _, txn := range transactions {
		if _, err := br.Exec(); err != nil {
			return classifyError(err, "insert transaction "+txn.TransactionID)
		}
	}
	return nil
}

func (u *pgxLedgerUnit) Commit(ctx context.Context) error {
	return classifyError(u.tx.Commit(ctx), "commit ledger unit")
}

func (u *pgxLedgerUnit) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return classifyError(err, "rollback ledger unit")
	}
	return nil
}
