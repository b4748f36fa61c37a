package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/models"
	"github.com/SscSPs/banking_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, account_id, transaction_type, amount, balance_after, counterparty_account_id, category, description, reference, created_at`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for the transaction log.
func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.TransactionType,
		&m.Amount,
		&m.BalanceAfter,
		&m.CounterpartyAccountID,
		&m.Category,
		&m.Description,
		&m.Reference,
		&m.CreatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return mapping.ToDomainTransaction(m), nil
}

// historyWhere builds the WHERE clause shared by the page and count queries.
func historyWhere(accountID string, filter domain.TransactionFilter) (string, []any) {
	conds := []string{"account_id = $1"}
	args := []any{accountID}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conds = append(conds, fmt.Sprintf("transaction_type = $%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

// ListTransactionsByAccountID returns one page and the filtered total from the same snapshot.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, filter domain.TransactionFilter, limit int, offset int) ([]domain.Transaction, int, error) {
	where, args := historyWhere(accountID, filter)
	transactions := []domain.Transaction{}
	var total int

	err := r.readOnly(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&total); err != nil {
			return classifyError(err, "count transactions for account "+accountID)
		}
		if total == 0 || offset < 0 || offset >= total {
			return nil
		}

		pageArgs := append(append([]any{}, args...), limit, offset)
		query := fmt.Sprintf(`
			SELECT %s
			FROM transactions
			WHERE %s
			ORDER BY created_at DESC, transaction_id DESC
			LIMIT $%d OFFSET $%d;
		`, transactionColumns, where, len(args)+1, len(args)+2)

		rows, err := tx.Query(ctx, query, pageArgs...)
		if err != nil {
			return classifyError(err, "list transactions for account "+accountID)
		}
		defer rows.Close()

		for rows.Next() {
			txn, err := scanTransaction(rows)
			if err != nil {
				return classifyError(err, "scan transaction row")
			}
			transactions = append(transactions, txn)
		}
		return classifyError(rows.Err(), "iterate transaction rows")
	})
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// StreamTransactions feeds matching rows to fn without materialising them.
func (r *PgxTransactionRepository) StreamTransactions(ctx context.Context, accountIDs []string, from time.Time, to time.Time, fn func(domain.Transaction) error) error {
	if len(accountIDs) == 0 {
		return nil
	}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = ANY($1) AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at, transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountIDs, from, to)
	if err != nil {
		return classifyError(err, "stream transactions")
	}
	defer rows.Close()

	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return classifyError(err, "scan streamed transaction")
		}
		if err := fn(txn); err != nil {
			return err
		}
	}
	return classifyError(rows.Err(), "iterate streamed transactions")
}
