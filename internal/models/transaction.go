package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction mirrors a row of the append-only transactions table.
type Transaction struct {
	TransactionID         string          `db:"transaction_id"`
	AccountID             string          `db:"account_id"`
	TransactionType       string          `db:"transaction_type"` // debit | credit
	Amount                decimal.Decimal `db:"amount"`
	BalanceAfter          decimal.Decimal `db:"balance_after"`
	CounterpartyAccountID string          `db:"counterparty_account_id"`
	Category              sql.NullString  `db:"category"`
	Description           string          `db:"description"`
	Reference             sql.NullString  `db:"reference"`
	CreatedAt             time.Time       `db:"created_at"`
}
