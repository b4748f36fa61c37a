package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates which leg of a transfer a record is.
type TransactionType string

const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

// IsValid reports whether t is debit or credit.
func (t TransactionType) IsValid() bool {
	return t == Debit || t == Credit
}

// Transaction is one immutable leg of a transfer.
type Transaction struct {
	TransactionID         string          `json:"transactionID"` // UUIDv7, sortable by creation
	AccountID             string          `json:"accountID"`
	Type                  TransactionType `json:"type"`
	Amount                decimal.Decimal `json:"amount"`       // Always positive
	BalanceAfter          decimal.Decimal `json:"balanceAfter"` // Owning account's balance once applied
	CounterpartyAccountID string          `json:"counterpartyAccountID"`
	Category              *string         `json:"category,omitempty"`
	Description           string          `json:"description"`
	Reference             *string         `json:"reference,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// TransactionFilter restricts a history query. Nil fields do not restrict.
type TransactionFilter struct {
	Type     *TransactionType
	Category *string
}

// Matches reports whether t passes the filter.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.Category != nil {
		if t.Category == nil || *t.Category != *f.Category {
			return false
		}
	}
	return true
}

// NewerThan orders transactions by CreatedAt descending, ties broken by ID descending.
func (t Transaction) NewerThan(o Transaction) bool {
	if !t.CreatedAt.Equal(o.CreatedAt) {
		return t.CreatedAt.After(o.CreatedAt)
	}
	return t.TransactionID > o.TransactionID
}

// TransactionPage is one page of an account's history.
type TransactionPage struct {
	Items    []Transaction `json:"items"`
	Total    int           `json:"total"`
	Pages    int           `json:"pages"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// TransferResult is returned by a successful transfer.
type TransferResult struct {
	NewBalance          decimal.Decimal `json:"newBalance"`
	Reference           string          `json:"reference"`
	DebitTransactionID  string          `json:"debitTransactionID"`
	CreditTransactionID string          `json:"creditTransactionID"`
}
