package domain

import (
	"github.com/shopspring/decimal"
)

// AccountKind is the product type of a customer account.
type AccountKind string

const (
	Checking   AccountKind = "checking"
	Savings    AccountKind = "savings"
	Investment AccountKind = "investment"
)

// IsValid reports whether k is a known account kind.
func (k AccountKind) IsValid() bool {
	switch k {
	case Checking, Savings, Investment:
		return true
	}
	return false
}

// Account represents a customer account within the core domain.
// Balance is only changed by the transfer engine.
type Account struct {
	AccountID     string          `json:"accountID"`     // Internal identity (UUID)
	AccountNumber string          `json:"accountNumber"` // External, unique, immutable
	UserID        string          `json:"userID"`        // Owner
	Kind          AccountKind     `json:"kind"`
	CurrencyCode  string          `json:"currencyCode"` // Fixed at creation
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// OwnedBy reports whether the account belongs to userID.
func (a Account) OwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}

// AccountWithTransactions pairs an account with its most recent history.
type AccountWithTransactions struct {
	Account
	RecentTransactions []Transaction `json:"recentTransactions"`
}
