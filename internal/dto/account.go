package dto

import (
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/utils"
)

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID          string                `json:"accountID"`
	AccountNumber      string                `json:"accountNumber"`
	Kind               domain.AccountKind    `json:"kind"`
	CurrencyCode       string                `json:"currencyCode"`
	Balance            string                `json:"balance" example:"70.00"`
	IsActive           bool                  `json:"isActive"`
	CreatedAt          time.Time             `json:"createdAt"`
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
}

// ListAccountsResponse wraps the caller's accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:          acc.AccountID,
		AccountNumber:      acc.AccountNumber,
		Kind:               acc.Kind,
		CurrencyCode:       acc.CurrencyCode,
		Balance:            utils.FormatMoney(acc.Balance),
		IsActive:           acc.IsActive,
		CreatedAt:          acc.CreatedAt,
		RecentTransactions: []TransactionResponse{},
	}
}

// ToListAccountsResponse converts accounts with their recent history.
func ToListAccountsResponse(accounts []domain.AccountWithTransactions) ListAccountsResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i].Account)
		res[i].RecentTransactions = ToTransactionResponses(accounts[i].RecentTransactions)
	}
	return ListAccountsResponse{Accounts: res}
}
