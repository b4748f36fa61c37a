package dto

import (
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/utils"
)

// ListTransactionsParams defines query parameters for listing an account's history.
// Empty Type or Category means no restriction.
type ListTransactionsParams struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Type     string `form:"type"`
	Category string `form:"category"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID         string    `json:"transactionID"`
	AccountID             string    `json:"accountID"`
	Type                  string    `json:"type" example:"debit"`
	Amount                string    `json:"amount" example:"30.00"`
	BalanceAfter          string    `json:"balanceAfter" example:"70.00"`
	CounterpartyAccountID string    `json:"counterpartyAccountID"`
	Category              *string   `json:"category"`
	Description           string    `json:"description"`
	Reference             *string   `json:"reference"`
	CreatedAt             time.Time `json:"createdAt"`
}

// ListTransactionsResponse is one page of history.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
	Pages        int                   `json:"pages"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         txn.TransactionID,
		AccountID:             txn.AccountID,
		Type:                  string(txn.Type),
		Amount:                utils.FormatMoney(txn.Amount),
		BalanceAfter:          utils.FormatMoney(txn.BalanceAfter),
		CounterpartyAccountID: txn.CounterpartyAccountID,
		Category:              txn.Category,
		Description:           txn.Description,
		Reference:             txn.Reference,
		CreatedAt:             txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToListTransactionsResponse converts a domain.TransactionPage.
func ToListTransactionsResponse(page *domain.TransactionPage) ListTransactionsResponse {
	return ListTransactionsResponse{
		Transactions: ToTransactionResponses(page.Items),
		Total:        page.Total,
		Pages:        page.Pages,
		Page:         page.Page,
		Limit:        page.PageSize,
	}
}
