package dto

import (
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/utils"
	"github.com/shopspring/decimal"
)

// TransferRequest moves money from the path account to ToAccountNumber.
// Amount accepts a JSON number or string; the engine validates it.
type TransferRequest struct {
	ToAccountNumber string          `json:"toAccountNumber" binding:"required" example:"1000000002"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"30.00"`
	Description     *string         `json:"description"`
	Category        *string         `json:"category"`
}

// TransferResponse is returned after a committed transfer.
type TransferResponse struct {
	NewBalance          string `json:"newBalance" example:"70.00"`
	Reference           string `json:"reference"`
	DebitTransactionID  string `json:"debitTransactionID"`
	CreditTransactionID string `json:"creditTransactionID"`
}

// ToTransferResponse converts a domain.TransferResult.
func ToTransferResponse(r *domain.TransferResult) TransferResponse {
	return TransferResponse{
		NewBalance:          utils.FormatMoney(r.NewBalance),
		Reference:           r.Reference,
		DebitTransactionID:  r.DebitTransactionID,
		CreditTransactionID: r.CreditTransactionID,
	}
}
