package services

import (
	"context"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/dto"
)

// TransferSvc executes money transfers between accounts.
type TransferSvc interface {
	// Transfer moves req.Amount from sourceAccountID, which must belong to
	// callerUserID, to the account numbered req.ToAccountNumber. It is not
	// idempotent: repeating a call repeats the transfer.
	Transfer(ctx context.Context, callerUserID string, sourceAccountID string, req dto.TransferRequest) (*domain.TransferResult, error)
}

// TransferSvcFacade combines all transfer-related service interfaces
type TransferSvcFacade interface {
	TransferSvc
}
