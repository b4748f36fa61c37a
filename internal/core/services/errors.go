package services

import (
	"fmt"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
)

// Ledger errors. Each wraps an apperrors category, so callers can match
// either the specific error or its category.
var (
	ErrAccountNotFound   = fmt.Errorf("%w: account not found", apperrors.ErrNotFound)
	ErrForbidden         = fmt.Errorf("%w: account does not belong to caller", apperrors.ErrForbidden)
	ErrAccountInactive   = fmt.Errorf("%w: account is inactive", apperrors.ErrBusinessRule)
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", apperrors.ErrBusinessRule)
	ErrInvalidTransfer   = fmt.Errorf("%w: source and destination are the same account", apperrors.ErrValidation)
	ErrCurrencyMismatch  = fmt.Errorf("%w: account currencies differ", apperrors.ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: invalid amount", apperrors.ErrValidation)
	ErrInvalidQuery      = fmt.Errorf("%w: invalid query", apperrors.ErrValidation)
)
