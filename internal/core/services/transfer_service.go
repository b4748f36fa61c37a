package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/dto"
	"github.com/SscSPs/banking_ledger/internal/utils"
	"github.com/SscSPs/banking_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultUnitTimeout bounds a whole transfer unit, from Begin to Commit.
const DefaultUnitTimeout = 15 * time.Second

// transferService executes transfers as one ledger unit each.
type transferService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	unitTimeout time.Duration
}

// TransferServiceOption is a functional option for configuring the transfer service
type TransferServiceOption func(*transferService)

// WithTransferClock replaces the clock used to stamp transaction legs.
func WithTransferClock(now func() time.Time) TransferServiceOption {
	return func(s *transferService) {
		s.now = now
	}
}

// WithUnitTimeout sets how long a unit may run once started.
func WithUnitTimeout(d time.Duration) TransferServiceOption {
	return func(s *transferService) {
		if d > 0 {
			s.unitTimeout = d
		}
	}
}

// NewTransferService creates the transfer engine.
func NewTransferService(txManager portsrepo.TransactionManager, options ...TransferServiceOption) portssvc.TransferSvcFacade {
	svc := &transferService{
		BaseService: newBaseService(),
		txManager:   txManager,
		unitTimeout: DefaultUnitTimeout,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// Transfer implements portssvc.TransferSvc.
//
// Once the unit is open it runs on a context detached from the caller, so a
// client hanging up cannot interrupt it between writes. The unit timeout
// still bounds it, and any failure rolls it back.
func (s *transferService) Transfer(ctx context.Context, callerUserID string, sourceAccountID string, req dto.TransferRequest) (*domain.TransferResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: transfer not started: %w", apperrors.ErrTransient, err)
	}

	unitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.unitTimeout)
	defer cancel()

	unit, err := s.txManager.Begin(unitCtx)
	if err != nil {
		s.LogError(ctx, err, "Failed to open ledger unit",
			slog.String("source_account_id", sourceAccountID))
		return nil, err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := unit.Rollback(unitCtx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to roll back ledger unit",
				slog.String("source_account_id", sourceAccountID))
		}
	}()

	result, err := s.execute(unitCtx, unit, callerUserID, sourceAccountID, req)
	if err != nil {
		logArgs := []any{
			slog.String("source_account_id", sourceAccountID),
			slog.String("to_account_number", req.ToAccountNumber),
			slog.String("amount", req.Amount.String()),
		}
		if errors.Is(err, apperrors.ErrTransient) || errors.Is(err, apperrors.ErrStorage) {
			s.LogError(ctx, err, "Transfer failed", logArgs...)
		} else {
			s.LogWarn(ctx, err, "Transfer rejected", logArgs...)
		}
		return nil, err
	}

	if err := unit.Commit(unitCtx); err != nil {
		s.LogError(ctx, err, "Failed to commit transfer",
			slog.String("source_account_id", sourceAccountID),
			slog.String("reference", result.Reference))
		return nil, fmt.Errorf("%w: commit transfer: %w", apperrors.ErrTransient, err)
	}
	committed = true

	s.LogInfo(ctx, "Transfer committed",
		slog.String("source_account_id", sourceAccountID),
		slog.String("debit_transaction_id", result.DebitTransactionID),
		slog.String("credit_transaction_id", result.CreditTransactionID),
		slog.String("amount", req.Amount.String()),
		slog.String("reference", result.Reference))
	return result, nil
}

// execute validates and writes the transfer inside unit. Checks run in a
// fixed order and stop at the first failure.
func (s *transferService) execute(ctx context.Context, unit portsrepo.LedgerUnit, callerUserID, sourceAccountID string, req dto.TransferRequest) (*domain.TransferResult, error) {
	src, err := unit.FindAccountByID(ctx, sourceAccountID)
	if err != nil {
		return nil, accountLookupError(err, "source account "+sourceAccountID)
	}
	dst, err := unit.FindAccountByNumber(ctx, req.ToAccountNumber)
	if err != nil {
		return nil, accountLookupError(err, "destination account number "+req.ToAccountNumber)
	}
	if !src.OwnedBy(callerUserID) {
		return nil, fmt.Errorf("%w: source account %s", ErrForbidden, src.AccountID)
	}

	lockIDs := []string{src.AccountID}
	if dst.AccountID != src.AccountID {
		lockIDs = append(lockIDs, dst.AccountID)
	}
	locked, err := unit.FindAccountsByIDsForUpdate(ctx, lockIDs)
	if err != nil {
		return nil, accountLookupError(err, "lock accounts")
	}
	source, destination := locked[src.AccountID], locked[dst.AccountID]

	if !source.IsActive {
		return nil, fmt.Errorf("%w: source account %s", ErrAccountInactive, source.AccountID)
	}
	if !destination.IsActive {
		return nil, fmt.Errorf("%w: destination account %s", ErrAccountInactive, destination.AccountNumber)
	}
	if source.AccountID == destination.AccountID {
		return nil, ErrInvalidTransfer
	}
	if source.CurrencyCode != destination.CurrencyCode {
		return nil, fmt.Errorf("%w: %s to %s", ErrCurrencyMismatch, source.CurrencyCode, destination.CurrencyCode)
	}
	amount := req.Amount
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero, got %s", ErrInvalidAmount, amount)
	}
	if !utils.HasMoneyScale(amount) {
		return nil, fmt.Errorf("%w: amount %s has more than %d fractional digits", ErrInvalidAmount, amount, domain.MoneyScale)
	}
	if source.Balance.LessThan(amount) {
		return nil, fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, utils.FormatMoney(source.Balance), utils.FormatMoney(amount))
	}

	newSourceBalance, newDestinationBalance, err := accounting.TransferBalances(source.Balance, destination.Balance, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	}

	now := s.Now()
	if err := unit.UpdateAccountBalancesInTx(ctx, accounting.BalanceChanges(source.AccountID, destination.AccountID, amount), now); err != nil {
		return nil, err
	}

	legs, err := buildLegs(source, destination, amount, newSourceBalance, newDestinationBalance, req, now)
	if err != nil {
		return nil, err
	}
	if net := accounting.NetChange(legs); !net.IsZero() {
		return nil, fmt.Errorf("%w: transfer legs net to %s", apperrors.ErrStorage, net)
	}
	if err := unit.InsertTransactions(ctx, legs); err != nil {
		return nil, err
	}

	return &domain.TransferResult{
		NewBalance:          newSourceBalance,
		Reference:           *legs[0].Reference,
		DebitTransactionID:  legs[0].TransactionID,
		CreditTransactionID: legs[1].TransactionID,
	}, nil
}

// buildLegs returns the debit and credit records of one transfer.
func buildLegs(source, destination domain.Account, amount, sourceAfter, destinationAfter decimal.Decimal, req dto.TransferRequest, now time.Time) ([]domain.Transaction, error) {
	debitID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: generate transaction id: %w", apperrors.ErrStorage, err)
	}
	creditID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: generate transaction id: %w", apperrors.ErrStorage, err)
	}
	reference := uuid.NewString()
	category := optionalText(req.Category)

	debitDescription := "Transfer to " + destination.AccountNumber
	if d := optionalText(req.Description); d != nil {
		debitDescription = *d
	}

	return []domain.Transaction{
		{
			TransactionID:         debitID.String(),
			AccountID:             source.AccountID,
			Type:                  domain.Debit,
			Amount:                amount,
			BalanceAfter:          sourceAfter,
			CounterpartyAccountID: destination.AccountID,
			Category:              category,
			Description:           debitDescription,
			Reference:             &reference,
			CreatedAt:             now,
		},
		{
			TransactionID:         creditID.String(),
			AccountID:             destination.AccountID,
			Type:                  domain.Credit,
			Amount:                amount,
			BalanceAfter:          destinationAfter,
			CounterpartyAccountID: source.AccountID,
			Category:              category,
			Description:           "Transfer from " + source.AccountNumber,
			Reference:             &reference,
			CreatedAt:             now,
		},
	}, nil
}

// optionalText trims s and treats blank as absent.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func accountLookupError(err error, what string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, what)
	}
	return err
}
