package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/core/services"
	"github.com/SscSPs/banking_ledger/internal/dto"
	"github.com/SscSPs/banking_ledger/internal/repositories/memory"
	"github.com/SscSPs/banking_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type TransferServiceTestSuite struct {
	suite.Suite
	store   *memory.Store
	clock   *testClock
	service portssvc.TransferSvcFacade
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.clock = newTestClock(time.Date(2026, 3, 15, 9, 30, 0, 123456789, time.UTC))
	suite.service = services.NewTransferService(suite.store, services.WithTransferClock(suite.clock.Now))
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}

func transferReq(toNumber, amount string) dto.TransferRequest {
	return dto.TransferRequest{ToAccountNumber: toNumber, Amount: decimal.RequireFromString(amount)}
}

// --- Test Cases ---

func (suite *TransferServiceTestSuite) TestTransfer_Success() {
	t := suite.T()
	a := openAccount(t, suite.store, "alice", "1000000001", "100.00")
	b := openAccount(t, suite.store, "bob", "1000000002", "50.00")

	result, err := suite.service.Transfer(context.Background(), "alice", a.AccountID, transferReq("1000000002", "30.00"))
	suite.Require().NoError(err)
	assertMoney(t, "70.00", result.NewBalance)
	suite.Equal("70.00", balanceOf(t, suite.store, a.AccountID))
	suite.Equal("80.00", balanceOf(t, suite.store, b.AccountID))

	debits := historyOf(t, suite.store, a.AccountID)
	credits := historyOf(t, suite.store, b.AccountID)
	suite.Require().Len(debits, 1)
	suite.Require().Len(credits, 1)

	debit, credit := debits[0], credits[0]
	suite.Equal(domain.Debit, debit.Type)
	suite.Equal(domain.Credit, credit.Type)
	assertMoney(t, "30.00", debit.Amount)
	assertMoney(t, "30.00", credit.Amount)
	assertMoney(t, "70.00", debit.BalanceAfter)
	assertMoney(t, "80.00", credit.BalanceAfter)
	suite.Equal(b.AccountID, debit.CounterpartyAccountID)
	suite.Equal(a.AccountID, credit.CounterpartyAccountID)
	suite.Equal(result.DebitTransactionID, debit.TransactionID)
	suite.Equal(result.CreditTransactionID, credit.TransactionID)
	suite.True(debit.CreatedAt.Equal(credit.CreatedAt))
	suite.Equal(suite.clock.Now().Truncate(time.Microsecond), debit.CreatedAt)
	suite.Require().NotNil(debit.Reference)
	suite.Require().NotNil(credit.Reference)
	suite.Equal(result.Reference, *debit.Reference)
	suite.Equal(*debit.Reference, *credit.Reference)
	suite.Equal("Transfer to 1000000002", debit.Description)
	suite.Equal("Transfer from 1000000001", credit.Description)
	suite.Nil(debit.Category)
}

func (suite *TransferServiceTestSuite) TestTransfer_DescriptionAndCategory() {
	t := suite.T()
	a := openAccount(t, suite.store, "alice", "1000000001", "100.00")
	b := openAccount(t, suite.store, "bob", "1000000002", "0.00")

	req := transferReq("1000000002", "12.5")
	req.Description = strPtr("  Dinner split ")
	req.Category = strPtr("food")
	_, err := suite.service.Transfer(context.Background(), "alice", a.AccountID, req)
	suite.Require().NoError(err)

	debit := historyOf(t, suite.store, a.AccountID)[0]
	credit := historyOf(t, suite.store, b.AccountID)[0]
	suite.Equal("Dinner split", debit.Description)
	suite.Equal("Transfer from 1000000001", credit.Description)
	suite.Require().NotNil(debit.Category)
	suite.Require().NotNil(credit.Category)
	suite.Equal("food", *debit.Category)
	suite.Equal("food", *credit.Category)
	suite.Equal("87.50", balanceOf(t, suite.store, a.AccountID))

	// Blank metadata is treated as absent.
	req = transferReq("1000000002", "1.00")
	req.Description = strPtr("   ")
	req.Category = strPtr("")
	_, err = suite.service.Transfer(context.Background(), "alice", a.AccountID, req)
	suite.Require().NoError(err)
	latest := historyOf(t, suite.store, a.AccountID)[0]
	suite.Equal("Transfer to 1000000002", latest.Description)
	suite.Nil(latest.Category)
}

func (suite *TransferServiceTestSuite) TestTransfer_InsufficientFunds() {
	t := suite.T()
	a := openAccount(t, suite.store, "alice", "1000000001", "10.00")
	openAccount(t, suite.store, "bob", "1000000002", "0.00")

	result, err := suite.service.Transfer(context.Background(), "alice", a.AccountID, transferReq("1000000002", "50.00"))
	suite.Nil(result)
	suite.ErrorIs(err, services.ErrInsufficientFunds)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
	suite.Equal("10.00", balanceOf(t, suite.store, a.AccountID))
	suite.Zero(suite.store.TransactionCount())
}

func (suite *TransferServiceTestSuite) TestTransfer_ExactBalance() {
	t := suite.T()
	a := openAccount(t, suite.store, "alice", "1000000001", "10.00")
	openAccount(t, suite.store, "bob", "1000000002", "0.00")

	result, err := suite.service.Transfer(context.Background(), "alice", a.AccountID, transferReq("1000000002", "10"))
	suite.Require().NoError(err)
	assertMoney(t, "0.00", result.NewBalance)
}

func (suite *TransferServiceTestSuite) TestTransfer_Rejections() {
	t := suite.T()
	src := openAccount(t, suite.store, "alice", "1000000001", "100.00")
	openAccount(t, suite.store, "bob", "1000000002", "100.00")
	closed := openAccount(t, suite.store, "alice", "1000000003", "100.00", inactive())
	openAccount(t, suite.store, "bob", "1000000004", "100.00", inactive())
	openAccount(t, suite.store, "bob", "1000000005", "100.00", inCurrency("EUR"))

	tests := []struct {
		name    string
		caller  string
		source  string
		req     dto.TransferRequest
		wantErr error
		kind    error
	}{
		{"unknown source", "alice", "missing", transferReq("1000000002", "1"), services.ErrAccountNotFound, apperrors.ErrNotFound},
		{"unknown destination", "alice", src.AccountID, transferReq("9999999999", "1"), services.ErrAccountNotFound, apperrors.ErrNotFound},
		{"not the owner", "bob", src.AccountID, transferReq("1000000002", "1"), services.ErrForbidden, apperrors.ErrForbidden},
		{"ownership before activity", "bob", closed.AccountID, transferReq("1000000002", "1"), services.ErrForbidden, apperrors.ErrForbidden},
		{"inactive source", "alice", closed.AccountID, transferReq("1000000002", "1"), services.ErrAccountInactive, apperrors.ErrBusinessRule},
		{"inactive destination", "alice", src.AccountID, transferReq("1000000004", "1"), services.ErrAccountInactive, apperrors.ErrBusinessRule},
		{"inactive self transfer", "alice", closed.AccountID, transferReq("1000000003", "1"), services.ErrAccountInactive, apperrors.ErrBusinessRule},
		{"self transfer", "alice", src.AccountID, transferReq("1000000001", "1"), services.ErrInvalidTransfer, apperrors.ErrValidation},
		{"self transfer before amount", "alice", src.AccountID, transferReq("1000000001", "0"), services.ErrInvalidTransfer, apperrors.ErrValidation},
		{"currency mismatch", "alice", src.AccountID, transferReq("1000000005", "1"), services.ErrCurrencyMismatch, apperrors.ErrValidation},
		{"currency before amount", "alice", src.AccountID, transferReq("1000000005", "-1"), services.ErrCurrencyMismatch, apperrors.ErrValidation},
		{"zero amount", "alice", src.AccountID, transferReq("1000000002", "0"), services.ErrInvalidAmount, apperrors.ErrValidation},
		{"negative amount", "alice", src.AccountID, transferReq("1000000002", "-5.00"), services.ErrInvalidAmount, apperrors.ErrValidation},
		{"too many decimals", "alice", src.AccountID, transferReq("1000000002", "1.005"), services.ErrInvalidAmount, apperrors.ErrValidation},
		{"amount before funds", "alice", src.AccountID, transferReq("1000000002", "500.001"), services.ErrInvalidAmount, apperrors.ErrValidation},
		{"insufficient funds", "alice", src.AccountID, transferReq("1000000002", "100.01"), services.ErrInsufficientFunds, apperrors.ErrBusinessRule},
	}

	totalBefore := suite.store.TotalBalance()
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			result, err := suite.service.Transfer(context.Background(), tt.caller, tt.source, tt.req)
			suite.Nil(result)
			suite.ErrorIs(err, tt.wantErr)
			suite.ErrorIs(err, tt.kind)
			suite.False(apperrors.IsRetryable(err))
		})
	}

	suite.True(suite.store.TotalBalance().Equal(totalBefore))
	suite.Zero(suite.store.TransactionCount())
	suite.Equal("100.00", balanceOf(t, suite.store, src.AccountID))
}

func (suite *TransferServiceTestSuite) TestTransfer_Conservation() {
	t := suite.T()
	accounts := []domain.Account{
		openAccount(t, suite.store, "u1", "2000000001", "250.00"),
		openAccount(t, suite.store, "u2", "2000000002", "125.25"),
		openAccount(t, suite.store, "u3", "2000000003", "0.75"),
	}
	total := suite.store.TotalBalance()

	moves := []struct {
		from, to int
		amount   string
	}{
		{0, 1, "10.10"}, {1, 2, "99.99"}, {2, 0, "50.00"}, {0, 2, "0.01"}, {1, 0, "35.26"},
	}
	for _, m := range moves {
		suite.clock.Advance(time.Second)
		src, dst := accounts[m.from], accounts[m.to]
		before := suite.store.TotalBalance()
		_, err := suite.service.Transfer(context.Background(), src.UserID, src.AccountID, transferReq(dst.AccountNumber, m.amount))
		suite.Require().NoError(err)
		suite.True(suite.store.TotalBalance().Equal(before))
	}
	suite.True(suite.store.TotalBalance().Equal(total))
	suite.Equal(2*len(moves), suite.store.TransactionCount())

	// Every leg's balanceAfter replays from the opening balance.
	var all []domain.Transaction
	for _, acc := range accounts {
		history := historyOf(t, suite.store, acc.AccountID)
		running := acc.Balance
		for i := len(history) - 1; i >= 0; i-- {
			txn := history[i]
			if txn.Type == domain.Debit {
				running = running.Sub(txn.Amount)
			} else {
				running = running.Add(txn.Amount)
			}
			suite.True(running.Equal(txn.BalanceAfter), "account %s leg %s", acc.AccountNumber, txn.TransactionID)
		}
		suite.Equal(balanceOf(t, suite.store, acc.AccountID), running.StringFixed(2))

		moved := accounting.NetChange(history)
		suite.Equal(balanceOf(t, suite.store, acc.AccountID), acc.Balance.Add(moved).StringFixed(2))
		all = append(all, history...)
	}
	suite.True(accounting.NetChange(all).IsZero(), "legs across the ledger must cancel out")
}

func (suite *TransferServiceTestSuite) TestTransfer_ConcurrentDebitsFromOneSource() {
	t := suite.T()
	src := openAccount(t, suite.store, "alice", "1000000001", "100.00")
	dst := openAccount(t, suite.store, "bob", "1000000002", "0.00")

	const attempts = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
		other     []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.Transfer(context.Background(), "alice", src.AccountID, transferReq("1000000002", "30.00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, services.ErrInsufficientFunds):
				refused++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	suite.Empty(other)
	suite.Equal(3, succeeded)
	suite.Equal(attempts-3, refused)
	suite.Equal("10.00", balanceOf(t, suite.store, src.AccountID))
	suite.Equal("90.00", balanceOf(t, suite.store, dst.AccountID))
	suite.Equal(6, suite.store.TransactionCount())
}

func (suite *TransferServiceTestSuite) TestTransfer_ConcurrentOpposingDirections() {
	t := suite.T()
	a := openAccount(t, suite.store, "alice", "1000000001", "500.00")
	b := openAccount(t, suite.store, "bob", "1000000002", "500.00")

	const rounds = 40
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := suite.service.Transfer(context.Background(), "alice", a.AccountID, transferReq("1000000002", "1.00"))
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := suite.service.Transfer(context.Background(), "bob", b.AccountID, transferReq("1000000001", "2.00"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		suite.NoError(err)
	}
	suite.Equal(fmt.Sprintf("%d.00", 500+rounds), balanceOf(t, suite.store, a.AccountID))
	suite.Equal(fmt.Sprintf("%d.00", 500-rounds), balanceOf(t, suite.store, b.AccountID))
	suite.Equal(4*rounds, suite.store.TransactionCount())
}

func (suite *TransferServiceTestSuite) TestTransfer_NotIdempotent() {
	t := suite.T()
	a := openAccount(t, suite.store, "alice", "1000000001", "100.00")
	openAccount(t, suite.store, "bob", "1000000002", "0.00")

	req := transferReq("1000000002", "25.00")
	first, err := suite.service.Transfer(context.Background(), "alice", a.AccountID, req)
	suite.Require().NoError(err)
	second, err := suite.service.Transfer(context.Background(), "alice", a.AccountID, req)
	suite.Require().NoError(err)

	suite.NotEqual(first.Reference, second.Reference)
	assertMoney(t, "50.00", second.NewBalance)
	suite.Equal(4, suite.store.TransactionCount())
}

func (suite *TransferServiceTestSuite) TestTransfer_CancelledBeforeStart() {
	t := suite.T()
	a := openAccount(t, suite.store, "alice", "1000000001", "100.00")
	openAccount(t, suite.store, "bob", "1000000002", "0.00")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := suite.service.Transfer(ctx, "alice", a.AccountID, transferReq("1000000002", "1.00"))
	suite.ErrorIs(err, apperrors.ErrTransient)
	suite.ErrorIs(err, context.Canceled)
	suite.Zero(suite.store.TransactionCount())
}

func (suite *TransferServiceTestSuite) TestTransfer_LockTimeoutIsTransient() {
	t := suite.T()
	store := memory.NewStore(memory.WithLockTimeout(20 * time.Millisecond))
	svc := services.NewTransferService(store)
	a := openAccount(t, store, "alice", "1000000001", "100.00")
	openAccount(t, store, "bob", "1000000002", "0.00")

	// Hold the source lock from another unit.
	holder, err := store.Begin(context.Background())
	suite.Require().NoError(err)
	_, err = holder.FindAccountsByIDsForUpdate(context.Background(), []string{a.AccountID})
	suite.Require().NoError(err)

	_, err = svc.Transfer(context.Background(), "alice", a.AccountID, transferReq("1000000002", "1.00"))
	suite.ErrorIs(err, apperrors.ErrTransient)
	suite.True(apperrors.IsRetryable(err))

	suite.Require().NoError(holder.Rollback(context.Background()))
	suite.Zero(store.TransactionCount())

	// The failed transfer released what it held.
	_, err = svc.Transfer(context.Background(), "alice", a.AccountID, transferReq("1000000002", "1.00"))
	suite.NoError(err)
}

// --- Failure paths against a mocked store ---

type TransferFailureTestSuite struct {
	suite.Suite
	manager *MockTransactionManager
	unit    *MockLedgerUnit
	service portssvc.TransferSvcFacade
	src     domain.Account
	dst     domain.Account
}

func (suite *TransferFailureTestSuite) SetupTest() {
	suite.manager = new(MockTransactionManager)
	suite.unit = new(MockLedgerUnit)
	suite.service = services.NewTransferService(suite.manager, services.WithUnitTimeout(time.Second))
	suite.src = domain.Account{AccountID: "a", AccountNumber: "1001", UserID: "alice", CurrencyCode: "USD", Balance: decimal.NewFromInt(100), IsActive: true}
	suite.dst = domain.Account{AccountID: "b", AccountNumber: "1002", UserID: "bob", CurrencyCode: "USD", Balance: decimal.NewFromInt(50), IsActive: true}
}

func TestTransferFailureTestSuite(t *testing.T) {
	suite.Run(t, new(TransferFailureTestSuite))
}

// expectUpToWrites sets up a unit that succeeds through the lock step.
func (suite *TransferFailureTestSuite) expectUpToWrites() {
	src, dst := suite.src, suite.dst
	suite.manager.On("Begin", mock.Anything).Return(suite.unit, nil).Once()
	suite.unit.On("FindAccountByID", mock.Anything, "a").Return(&src, nil).Once()
	suite.unit.On("FindAccountByNumber", mock.Anything, "1002").Return(&dst, nil).Once()
	suite.unit.On("FindAccountsByIDsForUpdate", mock.Anything, []string{"a", "b"}).
		Return(map[string]domain.Account{"a": src, "b": dst}, nil).Once()
}

func (suite *TransferFailureTestSuite) TestBeginFailure() {
	suite.manager.On("Begin", mock.Anything).Return(nil, fmt.Errorf("%w: pool exhausted", apperrors.ErrTransient)).Once()

	_, err := suite.service.Transfer(context.Background(), "alice", "a", transferReq("1002", "30"))
	suite.ErrorIs(err, apperrors.ErrTransient)
	suite.manager.AssertExpectations(suite.T())
	suite.unit.AssertNotCalled(suite.T(), "Rollback", mock.Anything)
}

func (suite *TransferFailureTestSuite) TestCommitFailureIsTransientAndRollsBack() {
	suite.expectUpToWrites()
	suite.unit.On("UpdateAccountBalancesInTx", mock.Anything, mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes["a"].Equal(decimal.NewFromInt(-30)) && changes["b"].Equal(decimal.NewFromInt(30))
	}), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.unit.On("InsertTransactions", mock.Anything, mock.MatchedBy(func(legs []domain.Transaction) bool {
		return len(legs) == 2 && legs[0].Type == domain.Debit && legs[1].Type == domain.Credit &&
			legs[0].BalanceAfter.Equal(decimal.NewFromInt(70)) && legs[1].BalanceAfter.Equal(decimal.NewFromInt(80))
	})).Return(nil).Once()
	suite.unit.On("Commit", mock.Anything).Return(errors.New("connection reset")).Once()
	suite.unit.On("Rollback", mock.Anything).Return(nil).Once()

	result, err := suite.service.Transfer(context.Background(), "alice", "a", transferReq("1002", "30"))
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrTransient)
	suite.True(apperrors.IsRetryable(err))
	suite.unit.AssertExpectations(suite.T())
}

func (suite *TransferFailureTestSuite) TestInsertFailureRollsBack() {
	storageErr := fmt.Errorf("%w: disk full", apperrors.ErrStorage)
	suite.expectUpToWrites()
	suite.unit.On("UpdateAccountBalancesInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.unit.On("InsertTransactions", mock.Anything, mock.Anything).Return(storageErr).Once()
	suite.unit.On("Rollback", mock.Anything).Return(nil).Once()

	_, err := suite.service.Transfer(context.Background(), "alice", "a", transferReq("1002", "30"))
	suite.ErrorIs(err, apperrors.ErrStorage)
	suite.unit.AssertExpectations(suite.T())
	suite.unit.AssertNotCalled(suite.T(), "Commit", mock.Anything)
}

func (suite *TransferFailureTestSuite) TestRejectionRollsBackWithoutWrites() {
	suite.src.Balance = decimal.NewFromInt(5)
	suite.expectUpToWrites()
	suite.unit.On("Rollback", mock.Anything).Return(nil).Once()

	_, err := suite.service.Transfer(context.Background(), "alice", "a", transferReq("1002", "30"))
	suite.ErrorIs(err, services.ErrInsufficientFunds)
	suite.unit.AssertExpectations(suite.T())
	suite.unit.AssertNotCalled(suite.T(), "UpdateAccountBalancesInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.unit.AssertNotCalled(suite.T(), "InsertTransactions", mock.Anything, mock.Anything)
}

func (suite *TransferFailureTestSuite) TestUnitSurvivesCallerCancellation() {
	callerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	src, dst := suite.src, suite.dst

	// The caller goes away as soon as the unit opens.
	suite.manager.On("Begin", live).Run(func(mock.Arguments) { cancel() }).Return(suite.unit, nil).Once()
	suite.unit.On("FindAccountByID", live, "a").Return(&src, nil).Once()
	suite.unit.On("FindAccountByNumber", live, "1002").Return(&dst, nil).Once()
	suite.unit.On("FindAccountsByIDsForUpdate", live, []string{"a", "b"}).
		Return(map[string]domain.Account{"a": src, "b": dst}, nil).Once()
	suite.unit.On("UpdateAccountBalancesInTx", live, mock.Anything, mock.Anything).Return(nil).Once()
	suite.unit.On("InsertTransactions", live, mock.Anything).Return(nil).Once()
	suite.unit.On("Commit", live).Return(nil).Once()

	result, err := suite.service.Transfer(callerCtx, "alice", "a", transferReq("1002", "30"))
	suite.Require().NoError(err)
	assertMoney(suite.T(), "70.00", result.NewBalance)
	suite.Error(callerCtx.Err())
	suite.unit.AssertExpectations(suite.T())
	suite.unit.AssertNotCalled(suite.T(), "Rollback", mock.Anything)
}

func (suite *TransferFailureTestSuite) TestLockTimeoutRollsBack() {
	src, dst := suite.src, suite.dst
	suite.manager.On("Begin", mock.Anything).Return(suite.unit, nil).Once()
	suite.unit.On("FindAccountByID", mock.Anything, "a").Return(&src, nil).Once()
	suite.unit.On("FindAccountByNumber", mock.Anything, "1002").Return(&dst, nil).Once()
	suite.unit.On("FindAccountsByIDsForUpdate", mock.Anything, []string{"a", "b"}).
		Return(nil, fmt.Errorf("%w: lock_timeout", apperrors.ErrTransient)).Once()
	suite.unit.On("Rollback", mock.Anything).Return(nil).Once()

	_, err := suite.service.Transfer(context.Background(), "alice", "a", transferReq("1002", "30"))
	suite.True(apperrors.IsRetryable(err))
	suite.unit.AssertExpectations(suite.T())
}
