package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/repositories/memory"
	"github.com/SscSPs/banking_ledger/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock shared by a test and the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{now: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type accountOption func(*domain.Account)

func inactive() accountOption {
	return func(a *domain.Account) { a.IsActive = false }
}

func inCurrency(code string) accountOption {
	return func(a *domain.Account) { a.CurrencyCode = code }
}

// openAccount saves an active USD checking account into store.
func openAccount(t *testing.T, store *memory.Store, userID, number, balance string, opts ...accountOption) domain.Account {
	t.Helper()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	acc := domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: number,
		UserID:        userID,
		Kind:          domain.Checking,
		CurrencyCode:  "USD",
		Balance:       decimal.RequireFromString(balance),
		IsActive:      true,
		AuditFields:   domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	for _, opt := range opts {
		opt(&acc)
	}
	require.NoError(t, store.SaveAccount(context.Background(), acc))
	return acc
}

func balanceOf(t *testing.T, store *memory.Store, accountID string) string {
	t.Helper()
	acc, err := store.FindAccountByID(context.Background(), accountID)
	require.NoError(t, err)
	return utils.FormatMoney(acc.Balance)
}

func historyOf(t *testing.T, store *memory.Store, accountID string) []domain.Transaction {
	t.Helper()
	txns, _, err := store.ListTransactionsByAccountID(context.Background(), accountID, domain.TransactionFilter{}, 1000, 0)
	require.NoError(t, err)
	return txns
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, utils.FormatMoney(got))
}

func strPtr(s string) *string { return &s }
