// Package memory is an in-process ledger store. Committed state sits behind a
// RWMutex that writers hold only while applying a commit; transfers serialise
// on per-account locks taken in id order, like row locks.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// DefaultLockTimeout bounds how long a unit waits for an account lock.
const DefaultLockTimeout = 5 * time.Second

// Store holds accounts and the append-only transaction log.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	byNumber     map[string]string
	locks        map[string]accountLock
	transactions []domain.Transaction
	byAccount    map[string][]int
	txnIDs       map[string]struct{}

	lockTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout sets the bounded lock wait of units.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		accounts:    make(map[string]domain.Account),
		byNumber:    make(map[string]string),
		locks:       make(map[string]accountLock),
		byAccount:   make(map[string][]int),
		txnIDs:      make(map[string]struct{}),
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ portsrepo.AccountRepositoryFacade     = (*Store)(nil)
	_ portsrepo.TransactionRepositoryFacade = (*Store)(nil)
	_ portsrepo.TransactionManager          = (*Store)(nil)
)

// Provider exposes the store through the repository ports.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     s,
		TransactionRepo: s,
		TxManager:       s,
	}
}

// accountLock is a one-slot semaphore so waits can be bounded and cancelled.
type accountLock chan struct{}

func (l accountLock) acquire(ctx context.Context, accountID string, timeout time.Duration) error {
	select {
	case l <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case l <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: lock wait on account %s exceeded %s", apperrors.ErrTransient, accountID, timeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: lock wait on account %s: %w", apperrors.ErrTransient, accountID, ctx.Err())
	}
}

func (l accountLock) release() {
	<-l
}

func (s *Store) lockFor(accountID string) (accountLock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locks[accountID]
	return l, ok
}

// SaveAccount persists a new account.
func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	if account.AccountID == "" || account.AccountNumber == "" {
		return fmt.Errorf("%w: account id and number are required", apperrors.ErrValidation)
	}
	if account.Balance.IsNegative() {
		return fmt.Errorf("%w: opening balance cannot be negative", apperrors.ErrValidation)
	}
	if account.CurrencyCode == "" {
		account.CurrencyCode = domain.DefaultCurrency
	}
	account.Balance = account.Balance.Round(domain.MoneyScale)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	if _, exists := s.byNumber[account.AccountNumber]; exists {
		return fmt.Errorf("%w: account number %s already issued", apperrors.ErrDuplicate, account.AccountNumber)
	}
	s.accounts[account.AccountID] = account
	s.byNumber[account.AccountNumber] = account.AccountID
	s.locks[account.AccountID] = make(accountLock, 1)
	return nil
}

// FindAccountByID returns a copy of the committed account.
func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &acc, nil
}

// FindAccountByNumber returns a copy of the committed account with that number.
func (s *Store) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[accountNumber]
	if !ok {
		return nil, fmt.Errorf("%w: account number %s", apperrors.ErrNotFound, accountNumber)
	}
	acc := s.accounts[id]
	return &acc, nil
}

// ListAccountsByUserID lists a user's accounts, oldest first.
func (s *Store) ListAccountsByUserID(ctx context.Context, userID string, activeOnly bool) ([]domain.Account, error) {
	s.mu.RLock()
	accounts := []domain.Account{}
	for _, acc := range s.accounts {
		if acc.UserID != userID || (activeOnly && !acc.IsActive) {
			continue
		}
		accounts = append(accounts, acc)
	}
	s.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].AccountID < accounts[j].AccountID
	})
	return accounts, nil
}

// DeactivateAccount waits for the account lock like a row UPDATE would.
func (s *Store) DeactivateAccount(ctx context.Context, accountID string, now time.Time) error {
	l, ok := s.lockFor(accountID)
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if err := l.acquire(ctx, accountID, s.lockTimeout); err != nil {
		return err
	}
	defer l.release()

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[accountID]
	if !acc.IsActive {
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrValidation, accountID)
	}
	acc.IsActive = false
	acc.LastUpdatedAt = now
	s.accounts[accountID] = acc
	return nil
}

// ListTransactionsByAccountID pages committed history newest first.
func (s *Store) ListTransactionsByAccountID(ctx context.Context, accountID string, filter domain.TransactionFilter, limit int, offset int) ([]domain.Transaction, int, error) {
	s.mu.RLock()
	matched := make([]domain.Transaction, 0, len(s.byAccount[accountID]))
	for _, idx := range s.byAccount[accountID] {
		if txn := s.transactions[idx]; filter.Matches(txn) {
			matched = append(matched, txn)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].NewerThan(matched[j]) })

	total := len(matched)
	if offset < 0 || offset >= total || limit <= 0 {
		return []domain.Transaction{}, total, nil
	}
	end := offset + limit
	if end > total || end < offset {
		end = total
	}
	return matched[offset:end], total, nil
}

// StreamTransactions snapshots matching rows, releases the lock, then feeds fn oldest first.
func (s *Store) StreamTransactions(ctx context.Context, accountIDs []string, from time.Time, to time.Time, fn func(domain.Transaction) error) error {
	s.mu.RLock()
	var matched []domain.Transaction
	for _, id := range accountIDs {
		for _, idx := range s.byAccount[id] {
			txn := s.transactions[idx]
			if txn.CreatedAt.Before(from) || txn.CreatedAt.After(to) {
				continue
			}
			matched = append(matched, txn)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[j].NewerThan(matched[i]) })
	for _, txn := range matched {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: stream transactions: %w", apperrors.ErrTransient, err)
		}
		if err := fn(txn); err != nil {
			return err
		}
	}
	return nil
}

// TotalBalance sums every account in the store.
func (s *Store) TotalBalance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, acc := range s.accounts {
		total = total.Add(acc.Balance)
	}
	return total
}

// TransactionCount is the size of the committed log.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}
