package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// unit buffers writes until Commit. It is not safe for concurrent use;
// one goroutine drives a unit.
type unit struct {
	store   *Store
	held    map[string]accountLock
	deltas  map[string]decimal.Decimal
	pending []domain.Transaction
	now     time.Time
	done    bool
}

var _ portsrepo.LedgerUnit = (*unit)(nil)

// Begin opens a unit. No locks are taken until FindAccountsByIDsForUpdate.
func (s *Store) Begin(ctx context.Context) (portsrepo.LedgerUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: begin ledger unit: %w", apperrors.ErrTransient, err)
	}
	return &unit{
		store:  s,
		held:   make(map[string]accountLock),
		deltas: make(map[string]decimal.Decimal),
	}, nil
}

func (u *unit) checkOpen() error {
	if u.done {
		return fmt.Errorf("%w: ledger unit already resolved", apperrors.ErrStorage)
	}
	return nil
}

// withOwnWrites overlays this unit's pending deltas on a committed snapshot.
func (u *unit) withOwnWrites(acc *domain.Account) *domain.Account {
	if delta, ok := u.deltas[acc.AccountID]; ok {
		acc.Balance = acc.Balance.Add(delta)
	}
	return acc
}

func (u *unit) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if err := u.checkOpen(); err != nil {
		return nil, err
	}
	acc, err := u.store.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return u.withOwnWrites(acc), nil
}

func (u *unit) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if err := u.checkOpen(); err != nil {
		return nil, err
	}
	acc, err := u.store.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	return u.withOwnWrites(acc), nil
}

// FindAccountsByIDsForUpdate takes account locks in ascending id order.
func (u *unit) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if err := u.checkOpen(); err != nil {
		return nil, err
	}
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)

	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		if _, ok := u.held[id]; ok {
			continue
		}
		l, ok := u.store.lockFor(id)
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if err := l.acquire(ctx, id, u.store.lockTimeout); err != nil {
			return nil, err
		}
		u.held[id] = l
	}

	locked := make(map[string]domain.Account, len(ids))
	for _, id := range ids {
		acc, err := u.store.FindAccountByID(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = *u.withOwnWrites(acc)
	}
	return locked, nil
}

func (u *unit) UpdateAccountBalancesInTx(ctx context.Context, balanceChanges map[string]decimal.Decimal, now time.Time) error {
	if err := u.checkOpen(); err != nil {
		return err
	}
	for id := range balanceChanges {
		if _, ok := u.held[id]; !ok {
			return fmt.Errorf("%w: account %s updated without a lock", apperrors.ErrStorage, id)
		}
	}
	for id, change := range balanceChanges {
		u.deltas[id] = u.deltas[id].Add(change)
	}
	u.now = now
	return nil
}

func (u *unit) InsertTransactions(ctx context.Context, transactions []domain.Transaction) error {
	if err := u.checkOpen(); err != nil {
		return err
	}
	for _, txn := range transactions {
		if txn.TransactionID == "" {
			return fmt.Errorf("%w: transaction id is required", apperrors.ErrStorage)
		}
		if _, ok := u.held[txn.AccountID]; !ok {
			return fmt.Errorf("%w: transaction %s on unlocked account %s", apperrors.ErrStorage, txn.TransactionID, txn.AccountID)
		}
	}
	u.pending = append(u.pending, transactions...)
	return nil
}

// Commit validates against committed state and applies everything under one
// write lock, so readers see either none or all of the unit.
func (u *unit) Commit(ctx context.Context) error {
	if err := u.checkOpen(); err != nil {
		return err
	}
	defer u.release()

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, delta := range u.deltas {
		acc, ok := s.accounts[id]
		if !ok {
			return fmt.Errorf("%w: account %s vanished before commit", apperrors.ErrStorage, id)
		}
		if acc.Balance.Add(delta).IsNegative() {
			return fmt.Errorf("%w: balance of account %s would become negative", apperrors.ErrStorage, id)
		}
	}
	seen := make(map[string]struct{}, len(u.pending))
	for _, txn := range u.pending {
		if _, dup := s.txnIDs[txn.TransactionID]; dup {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		if _, dup := seen[txn.TransactionID]; dup {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		seen[txn.TransactionID] = struct{}{}
	}

	for id, delta := range u.deltas {
		acc := s.accounts[id]
		acc.Balance = acc.Balance.Add(delta)
		if !u.now.IsZero() {
			acc.LastUpdatedAt = u.now
		}
		s.accounts[id] = acc
	}
	for _, txn := range u.pending {
		s.transactions = append(s.transactions, txn)
		idx := len(s.transactions) - 1
		s.byAccount[txn.AccountID] = append(s.byAccount[txn.AccountID], idx)
		s.txnIDs[txn.TransactionID] = struct{}{}
	}
	return nil
}

func (u *unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.release()
	return nil
}

// release frees every held lock and closes the unit.
func (u *unit) release() {
	for id, l := range u.held {
		l.release()
		delete(u.held, id)
	}
	u.deltas = nil
	u.pending = nil
	u.done = true
}
