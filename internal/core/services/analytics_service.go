package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// MonthlyWindow is the number of calendar months in the monthly series, current month included.
const MonthlyWindow = 6

type analyticsService struct {
	BaseService
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionReader
}

// AnalyticsServiceOption is a functional option for configuring the analytics service
type AnalyticsServiceOption func(*analyticsService)

// WithAnalyticsClock replaces the clock that anchors the reporting windows.
func WithAnalyticsClock(now func() time.Time) AnalyticsServiceOption {
	return func(s *analyticsService) {
		s.now = now
	}
}

// NewAnalyticsService creates the analytics aggregator.
func NewAnalyticsService(accountRepo portsrepo.AccountReader, transactionRepo portsrepo.TransactionReader, options ...AnalyticsServiceOption) portssvc.AnalyticsSvc {
	svc := &analyticsService{
		BaseService:     newBaseService(),
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AnalyticsSvc = (*analyticsService)(nil)

type monthKey struct {
	year  int
	month time.Month
	typ   domain.TransactionType
}

// GetAnalytics implements portssvc.AnalyticsSvc
func (s *analyticsService) GetAnalytics(ctx context.Context, userID string) (*domain.Analytics, error) {
	now := s.Now()

	accounts, err := s.accountRepo.ListAccountsByUserID(ctx, userID, false)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for analytics", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list accounts for user %s: %w", userID, err)
	}

	result := &domain.Analytics{
		Monthly:      []domain.MonthlyTotal{},
		ByCategory:   []domain.CategoryTotal{},
		TotalBalance: accounting.SumBalances(activeAccounts(accounts)),
	}
	if len(accounts) == 0 {
		return result, nil
	}

	accountIDs := make([]string, len(accounts))
	for i, acc := range accounts {
		accountIDs[i] = acc.AccountID
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := monthStart.AddDate(0, -(MonthlyWindow - 1), 0)

	monthly := make(map[monthKey]decimal.Decimal)
	byCategory := make(map[string]decimal.Decimal)
	uncategorized := decimal.Zero
	hasUncategorized := false

	err = s.transactionRepo.StreamTransactions(ctx, accountIDs, windowStart, now, func(txn domain.Transaction) error {
		at := txn.CreatedAt.UTC()
		key := monthKey{year: at.Year(), month: at.Month(), typ: txn.Type}
		monthly[key] = monthly[key].Add(txn.Amount)

		if at.Before(monthStart) {
			return nil
		}
		if txn.Category == nil {
			uncategorized = uncategorized.Add(txn.Amount)
			hasUncategorized = true
			return nil
		}
		byCategory[*txn.Category] = byCategory[*txn.Category].Add(txn.Amount)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate transactions", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to aggregate transactions for user %s: %w", userID, err)
	}

	for key, total := range monthly {
		result.Monthly = append(result.Monthly, domain.MonthlyTotal{
			Year:  key.year,
			Month: int(key.month),
			Type:  key.typ,
			Total: total,
		})
	}
	sort.Slice(result.Monthly, func(i, j int) bool {
		a, b := result.Monthly[i], result.Monthly[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Type < b.Type
	})

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		category := name
		result.ByCategory = append(result.ByCategory, domain.CategoryTotal{Category: &category, Total: byCategory[name]})
	}
	// The uncategorized bucket goes last.
	if hasUncategorized {
		result.ByCategory = append(result.ByCategory, domain.CategoryTotal{Category: nil, Total: uncategorized})
	}

	s.LogDebug(ctx, "Analytics computed",
		slog.String("user_id", userID),
		slog.Int("accounts", len(accounts)),
		slog.Int("monthly_buckets", len(result.Monthly)),
		slog.Int("category_buckets", len(result.ByCategory)))
	return result, nil
}

func activeAccounts(accounts []domain.Account) []domain.Account {
	active := make([]domain.Account, 0, len(accounts))
	for _, acc := range accounts {
		if acc.IsActive {
			active = append(active, acc)
		}
	}
	return active
}
