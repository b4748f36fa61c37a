package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/dto"
	"github.com/SscSPs/banking_ledger/internal/utils/pagination"
)

// DefaultMaxPageSize caps the page size of history queries.
const DefaultMaxPageSize = 100

type transactionQueryService struct {
	BaseService
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionReader
	maxPageSize     int
}

// TransactionQueryOption is a functional option for configuring the query service
type TransactionQueryOption func(*transactionQueryService)

// WithMaxPageSize sets the cap applied to requested page sizes.
func WithMaxPageSize(n int) TransactionQueryOption {
	return func(s *transactionQueryService) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// NewTransactionQueryService creates the paginated history reader.
func NewTransactionQueryService(accountRepo portsrepo.AccountReader, transactionRepo portsrepo.TransactionReader, options ...TransactionQueryOption) portssvc.TransactionSvcFacade {
	svc := &transactionQueryService{
		BaseService:     newBaseService(),
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		maxPageSize:     DefaultMaxPageSize,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionQueryService)(nil)

// ListTransactions implements portssvc.TransactionReaderSvc
func (s *transactionQueryService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*domain.TransactionPage, error) {
	page, filter, err := s.parseQuery(params)
	if err != nil {
		return nil, err
	}
	if _, err := s.findAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.listPage(ctx, accountID, page, filter)
}

// ListTransactionsForUser implements portssvc.TransactionReaderSvc
func (s *transactionQueryService) ListTransactionsForUser(ctx context.Context, userID string, accountID string, params dto.ListTransactionsParams) (*domain.TransactionPage, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.OwnedBy(userID) {
		s.LogDebug(ctx, "History requested for account of another user",
			slog.String("account_id", accountID),
			slog.String("user_id", userID))
		return nil, fmt.Errorf("%w: account %s", ErrForbidden, accountID)
	}

	page, filter, err := s.parseQuery(params)
	if err != nil {
		return nil, err
	}
	return s.listPage(ctx, accountID, page, filter)
}

func (s *transactionQueryService) findAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", ErrAccountNotFound, accountID)
		}
		s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

func (s *transactionQueryService) listPage(ctx context.Context, accountID string, page pagination.Page, filter domain.TransactionFilter) (*domain.TransactionPage, error) {
	items, total, err := s.transactionRepo.ListTransactionsByAccountID(ctx, accountID, filter, page.Size, page.Offset())
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions",
			slog.String("account_id", accountID),
			slog.Int("page", page.Number),
			slog.Int("page_size", page.Size))
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	if items == nil {
		items = []domain.Transaction{}
	}

	return &domain.TransactionPage{
		Items:    items,
		Total:    total,
		Pages:    pagination.TotalPages(total, page.Size),
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}

// parseQuery turns raw parameters into a normalised page and filter.
func (s *transactionQueryService) parseQuery(params dto.ListTransactionsParams) (pagination.Page, domain.TransactionFilter, error) {
	page, err := pagination.Normalize(params.Page, params.Limit, s.maxPageSize)
	if err != nil {
		return pagination.Page{}, domain.TransactionFilter{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	var filter domain.TransactionFilter
	if params.Type != "" {
		t := domain.TransactionType(params.Type)
		if !t.IsValid() {
			return pagination.Page{}, domain.TransactionFilter{}, fmt.Errorf("%w: type must be debit or credit, got %q", ErrInvalidQuery, params.Type)
		}
		filter.Type = &t
	}
	if params.Category != "" {
		category := params.Category
		filter.Category = &category
	}
	return page, filter, nil
}
