package services

import (
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo, repos.TransactionRepo),
		Transfer: NewTransferService(
			repos.TxManager,
			WithUnitTimeout(cfg.LedgerUnitTimeout),
		),
		Transaction: NewTransactionQueryService(
			repos.AccountRepo,
			repos.TransactionRepo,
			WithMaxPageSize(cfg.MaxPageSize),
		),
		Analytics: NewAnalyticsService(repos.AccountRepo, repos.TransactionRepo),
	}
}
