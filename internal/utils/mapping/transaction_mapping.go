package mapping

import (
	"database/sql"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/models"
)

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:         d.TransactionID,
		AccountID:             d.AccountID,
		TransactionType:       string(d.Type),
		Amount:                d.Amount,
		BalanceAfter:          d.BalanceAfter,
		CounterpartyAccountID: d.CounterpartyAccountID,
		Category:              toNullString(d.Category),
		Description:           d.Description,
		Reference:             toNullString(d.Reference),
		CreatedAt:             d.CreatedAt,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:         m.TransactionID,
		AccountID:             m.AccountID,
		Type:                  domain.TransactionType(m.TransactionType),
		Amount:                m.Amount.Round(domain.MoneyScale),
		BalanceAfter:          m.BalanceAfter.Round(domain.MoneyScale),
		CounterpartyAccountID: m.CounterpartyAccountID,
		Category:              fromNullString(m.Category),
		Description:           m.Description,
		Reference:             fromNullString(m.Reference),
		CreatedAt:             m.CreatedAt.UTC(),
	}
}
