package dto

import (
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/utils"
)

// MonthlyTotalResponse is one (year, month, type) bucket.
type MonthlyTotalResponse struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Type  string `json:"type"`
	Total string `json:"total"`
}

// CategoryTotalResponse is one category bucket of the current month. Category is null for uncategorised.
type CategoryTotalResponse struct {
	Category *string `json:"category"`
	Total    string  `json:"total"`
}

// AnalyticsResponse represents the analytics summary response
type AnalyticsResponse struct {
	Monthly      []MonthlyTotalResponse  `json:"monthly"`
	ByCategory   []CategoryTotalResponse `json:"byCategory"`
	TotalBalance string                  `json:"totalBalance"`
}

// ToAnalyticsResponse converts domain.Analytics.
func ToAnalyticsResponse(a *domain.Analytics) AnalyticsResponse {
	resp := AnalyticsResponse{
		Monthly:      make([]MonthlyTotalResponse, len(a.Monthly)),
		ByCategory:   make([]CategoryTotalResponse, len(a.ByCategory)),
		TotalBalance: utils.FormatMoney(a.TotalBalance),
	}
	for i, m := range a.Monthly {
		resp.Monthly[i] = MonthlyTotalResponse{
			Year:  m.Year,
			Month: m.Month,
			Type:  string(m.Type),
			Total: utils.FormatMoney(m.Total),
		}
	}
	for i, c := range a.ByCategory {
		resp.ByCategory[i] = CategoryTotalResponse{
			Category: c.Category,
			Total:    utils.FormatMoney(c.Total),
		}
	}
	return resp
}
