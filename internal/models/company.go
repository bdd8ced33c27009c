package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company represents a supplier or creditor the shop owes money to
type Company struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone,omitempty"`
	Address         string          `json:"address,omitempty"`
	MarketMoney     decimal.Decimal `json:"market_money"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	EarliestDueDate *Date           `json:"earliest_due_date"`
	PrimaryCurrency string          `json:"primary_currency,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CurrencyOr returns the company's currency, falling back to base
func (c Company) CurrencyOr(base string) string {
	if c.PrimaryCurrency == "" {
		return base
	}
	return c.PrimaryCurrency
}

// HasDebt reports whether the company is owed a positive amount
func (c Company) HasDebt() bool {
	return c.TotalDebt.IsPositive()
}

// Customer represents a shop customer buying on credit
type Customer struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone,omitempty"`
	Address         string          `json:"address,omitempty"`
	MarketMoney     decimal.Decimal `json:"market_money"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	Reputation      string          `json:"reputation"`
	ReputationScore int             `json:"reputation_score"`
	EarliestDueDate *Date           `json:"earliest_due_date"`
	CreatedAt       time.Time       `json:"created_at"`
}
