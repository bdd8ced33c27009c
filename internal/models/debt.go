package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt is a signed ledger entry against a customer or a company.
// Positive amounts increase what is owed, negative amounts record a payment.
type Debt struct {
	ID        int64           `json:"id"`
	Customer  *int64          `json:"customer"`
	Company   *int64          `json:"company"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note"`
	IsSettled bool            `json:"is_settled"`
	DueDate   *Date           `json:"due_date"`
	CreatedAt time.Time       `json:"created_at"`
}

// DebtCreate is the payload for recording a debt or a payment
type DebtCreate struct {
	Company  *int64 `json:"company"`
	Customer *int64 `json:"customer"`
	Amount   string `json:"amount"`
	Note     string `json:"note"`
	Override bool   `json:"override"`
}

// NewCompanyPayment builds a negative debt entry paying amount to a company
func NewCompanyPayment(companyID int64, amount decimal.Decimal, note string) DebtCreate {
	return DebtCreate{
		Company:  &companyID,
		Customer: nil,
		Amount:   "-" + amount.Abs().StringFixed(3),
		Note:     note,
		Override: false,
	}
}

// ShopMoney is the shop's current cash on hand
type ShopMoney struct {
	ID           *int64          `json:"id"`
	CurrentMoney decimal.Decimal `json:"current_money"`
}

// Page is a paginated list response
type Page[T any] struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}
