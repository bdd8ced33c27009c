package models

import "github.com/shopspring/decimal"

// DaySchedule holds a draft's entries for a single day
type DaySchedule struct {
	Date    Date                       `json:"date"`
	Entries []ScheduleEntry            `json:"entries"`
	Totals  map[string]decimal.Decimal `json:"totals"` // keyed by currency
}

// ScheduleSummary represents aggregate figures for a draft.
// Amounts are never summed across currencies.
type ScheduleSummary struct {
	Entries          int                        `json:"entries"`
	Days             int                        `json:"days"`
	TotalByCurrency  map[string]decimal.Decimal `json:"totalByCurrency"`
	PaidByCurrency   map[string]decimal.Decimal `json:"paidByCurrency"`
	EntriesPriority  map[string]int             `json:"entriesByPriority"`
	AvailableCash    decimal.Decimal            `json:"availableCash"`
	DailyBudget      decimal.Decimal            `json:"dailyBudget"`
	UtilizationRate  decimal.Decimal            `json:"utilizationRate"` // base currency only
	BaseCurrency     string                     `json:"baseCurrency"`
	CompaniesCovered int                        `json:"companiesCovered"`
}
