package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Priority is an urgency tier; lower values are more urgent
type Priority int

const (
	PriorityOverdue Priority = 1
	PriorityUrgent  Priority = 2
	PriorityNormal  Priority = 3
	PriorityLow     Priority = 4
)

// String returns the tier label
func (p Priority) String() string {
	switch p {
	case PriorityOverdue:
		return "overdue"
	case PriorityUrgent:
		return "urgent"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// ScheduleEntry is one proposed payment to one company on one day
type ScheduleEntry struct {
	Date        Date            `json:"date"`
	CompanyID   int64           `json:"companyId"`
	CompanyName string          `json:"companyName"`
	Amount      decimal.Decimal `json:"amount"`
	Priority    Priority        `json:"priority"`
	DaysLeft    int             `json:"daysLeft"`
	IsUrgent    bool            `json:"isUrgent"`
	IsPaid      bool            `json:"isPaid,omitempty"`
	Currency    string          `json:"currency"`
}

// Key identifies the entry within a draft as date-companyId
func (e ScheduleEntry) Key() string {
	return ItemKey(e.Date, e.CompanyID)
}

// ItemKey builds the paid-overlay key for a date and company
func ItemKey(date Date, companyID int64) string {
	return date.String() + "-" + strconv.FormatInt(companyID, 10)
}

// Draft is a generated, not yet persisted payment schedule
type Draft struct {
	ID            uuid.UUID       `json:"id"`
	Owner         string          `json:"owner"`
	GeneratedAt   time.Time       `json:"generatedAt"`
	StartDate     Date            `json:"startDate"`
	EndDate       Date            `json:"endDate"`
	ShopCash      decimal.Decimal `json:"shopCash"`
	SafetyMargin  decimal.Decimal `json:"safetyMargin"`
	AvailableCash decimal.Decimal `json:"availableCash"`
	DailyBudget   decimal.Decimal `json:"dailyBudget"`
	BaseCurrency  string          `json:"baseCurrency"`
	Entries       []ScheduleEntry `json:"entries"`
}

// Entry returns a pointer to the entry for date and company, or nil
func (d *Draft) Entry(date Date, companyID int64) *ScheduleEntry {
	for i := range d.Entries {
		if d.Entries[i].Date.Equal(date.Time) && d.Entries[i].CompanyID == companyID {
			return &d.Entries[i]
		}
	}
	return nil
}
