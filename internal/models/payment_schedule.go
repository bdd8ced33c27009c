package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPlan groups the scheduled payments towards one company's debt
type PaymentPlan struct {
	ID             int64           `json:"id"`
	Customer       *int64          `json:"customer"`
	Company        *int64          `json:"company"`
	TotalDebt      decimal.Decimal `json:"total_debt"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	RemainingDebt  decimal.Decimal `json:"remaining_debt"`
	ManualPriority int             `json:"manual_priority"`
	IsActive       bool            `json:"is_active"`
}

// PaymentPlanCreate is the payload for creating a payment plan
type PaymentPlanCreate struct {
	Company       int64  `json:"company"`
	TotalDebt     string `json:"total_debt"`
	PaidAmount    string `json:"paid_amount"`
	RemainingDebt string `json:"remaining_debt"`
	IsActive      bool   `json:"is_active"`
}

// PaymentSchedule represents a scheduled payment under a plan
type PaymentSchedule struct {
	ID              int64               `json:"id"`
	PaymentPlan     int64               `json:"payment_plan"`
	ScheduledDate   Date                `json:"scheduled_date"`
	ScheduledAmount decimal.Decimal     `json:"scheduled_amount"`
	ActualAmount    decimal.NullDecimal `json:"actual_amount"`
	IsPaid          bool                `json:"is_paid"`
	PaidAt          *time.Time          `json:"paid_at"`
	EntityName      string              `json:"entity_name,omitempty"`
	Currency        string              `json:"currency,omitempty"`
}

// PaymentScheduleCreate is the payload for creating a schedule row
type PaymentScheduleCreate struct {
	PaymentPlan     int64  `json:"payment_plan"`
	ScheduledDate   string `json:"scheduled_date"`
	ScheduledAmount string `json:"scheduled_amount"`
	ActualAmount    string `json:"actual_amount"`
	IsPaid          bool   `json:"is_paid"`
	Currency        string `json:"currency"`
}

// PaymentScheduleUpdate marks a schedule row paid
type PaymentScheduleUpdate struct {
	ActualAmount string    `json:"actual_amount"`
	IsPaid       bool      `json:"is_paid"`
	PaidAt       time.Time `json:"paid_at"`
}
