// Package planner allocates a multi-day cash budget across companies with
// outstanding debt, paying the most time-critical obligations first.
package planner

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Dan9191/market-planner/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrNoDebts       = errors.New("no companies with debt found to generate schedule for")
	ErrNoCash        = errors.New("no available money for payments after safety margin")
	ErrInvalidRange  = errors.New("invalid date range")
	ErrEmptySchedule = errors.New("no payment schedule could be generated with current parameters")
)

// Share of the remaining daily budget each tier may take when its debt
// cannot be settled in one go.
var (
	overdueShare    = decimal.RequireFromString("0.8")
	urgentPayoff    = decimal.RequireFromString("0.9")
	urgentShare     = decimal.RequireFromString("0.6")
	normalFloor     = decimal.RequireFromString("0.4")
	lowFloor        = decimal.RequireFromString("0.2")
	defaultCurrency = "USD"
)

// amountPlaces is the number of decimals the backend stores for amounts
const amountPlaces = 3

type candidate struct {
	company  models.Company
	debt     decimal.Decimal
	daysLeft int
	priority models.Priority
	currency string
}

// CheckRange verifies the horizon holds between one and MaxHorizonDays days
func CheckRange(p Params) (int, error) {
	days := p.Days()
	if days <= 0 {
		return 0, fmt.Errorf("%w: end date must be after start date", ErrInvalidRange)
	}
	if days > MaxHorizonDays {
		return 0, fmt.Errorf("%w: maximum %d days allowed, got %d", ErrInvalidRange, MaxHorizonDays, days)
	}
	return days, nil
}

// Generate produces the day-by-day schedule for p. The result is a pure
// function of its arguments; now only feeds the due-date deltas.
//
// Unspent daily budget is not carried over to later days.
func Generate(companies []models.Company, p Params, now time.Time) ([]models.ScheduleEntry, error) {
	days, err := CheckRange(p)
	if err != nil {
		return nil, err
	}
	available := p.AvailableCash()
	if !available.IsPositive() {
		return nil, ErrNoCash
	}

	base := p.BaseCurrency
	if base == "" {
		base = defaultCurrency
	}
	cands := rank(companies, now, base)
	if len(cands) == 0 {
		return nil, ErrNoDebts
	}

	dailyBudget := available.Div(decimal.NewFromInt(int64(days)))
	ledger := make(map[int64]decimal.Decimal, len(cands))
	for _, c := range cands {
		ledger[c.company.ID] = c.debt
	}

	var schedule []models.ScheduleEntry
	for i := 0; i < days; i++ {
		date := p.StartDate.AddDays(i)
		dailyRemaining := dailyBudget
		daysLeftInHorizon := days - i

		for _, c := range cands {
			if !dailyRemaining.IsPositive() {
				break
			}
			remaining := ledger[c.company.ID]
			if !remaining.IsPositive() {
				continue
			}

			amount := paymentFor(c.priority, remaining, dailyRemaining, daysLeftInHorizon)
			if !amount.IsPositive() {
				continue
			}

			schedule = append(schedule, models.ScheduleEntry{
				Date:        date,
				CompanyID:   c.company.ID,
				CompanyName: c.company.Name,
				Amount:      amount,
				Priority:    c.priority,
				DaysLeft:    c.daysLeft,
				IsUrgent:    IsUrgent(c.daysLeft),
				Currency:    c.currency,
			})
			ledger[c.company.ID] = remaining.Sub(amount)
			dailyRemaining = dailyRemaining.Sub(amount)
		}
	}

	if len(schedule) == 0 {
		return nil, ErrEmptySchedule
	}
	return schedule, nil
}

// rank keeps the companies with debt and orders them by priority, then by
// larger debt first. Equal keys keep their input order.
func rank(companies []models.Company, now time.Time, base string) []candidate {
	cands := make([]candidate, 0, len(companies))
	for _, c := range companies {
		if !c.HasDebt() {
			continue
		}
		daysLeft := DaysLeft(c.EarliestDueDate, now)
		cands = append(cands, candidate{
			company:  c,
			debt:     c.TotalDebt,
			daysLeft: daysLeft,
			priority: Classify(daysLeft),
			currency: c.CurrencyOr(base),
		})
	}
	slices.SortStableFunc(cands, func(a, b candidate) int {
		if a.priority != b.priority {
			return cmp.Compare(a.priority, b.priority)
		}
		return b.debt.Cmp(a.debt)
	})
	return cands
}

// paymentFor sizes a single payment. The result never exceeds the remaining
// debt nor the remaining daily budget, and is truncated to the backend's
// amount precision so it can be persisted as is.
func paymentFor(priority models.Priority, remaining, dailyRemaining decimal.Decimal, daysLeftInHorizon int) decimal.Decimal {
	var amount decimal.Decimal
	switch priority {
	case models.PriorityOverdue:
		if remaining.LessThanOrEqual(dailyRemaining) {
			amount = remaining
		} else {
			amount = decimal.Min(remaining, dailyRemaining.Mul(overdueShare))
		}
	case models.PriorityUrgent:
		if remaining.LessThanOrEqual(dailyRemaining.Mul(urgentPayoff)) {
			amount = remaining
		} else {
			amount = decimal.Min(remaining, dailyRemaining.Mul(urgentShare))
		}
	case models.PriorityNormal:
		amount = spread(remaining, dailyRemaining, daysLeftInHorizon, normalFloor)
	default:
		amount = spread(remaining, dailyRemaining, daysLeftInHorizon, lowFloor)
	}
	return decimal.Min(amount, dailyRemaining).RoundDown(amountPlaces)
}

// spread targets an even payoff over the rest of the horizon, with a floor
// expressed as a share of the remaining daily budget.
func spread(remaining, dailyRemaining decimal.Decimal, daysLeftInHorizon int, floor decimal.Decimal) decimal.Decimal {
	target := remaining.Div(decimal.NewFromInt(int64(max(daysLeftInHorizon, 1))))
	return decimal.Min(remaining, decimal.Max(target, dailyRemaining.Mul(floor)))
}
