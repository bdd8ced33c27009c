package planner

import (
	"strconv"

	"github.com/Dan9191/market-planner/internal/models"
	"github.com/shopspring/decimal"
)

// GroupByDate buckets entries per day, keeping the order in which they were
// generated, and totals each bucket per currency.
func GroupByDate(entries []models.ScheduleEntry) []models.DaySchedule {
	var days []models.DaySchedule
	index := make(map[string]int)
	for _, e := range entries {
		key := e.Date.String()
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, models.DaySchedule{
				Date:   e.Date,
				Totals: make(map[string]decimal.Decimal),
			})
		}
		days[i].Entries = append(days[i].Entries, e)
		days[i].Totals[e.Currency] = days[i].Totals[e.Currency].Add(e.Amount)
	}
	return days
}

// TotalsByCurrency sums entry amounts separately for each currency
func TotalsByCurrency(entries []models.ScheduleEntry) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		totals[e.Currency] = totals[e.Currency].Add(e.Amount)
	}
	return totals
}

// Summarize computes aggregate figures for a draft. The utilization rate
// only counts entries in the draft's base currency, since available cash is
// expressed in it.
func Summarize(d *models.Draft) models.ScheduleSummary {
	s := models.ScheduleSummary{
		Entries:         len(d.Entries),
		TotalByCurrency: TotalsByCurrency(d.Entries),
		PaidByCurrency:  make(map[string]decimal.Decimal),
		EntriesPriority: make(map[string]int),
		AvailableCash:   d.AvailableCash,
		DailyBudget:     d.DailyBudget,
		BaseCurrency:    d.BaseCurrency,
		UtilizationRate: decimal.Zero,
	}

	dates := make(map[string]struct{})
	companies := make(map[int64]struct{})
	for _, e := range d.Entries {
		dates[e.Date.String()] = struct{}{}
		companies[e.CompanyID] = struct{}{}
		s.EntriesPriority[strconv.Itoa(int(e.Priority))+"-"+e.Priority.String()]++
		if e.IsPaid {
			s.PaidByCurrency[e.Currency] = s.PaidByCurrency[e.Currency].Add(e.Amount)
		}
	}
	s.Days = len(dates)
	s.CompaniesCovered = len(companies)

	if d.AvailableCash.IsPositive() {
		s.UtilizationRate = s.TotalByCurrency[d.BaseCurrency].Div(d.AvailableCash).Round(4)
	}
	return s
}
