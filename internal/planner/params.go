package planner

import (
	"math"

	"github.com/Dan9191/market-planner/internal/models"
	"github.com/shopspring/decimal"
)

// MaxHorizonDays bounds the length of a schedule
const MaxHorizonDays = 365

var hundred = decimal.NewFromInt(100)

// Params are the validated budget parameters of a run
type Params struct {
	ShopCash            decimal.Decimal
	SafetyMarginPercent decimal.Decimal
	StartDate           models.Date
	EndDate             models.Date
	BaseCurrency        string
}

// AvailableCash is the cash left after withholding the safety margin
func (p Params) AvailableCash() decimal.Decimal {
	keep := decimal.NewFromInt(1).Sub(p.SafetyMarginPercent.Div(hundred))
	return p.ShopCash.Mul(keep)
}

// Days is the number of days in the horizon, rounded up
func (p Params) Days() int {
	return int(math.Ceil(p.EndDate.Sub(p.StartDate.Time).Hours() / 24))
}

// DailyBudget spreads the available cash evenly across the horizon.
// It is zero when the horizon is empty.
func (p Params) DailyBudget() decimal.Decimal {
	days := p.Days()
	if days <= 0 {
		return decimal.Zero
	}
	return p.AvailableCash().Div(decimal.NewFromInt(int64(days)))
}
