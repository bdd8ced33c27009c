package planner

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/Dan9191/market-planner/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Request is the raw generation input as entered by the user
type Request struct {
	ShopCash     string `json:"shopCash" validate:"omitempty,numeric"`
	SafetyMargin string `json:"safetyMargin" validate:"required,numeric"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// ValidationError carries field-keyed messages for rejected input
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field was rejected
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages holds the user-facing message per field and failed tag
var fieldMessages = map[string]map[string]string{
	"startDate": {
		"required": "Start date is required",
		"datetime": "Invalid start date",
	},
	"endDate": {
		"required": "End date is required",
		"datetime": "Invalid end date",
	},
	"safetyMargin": {
		"required": "Safety margin must be between 0 and 100",
		"numeric":  "Safety margin must be between 0 and 100",
	},
	"shopCash": {
		"numeric": "Shop cash must be a number",
	},
}

// Validate checks req against the companies and the cash on hand and
// returns the parsed parameters. shopCash is used when req.ShopCash is empty.
// now anchors the "start date in the past" check.
func Validate(req Request, companies []models.Company, shopCash decimal.Decimal, now time.Time, baseCurrency string) (Params, error) {
	fields := make(map[string]string)

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Params{}, err
		}
		for _, fe := range verrs {
			msg, ok := fieldMessages[fe.Field()][fe.Tag()]
			if !ok {
				msg = "Invalid value"
			}
			fields[fe.Field()] = msg
		}
	}

	params := Params{ShopCash: shopCash, BaseCurrency: baseCurrency}

	if _, bad := fields["shopCash"]; !bad && req.ShopCash != "" {
		cash, err := decimal.NewFromString(req.ShopCash)
		if err != nil {
			fields["shopCash"] = fieldMessages["shopCash"]["numeric"]
		}
		params.ShopCash = cash
	}

	start, startErr := models.ParseDate(req.StartDate)
	end, endErr := models.ParseDate(req.EndDate)
	if _, bad := fields["startDate"]; !bad && startErr == nil {
		if start.Before(models.DateOf(now).Time) {
			fields["startDate"] = "Start date cannot be in the past"
		}
		params.StartDate = start
	}
	if _, bad := fields["endDate"]; !bad && endErr == nil {
		if startErr == nil && !end.After(start.Time) {
			fields["endDate"] = "End date must be after start date"
		}
		params.EndDate = end
	}

	if _, bad := fields["safetyMargin"]; !bad {
		margin, err := decimal.NewFromString(req.SafetyMargin)
		if err != nil || margin.IsNegative() || margin.GreaterThan(hundred) {
			fields["safetyMargin"] = "Safety margin must be between 0 and 100"
		} else {
			params.SafetyMarginPercent = margin
		}
	}

	if countWithDebt(companies) == 0 {
		fields["companies"] = "No companies with debt found"
	}

	if _, bad := fields["safetyMargin"]; !bad && !params.AvailableCash().IsPositive() {
		fields["money"] = "No available money for payments after safety margin"
	}

	if len(fields) > 0 {
		return Params{}, &ValidationError{Fields: fields}
	}
	return params, nil
}

func countWithDebt(companies []models.Company) int {
	n := 0
	for _, c := range companies {
		if c.HasDebt() {
			n++
		}
	}
	return n
}
