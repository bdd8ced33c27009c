package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/Dan9191/market-planner/internal/models"
	"github.com/Dan9191/market-planner/internal/planner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSchedule(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	due := models.NewDate(2024, 1, 3)
	companies := []models.Company{
		{ID: 1, Name: "Acme", TotalDebt: decimal.NewFromInt(50), EarliestDueDate: &due},
		{ID: 2, Name: "Globex", TotalDebt: decimal.NewFromInt(40), PrimaryCurrency: "EUR"},
	}
	params := planner.Params{
		ShopCash:            decimal.NewFromInt(1000),
		SafetyMarginPercent: decimal.Zero,
		StartDate:           models.NewDate(2024, 1, 1),
		EndDate:             models.NewDate(2024, 1, 3),
		BaseCurrency:        "USD",
	}
	entries, err := planner.Generate(companies, params, now)
	require.NoError(t, err)

	draft := &models.Draft{
		StartDate:     params.StartDate,
		EndDate:       params.EndDate,
		AvailableCash: params.AvailableCash(),
		DailyBudget:   params.DailyBudget(),
		BaseCurrency:  "USD",
		Entries:       entries,
	}

	var out bytes.Buffer
	require.NoError(t, renderSchedule(&out, draft))

	text := out.String()
	assert.Contains(t, text, "2024-01-01 .. 2024-01-03")
	assert.Contains(t, text, "Acme")
	assert.Contains(t, text, "Globex")
	assert.Contains(t, text, "50.00")
	assert.Contains(t, text, "EUR")
	assert.Contains(t, text, "to 2 companies")
}

func TestPrintValidation(t *testing.T) {
	var out bytes.Buffer
	printValidation(&out, &planner.ValidationError{Fields: map[string]string{
		"startDate":    "Start date is required",
		"safetyMargin": "Safety margin must be between 0 and 100",
	}})

	text := out.String()
	assert.Contains(t, text, "Start date is required")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("safetyMargin")), bytes.Index(out.Bytes(), []byte("startDate")))
}
