package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/Dan9191/market-planner/internal/models"
	"github.com/Dan9191/market-planner/internal/planner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagStart  string
	flagEnd    string
	flagMargin string
	flagCash   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print a payment schedule without storing it",
	RunE:  runGenerate,
}

func init() {
	today := time.Now().Format(models.DateLayout)
	monthAhead := time.Now().AddDate(0, 0, 30).Format(models.DateLayout)

	generateCmd.Flags().StringVar(&flagStart, "start", today, "First payment date (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&flagEnd, "end", monthAhead, "End of the planning horizon (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&flagMargin, "margin", "10", "Safety margin percent kept in cash")
	generateCmd.Flags().StringVar(&flagCash, "cash", "", "Cash on hand (default: backend shop money)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, client, err := loadClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.BackendTimeout)
	defer cancel()

	companies, err := client.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch companies: %w", err)
	}
	var cash decimal.Decimal
	if flagCash == "" {
		money, err := client.GetShopMoney(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch shop money: %w", err)
		}
		cash = money.CurrentMoney
	}

	now := time.Now()
	req := planner.Request{ShopCash: flagCash, SafetyMargin: flagMargin, StartDate: flagStart, EndDate: flagEnd}
	params, err := planner.Validate(req, companies, cash, now, cfg.BaseCurrency)
	if err != nil {
		var verr *planner.ValidationError
		if errors.As(err, &verr) {
			printValidation(os.Stderr, verr)
		}
		return err
	}

	entries, err := planner.Generate(companies, params, now)
	if err != nil {
		return err
	}

	draft := &models.Draft{
		ID:            uuid.New(),
		GeneratedAt:   now,
		StartDate:     params.StartDate,
		EndDate:       params.EndDate,
		ShopCash:      params.ShopCash,
		SafetyMargin:  params.SafetyMarginPercent,
		AvailableCash: params.AvailableCash(),
		DailyBudget:   params.DailyBudget(),
		BaseCurrency:  params.BaseCurrency,
		Entries:       entries,
	}
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"draft":   draft,
			"days":    planner.GroupByDate(entries),
			"summary": planner.Summarize(draft),
		})
	}
	return renderSchedule(os.Stdout, draft)
}

func printValidation(w io.Writer, verr *planner.ValidationError) {
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(w, "Please fix the validation errors before generating schedule:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %-13s %s\n", k, verr.Fields[k])
	}
}

// renderSchedule prints the draft day by day, with per-currency subtotals
// and the run summary.
func renderSchedule(w io.Writer, d *models.Draft) error {
	summary := planner.Summarize(d)

	fmt.Fprintf(w, "\n  PAYMENT SCHEDULE  %s .. %s\n\n", d.StartDate, d.EndDate)
	fmt.Fprintf(w, "  Available cash  %s %s\n", d.AvailableCash.StringFixed(2), d.BaseCurrency)
	fmt.Fprintf(w, "  Daily budget    %s %s\n\n", d.DailyBudget.StringFixed(2), d.BaseCurrency)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tCompany\tPriority\tDays left\tAmount\tCurrency\t")
	for _, day := range planner.GroupByDate(d.Entries) {
		for _, e := range day.Entries {
			daysLeft := fmt.Sprint(e.DaysLeft)
			if e.DaysLeft == planner.NoDueDate {
				daysLeft = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
				e.Date, e.CompanyName, e.Priority, daysLeft, e.Amount.StringFixed(2), e.Currency)
		}
		for _, cur := range sortedKeys(day.Totals) {
			fmt.Fprintf(tw, "\t\t\t%s total\t%s\t%s\t\n", day.Date, day.Totals[cur].StringFixed(2), cur)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n  %d payments over %d days to %d companies\n", summary.Entries, summary.Days, summary.CompaniesCovered)
	for _, cur := range sortedKeys(summary.TotalByCurrency) {
		fmt.Fprintf(w, "  Total %s %s\n", summary.TotalByCurrency[cur].StringFixed(2), cur)
	}
	fmt.Fprintf(w, "  Utilization %s%% of available %s\n", summary.UtilizationRate.Shift(2).StringFixed(2), d.BaseCurrency)
	return nil
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
