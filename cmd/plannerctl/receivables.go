package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/Dan9191/market-planner/internal/models"
	"github.com/Dan9191/market-planner/internal/planner"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var receivablesCmd = &cobra.Command{
	Use:   "receivables",
	Short: "List customers who owe the shop money, soonest due first",
	RunE:  runReceivables,
}

func init() {
	rootCmd.AddCommand(receivablesCmd)
}

func runReceivables(cmd *cobra.Command, _ []string) error {
	cfg, client, err := loadClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.BackendTimeout)
	defer cancel()

	customers, err := client.ListCustomers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch customers: %w", err)
	}
	owing := receivables(customers, time.Now())

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(owing)
	}
	if len(owing) == 0 {
		fmt.Println("\n  No customer debt outstanding.")
		return nil
	}
	return renderReceivables(os.Stdout, owing, cfg.BaseCurrency, time.Now())
}

// receivables keeps customers with debt, ordered by days until due and then
// by larger debt. Customers without a due date come last.
func receivables(customers []models.Customer, now time.Time) []models.Customer {
	var owing []models.Customer
	for _, c := range customers {
		if c.TotalDebt.IsPositive() {
			owing = append(owing, c)
		}
	}
	slices.SortStableFunc(owing, func(a, b models.Customer) int {
		da, db := planner.DaysLeft(a.EarliestDueDate, now), planner.DaysLeft(b.EarliestDueDate, now)
		if da != db {
			return da - db
		}
		return b.TotalDebt.Cmp(a.TotalDebt)
	})
	return owing
}

func renderReceivables(w io.Writer, owing []models.Customer, currency string, now time.Time) error {
	total := decimal.Zero
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Customer\tDue\tDays left\tOwed\tReputation")
	for _, c := range owing {
		due, daysLeft := "-", "-"
		if c.EarliestDueDate != nil {
			due = c.EarliestDueDate.String()
			daysLeft = fmt.Sprint(planner.DaysLeft(c.EarliestDueDate, now))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Name, due, daysLeft, c.TotalDebt.StringFixed(2), c.Reputation)
		total = total.Add(c.TotalDebt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n  %d customers owe %s %s\n", len(owing), total.StringFixed(2), currency)
	return nil
}
