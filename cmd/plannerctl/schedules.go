package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var flagUnpaid bool

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "List payment schedules stored in the backend",
	RunE:  runSchedules,
}

func init() {
	schedulesCmd.Flags().BoolVar(&flagUnpaid, "unpaid", false, "Only show unpaid rows")
	rootCmd.AddCommand(schedulesCmd)
}

func runSchedules(cmd *cobra.Command, _ []string) error {
	cfg, client, err := loadClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.BackendTimeout)
	defer cancel()

	rows, err := client.ListPaymentSchedules(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch schedules: %w", err)
	}
	if flagUnpaid {
		unpaid := rows[:0]
		for _, r := range rows {
			if !r.IsPaid {
				unpaid = append(unpaid, r)
			}
		}
		rows = unpaid
	}

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(rows)
	}
	if len(rows) == 0 {
		fmt.Println("\n  No payment schedules found.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDate\tPayee\tScheduled\tPaid\tCurrency")
	for _, r := range rows {
		paid := "-"
		if r.IsPaid && r.ActualAmount.Valid {
			paid = r.ActualAmount.Decimal.StringFixed(2)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.ScheduledDate, r.EntityName, r.ScheduledAmount.StringFixed(2), paid, r.Currency)
	}
	return tw.Flush()
}
