package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show income, expense and net balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			summary, err := client.Summary(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch summary: %w", err)
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Total income:\t%s\n", summary.TotalIncome.StringFixed(2))
			fmt.Fprintf(w, "Total expense:\t%s\n", summary.TotalExpense.StringFixed(2))
			fmt.Fprintf(w, "Net balance:\t%s\n", summary.NetBalance.StringFixed(2))
			fmt.Fprintf(w, "Transactions:\t%d\n", summary.TransactionCount)
			return w.Flush()
		},
	}
}

func newSpendingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "spending",
		Short: "Show spending by category, largest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			spending, err := client.Spending(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch spending: %w", err)
			}
			rows := spending.Sorted()
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No spending data.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tAMOUNT")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\n", r.Category, r.Amount.StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func newTrendsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Show monthly income and expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			trends, err := client.Trends(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch trends: %w", err)
			}
			months := trends.Months()
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), months)
			}

			if len(months) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trend data.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSE")
			for _, m := range months {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.Month, m.Income.StringFixed(2), m.Expense.StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func newMerchantsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merchants",
		Short: "Show top merchants with their share of the latest month's expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			merchants, err := client.Merchants(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch merchants: %w", err)
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), merchants)
			}

			if len(merchants) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No merchant data.")
				return nil
			}

			// Shares are optional; a trends failure only blanks that column.
			trends, err := client.Trends(cmd.Context())
			if err != nil {
				trends = domain.TrendsByMonth{}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tMERCHANT\tAMOUNT\tSHARE")
			for i, m := range merchants {
				share := "-"
				if pct, ok := domain.MerchantShare(m, trends); ok {
					share = pct.StringFixed(1) + "%"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, m.Name, m.Value.StringFixed(2), share)
			}
			return w.Flush()
		},
	}
}
