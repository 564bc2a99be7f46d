package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/spf13/cobra"
)

type transactionsOptions struct {
	search   string
	txType   string
	sort     string
	page     int
	pageSize int
	limit    int
}

func newTransactionsCmd(opts *rootOptions) *cobra.Command {
	txOpts := &transactionsOptions{}

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions with search, filter, sort and paging",
		Long: `List transactions with search, filter, sort and paging.

Examples:
  # Newest 25 transactions
  dashctl transactions

  # Second page of debits mentioning "tesco", oldest first
  dashctl transactions --search tesco --type debit --sort asc --page 2

  # The five most recent transactions
  dashctl transactions --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := dashboard.Query{
				Search:   txOpts.search,
				Type:     dashboard.TypeFilter(txOpts.txType),
				Sort:     dashboard.SortOrder(txOpts.sort),
				Page:     txOpts.page,
				PageSize: txOpts.pageSize,
				Limit:    txOpts.limit,
			}
			if !q.Type.Valid() {
				return fmt.Errorf("invalid --type %q: must be all, credit or debit", txOpts.txType)
			}
			if !q.Sort.Valid() {
				return fmt.Errorf("invalid --sort %q: must be asc or desc", txOpts.sort)
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			list, err := client.Transactions(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch transactions: %w", err)
			}
			view := dashboard.Apply(list, q)
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}

			if len(view.Rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDESCRIPTION\tCATEGORY\tTYPE\tAMOUNT")
			for _, t := range view.Rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Date, t.Description, t.Category, t.Type.Normalize(), t.Amount.StringFixed(2))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if view.Limit > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d matching\n", len(view.Rows), view.Total)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d matching)\n", view.Page, view.TotalPages, view.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&txOpts.search, "search", "", "Case-insensitive text matched against description and category")
	cmd.Flags().StringVar(&txOpts.txType, "type", string(dashboard.FilterAll), "Transaction type: all, credit or debit")
	cmd.Flags().StringVar(&txOpts.sort, "sort", string(dashboard.SortDesc), "Date order: desc or asc")
	cmd.Flags().IntVar(&txOpts.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&txOpts.pageSize, "page-size", 25, "Rows per page")
	cmd.Flags().IntVar(&txOpts.limit, "limit", 0, "Show only the first N rows, without paging")

	return cmd
}
