package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/apiclient"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/spf13/cobra"
)

func newUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a bank statement (PDF or CSV)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			client, err := opts.client()
			if err != nil {
				return err
			}

			result, err := client.Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return errors.New(dashboard.UploadErrorMessage(err))
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded %s: %d transactions\n", filepath.Base(args[0]), len(result.Transactions))
			if md := result.Metadata; md != nil {
				if md.BankName != "" {
					fmt.Fprintf(out, "Bank: %s\n", md.BankName)
				}
				if md.Currency != "" {
					fmt.Fprintf(out, "Currency: %s\n", md.Currency)
				}
				if md.DateRangeStart != nil && md.DateRangeEnd != nil {
					fmt.Fprintf(out, "Period: %s to %s\n", md.DateRangeStart, md.DateRangeEnd)
				}
			}
			return nil
		},
	}
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all uploaded data from the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to reset without --yes")
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			summary, err := client.Reset(cmd.Context())
			if err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data has been reset.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deletion of all data")
	return cmd
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var chatContext string

	cmd := &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Ask the financial assistant a question",
		Long: `Ask the financial assistant a question about the uploaded transactions.

Examples:
  dashctl chat "What did I spend most on last month?"
  dashctl chat --context TRANSACTIONS_PAGE summarise my transactions`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return errors.New("message must not be empty")
			}
			panel := domain.ChatContext(chatContext)
			if !panel.Valid() {
				return fmt.Errorf("invalid --context %q", chatContext)
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			reply, err := client.Chat(cmd.Context(), apiclient.ChatRequest{
				Message: message,
				History: []apiclient.HistoryEntry{},
				Context: panel,
			})
			if err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"response": reply})
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&chatContext, "context", string(domain.ContextFinancialAI), "Panel context: HOME_PAGE, TRANSACTIONS_PAGE or FINANCIAL_AI_PAGE")
	return cmd
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check analytics backend health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			status, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("backend at %s is unreachable: %w", client.BaseURL(), err)
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backend Status: %s\n", status.Status)
			if status.Message != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Message: %s\n", status.Message)
			}
			return nil
		},
	}
}
