// Package main implements dashctl, a command-line client for the statement analytics backend.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/apiclient"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/spf13/cobra"
)

// version information
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	baseURL  string
	envFile  string
	timeout  time.Duration
	asJSON   bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dashctl",
		Short: "CLI for the statement analytics backend",
		Long: `dashctl queries and manages the statement analytics backend that powers
the finance dashboard: summaries, spending breakdowns, transactions, uploads
and the financial assistant.

The backend URL comes from --base-url, else FINANCE_API_BASE_URL (read from
the environment or a .env file).`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Analytics backend URL (overrides FINANCE_API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional .env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "Request timeout (default FINANCE_API_TIMEOUT or 30s)")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Output results as JSON")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for request tracing")

	cmd.AddCommand(
		newSummaryCmd(opts),
		newSpendingCmd(opts),
		newTrendsCmd(opts),
		newMerchantsCmd(opts),
		newTransactionsCmd(opts),
		newUploadCmd(opts),
		newResetCmd(opts),
		newChatCmd(opts),
		newHealthCmd(opts),
	)
	return cmd
}

// client builds the analytics client from flags, falling back to config.
func (o *rootOptions) client() (*apiclient.Client, error) {
	baseURL := o.baseURL
	timeout := o.timeout

	if baseURL == "" {
		cfg, err := config.Load(o.envFile)
		if err != nil {
			return nil, fmt.Errorf("no backend configured (use --base-url or set %s): %w", config.EnvBaseURL, err)
		}
		baseURL = cfg.BaseURL
		if timeout == 0 {
			timeout = cfg.Timeout
		}
	}

	log := logger.NewWithLevel(o.logLevel)
	return apiclient.New(baseURL,
		apiclient.WithTimeout(timeout),
		apiclient.WithLogger(logger.Component(log, "apiclient")),
	)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
