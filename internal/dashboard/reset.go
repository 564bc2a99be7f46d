package dashboard

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// Reset asks the backend to clear all data. On success the summary becomes
// the server's empty summary and transactions, messages, spending and trends
// are cleared locally with the currency back at USD. On failure the error is
// surfaced and existing data is kept. Loading is true for the duration.
func (d *Dashboard) Reset(ctx context.Context) error {
	d.mu.Lock()
	d.loading = true
	d.errMsg = ""
	d.mu.Unlock()
	defer d.setLoading(false)

	summary, err := d.backend.Reset(ctx)
	if err != nil {
		d.mu.Lock()
		d.errMsg = err.Error()
		d.mu.Unlock()

		d.metrics.ObserveWorkflow("reset", err)
		d.log.Error().Err(err).Msg("Reset failed")
		return fmt.Errorf("Reset: %w", err)
	}

	if d.snapshots != nil {
		d.snapshots.Cancel()
	}

	d.mu.Lock()
	d.summary = summary
	d.replaceTransactionsLocked([]domain.Transaction{}, false)
	d.messages = []domain.Message{}
	d.session++
	d.spending = domain.SpendingByCategory{}
	d.trends = domain.TrendsByMonth{}
	d.currency = domain.DefaultCurrency
	d.snapshot = SnapshotStatus{}
	d.mu.Unlock()

	d.metrics.ObserveWorkflow("reset", nil)
	d.log.Info().Msg("Dashboard data reset")
	return nil
}
