package dashboard

import (
	"context"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"golang.org/x/sync/errgroup"
)

// AnalyticsView names one of the independently fetched backend views.
type AnalyticsView string

const (
	SummaryView      AnalyticsView = "summary"
	SpendingView     AnalyticsView = "spending"
	TrendsView       AnalyticsView = "trends"
	MerchantsView    AnalyticsView = "merchants"
	TransactionsView AnalyticsView = "transactions"
)

// AllViews lists the views refreshed by Refresh, in request order.
var AllViews = []AnalyticsView{SummaryView, SpendingView, TrendsView, MerchantsView, TransactionsView}

// RefreshReport tells which views failed during a Refresh. Failed views kept
// their previous state.
type RefreshReport struct {
	Failures map[AnalyticsView]error
}

// OK reports whether every view was refreshed.
func (r RefreshReport) OK() bool {
	return len(r.Failures) == 0
}

// Refresh fetches all five analytics views concurrently and applies each
// successful result to its own state slice as soon as it arrives. A failed
// view is logged and keeps its previous value; it never blocks or rolls back
// the others. Loading is true for the duration of the call.
func (d *Dashboard) Refresh(ctx context.Context) RefreshReport {
	d.setLoading(true)
	defer d.setLoading(false)

	report := RefreshReport{Failures: map[AnalyticsView]error{}}
	failures := make(chan viewFailure, len(AllViews))

	// Tasks never return an error so one failure cannot cancel its siblings.
	var g errgroup.Group
	g.Go(func() error {
		fetchView(ctx, d, SummaryView, failures, d.backend.Summary, func(s domain.SummaryMetrics) {
			d.summary = s
		})
		return nil
	})
	g.Go(func() error {
		fetchView(ctx, d, SpendingView, failures, d.backend.Spending, func(s domain.SpendingByCategory) {
			if s == nil {
				s = domain.SpendingByCategory{}
			}
			d.spending = s
		})
		return nil
	})
	g.Go(func() error {
		fetchView(ctx, d, TrendsView, failures, d.backend.Trends, func(t domain.TrendsByMonth) {
			if t == nil {
				t = domain.TrendsByMonth{}
			}
			d.trends = t
		})
		return nil
	})
	g.Go(func() error {
		fetchView(ctx, d, MerchantsView, failures, d.backend.Merchants, func(m domain.MerchantRanking) {
			if m == nil {
				m = domain.MerchantRanking{}
			}
			d.merchants = m
		})
		return nil
	})
	g.Go(func() error {
		applied := fetchView(ctx, d, TransactionsView, failures, d.backend.Transactions, func(list []domain.Transaction) {
			d.replaceTransactionsLocked(list, true)
		})
		if applied {
			d.transactionsChanged()
		}
		return nil
	})
	_ = g.Wait()
	close(failures)

	for f := range failures {
		report.Failures[f.view] = f.err
	}

	if report.OK() {
		d.log.Info().Msg("Analytics refreshed")
	} else {
		d.log.Warn().Int("failed_views", len(report.Failures)).Msg("Analytics refreshed with failures")
	}
	return report
}

type viewFailure struct {
	view AnalyticsView
	err  error
}

// fetchView runs one fetch and, on success, applies the result under the
// state lock. It reports whether the result was applied.
func fetchView[T any](ctx context.Context, d *Dashboard, view AnalyticsView, failures chan<- viewFailure, fetch func(context.Context) (T, error), apply func(T)) bool {
	start := time.Now()
	result, err := fetch(ctx)
	d.metrics.ObserveFetch(string(view), err, time.Since(start))

	if err != nil {
		d.log.Error().Err(err).Str("view", string(view)).Msg("Failed to fetch analytics view")
		failures <- viewFailure{view: view, err: err}
		return false
	}

	d.mu.Lock()
	apply(result)
	d.mu.Unlock()
	return true
}
