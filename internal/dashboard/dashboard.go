// Package dashboard keeps the presentation state of the finance dashboard in
// sync with the analytics backend.
//
// A Dashboard owns every state slice (summary, spending, trends, merchants,
// transactions, currency, chat history) and the workflows that mutate them:
// Refresh, Upload, Reset and Send. All methods are safe for concurrent use;
// network I/O never happens while the state lock is held.
package dashboard

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/apiclient"
	"github.com/dvloznov/finance-dashboard/internal/archive"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/metrics"
	"github.com/rs/zerolog"
)

// Backend is the subset of the analytics API the dashboard consumes.
// *apiclient.Client implements it.
type Backend interface {
	Summary(ctx context.Context) (domain.SummaryMetrics, error)
	Spending(ctx context.Context) (domain.SpendingByCategory, error)
	Trends(ctx context.Context) (domain.TrendsByMonth, error)
	Merchants(ctx context.Context) (domain.MerchantRanking, error)
	Transactions(ctx context.Context) ([]domain.Transaction, error)
	Reset(ctx context.Context) (domain.SummaryMetrics, error)
	Upload(ctx context.Context, filename string, content io.Reader) (domain.UploadResult, error)
	Chat(ctx context.Context, req apiclient.ChatRequest) (string, error)
}

var _ Backend = (*apiclient.Client)(nil)

// Tab is the active panel of the dashboard UI.
type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabChat      Tab = "chat"
	TabHistory   Tab = "history"
)

// Valid reports whether t names a known tab.
func (t Tab) Valid() bool {
	switch t {
	case TabDashboard, TabChat, TabHistory:
		return true
	}
	return false
}

// Options configures a Dashboard.
type Options struct {
	// SnapshotDelay is the debounce before a snapshot request fires.
	// Zero disables snapshots.
	SnapshotDelay time.Duration
	// Archiver, when set, receives a copy of every uploaded statement.
	Archiver archive.Archiver
	Logger   zerolog.Logger
}

// Dashboard is the presentation-state engine.
type Dashboard struct {
	backend  Backend
	archiver archive.Archiver
	metrics  *metrics.Metrics
	log      zerolog.Logger

	// ctx is the parent of background work (snapshots); cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	snapshots *Debouncer

	mu           sync.RWMutex
	summary      domain.SummaryMetrics
	spending     domain.SpendingByCategory
	trends       domain.TrendsByMonth
	merchants    domain.MerchantRanking
	transactions []domain.Transaction
	txVersion    uint64 // bumped on every wholesale replacement of transactions
	currency     string
	messages     []domain.Message
	session      uint64 // bumped by Reset; chat replies from an older session are dropped
	loading      bool
	uploading    bool
	chatLoading  bool
	errMsg       string
	selectedFile string
	tab          Tab
	snapshot     SnapshotStatus
}

// New creates a Dashboard with empty baseline state. Call Refresh for the initial load.
func New(backend Backend, opts Options) *Dashboard {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dashboard{
		backend:      backend,
		archiver:     opts.Archiver,
		metrics:      metrics.New(),
		log:          logger.Component(opts.Logger, "dashboard"),
		ctx:          ctx,
		cancel:       cancel,
		spending:     domain.SpendingByCategory{},
		trends:       domain.TrendsByMonth{},
		merchants:    domain.MerchantRanking{},
		transactions: []domain.Transaction{},
		currency:     domain.DefaultCurrency,
		messages:     []domain.Message{},
		tab:          TabDashboard,
	}
	if opts.SnapshotDelay > 0 {
		d.snapshots = NewDebouncer(opts.SnapshotDelay, d.runSnapshot)
	}
	return d
}

// Close cancels pending snapshots and background requests.
func (d *Dashboard) Close() {
	if d.snapshots != nil {
		d.snapshots.Cancel()
	}
	d.cancel()
}

// State is a point-in-time copy of everything the UI renders.
type State struct {
	Summary      domain.SummaryMetrics     `json:"summary"`
	Spending     domain.SpendingByCategory `json:"spending"`
	Trends       domain.TrendsByMonth      `json:"trends"`
	Merchants    domain.MerchantRanking    `json:"merchants"`
	Transactions []domain.Transaction      `json:"transactions"`
	Currency     string                    `json:"currency"`
	Messages     []domain.Message          `json:"messages"`
	Loading      bool                      `json:"loading"`
	Uploading    bool                      `json:"uploading"`
	ChatLoading  bool                      `json:"chat_loading"`
	Error        string                    `json:"error,omitempty"`
	SelectedFile string                    `json:"selected_file,omitempty"`
	Tab          Tab                       `json:"tab"`
	Snapshot     SnapshotStatus            `json:"snapshot"`
}

// State returns a copy of the current state. Mutating it does not affect the dashboard.
func (d *Dashboard) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()

	spending := make(domain.SpendingByCategory, len(d.spending))
	for k, v := range d.spending {
		spending[k] = v
	}
	trends := make(domain.TrendsByMonth, len(d.trends))
	for k, v := range d.trends {
		trends[k] = v
	}

	return State{
		Summary:      d.summary,
		Spending:     spending,
		Trends:       trends,
		Merchants:    append(domain.MerchantRanking{}, d.merchants...),
		Transactions: append([]domain.Transaction{}, d.transactions...),
		Currency:     d.currency,
		Messages:     append([]domain.Message{}, d.messages...),
		Loading:      d.loading,
		Uploading:    d.uploading,
		ChatLoading:  d.chatLoading,
		Error:        d.errMsg,
		SelectedFile: d.selectedFile,
		Tab:          d.tab,
		Snapshot:     d.snapshot,
	}
}

// Transactions returns the current list and its version. The version changes
// whenever the list is replaced, so it can key derived views.
func (d *Dashboard) Transactions() ([]domain.Transaction, uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.transactions, d.txVersion
}

// Messages returns a copy of the chat history.
func (d *Dashboard) Messages() []domain.Message {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.Message{}, d.messages...)
}

// Currency returns the display currency code.
func (d *Dashboard) Currency() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currency
}

// Error returns the current top-level error message, or "".
func (d *Dashboard) Error() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.errMsg
}

// DismissError clears the top-level error.
func (d *Dashboard) DismissError() {
	d.mu.Lock()
	d.errMsg = ""
	d.mu.Unlock()
}

// SelectFile records the file chosen in the upload control.
func (d *Dashboard) SelectFile(name string) {
	d.mu.Lock()
	d.selectedFile = name
	d.mu.Unlock()
}

// SetTab switches the active panel. Opening the history tab schedules a snapshot.
func (d *Dashboard) SetTab(tab Tab) {
	d.mu.Lock()
	d.tab = tab
	hasData := len(d.transactions) > 0
	d.mu.Unlock()

	if tab == TabHistory && hasData {
		d.scheduleSnapshot()
	}
}

// replaceTransactionsLocked swaps in a new list. Callers hold d.mu.
// When deriveCurrency is set, the first element's currency tag (if any) becomes the display currency.
func (d *Dashboard) replaceTransactionsLocked(list []domain.Transaction, deriveCurrency bool) {
	if list == nil {
		list = []domain.Transaction{}
	}
	d.transactions = list
	d.txVersion++
	if deriveCurrency && len(list) > 0 && list[0].Currency != "" {
		d.currency = list[0].Currency
	}
	d.metrics.Transactions.Set(float64(len(list)))
}

func (d *Dashboard) setLoading(v bool) {
	d.mu.Lock()
	d.loading = v
	d.mu.Unlock()
}
