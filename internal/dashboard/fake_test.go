package dashboard

import (
	"context"
	"io"
	"sync"

	"github.com/dvloznov/finance-dashboard/internal/apiclient"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// fakeBackend is a Backend whose behaviour is set per test through Func fields.
// Unset funcs return empty successful responses.
type fakeBackend struct {
	SummaryFunc      func(ctx context.Context) (domain.SummaryMetrics, error)
	SpendingFunc     func(ctx context.Context) (domain.SpendingByCategory, error)
	TrendsFunc       func(ctx context.Context) (domain.TrendsByMonth, error)
	MerchantsFunc    func(ctx context.Context) (domain.MerchantRanking, error)
	TransactionsFunc func(ctx context.Context) ([]domain.Transaction, error)
	ResetFunc        func(ctx context.Context) (domain.SummaryMetrics, error)
	UploadFunc       func(ctx context.Context, filename string, content io.Reader) (domain.UploadResult, error)
	ChatFunc         func(ctx context.Context, req apiclient.ChatRequest) (string, error)

	mu       sync.Mutex
	calls    map[string]int
	chatReqs []apiclient.ChatRequest
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) chatRequests() []apiclient.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiclient.ChatRequest{}, f.chatReqs...)
}

func (f *fakeBackend) Summary(ctx context.Context) (domain.SummaryMetrics, error) {
	f.record("summary")
	if f.SummaryFunc != nil {
		return f.SummaryFunc(ctx)
	}
	return domain.SummaryMetrics{}, nil
}

func (f *fakeBackend) Spending(ctx context.Context) (domain.SpendingByCategory, error) {
	f.record("spending")
	if f.SpendingFunc != nil {
		return f.SpendingFunc(ctx)
	}
	return domain.SpendingByCategory{}, nil
}

func (f *fakeBackend) Trends(ctx context.Context) (domain.TrendsByMonth, error) {
	f.record("trends")
	if f.TrendsFunc != nil {
		return f.TrendsFunc(ctx)
	}
	return domain.TrendsByMonth{}, nil
}

func (f *fakeBackend) Merchants(ctx context.Context) (domain.MerchantRanking, error) {
	f.record("merchants")
	if f.MerchantsFunc != nil {
		return f.MerchantsFunc(ctx)
	}
	return domain.MerchantRanking{}, nil
}

func (f *fakeBackend) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	f.record("transactions")
	if f.TransactionsFunc != nil {
		return f.TransactionsFunc(ctx)
	}
	return []domain.Transaction{}, nil
}

func (f *fakeBackend) Reset(ctx context.Context) (domain.SummaryMetrics, error) {
	f.record("reset")
	if f.ResetFunc != nil {
		return f.ResetFunc(ctx)
	}
	return domain.SummaryMetrics{}, nil
}

func (f *fakeBackend) Upload(ctx context.Context, filename string, content io.Reader) (domain.UploadResult, error) {
	f.record("upload")
	if f.UploadFunc != nil {
		return f.UploadFunc(ctx, filename, content)
	}
	return domain.UploadResult{Transactions: []domain.Transaction{}}, nil
}

func (f *fakeBackend) Chat(ctx context.Context, req apiclient.ChatRequest) (string, error) {
	f.record("chat")
	f.mu.Lock()
	f.chatReqs = append(f.chatReqs, req)
	f.mu.Unlock()
	if f.ChatFunc != nil {
		return f.ChatFunc(ctx, req)
	}
	return "ok", nil
}

func tx(date domain.Date, description string, amount int64, typ domain.TransactionType, category string) domain.Transaction {
	return domain.Transaction{
		Date:        date,
		Description: description,
		Amount:      decimal.NewFromInt(amount),
		Type:        typ,
		Category:    category,
	}
}

// newTestDashboard builds a dashboard with snapshots disabled.
func newTestDashboard(b Backend) *Dashboard {
	return New(b, Options{})
}
