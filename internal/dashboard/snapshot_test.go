package dashboard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/apiclient"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CollapsesTriggers(t *testing.T) {
	var calls atomic.Int32
	deb := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		deb.Trigger()
	}
	assert.True(t, deb.Pending())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, deb.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	var calls atomic.Int32
	deb := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

	assert.False(t, deb.Cancel(), "nothing pending yet")
	deb.Trigger()
	assert.True(t, deb.Cancel())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func snapshotBackend(reply string) *fakeBackend {
	return &fakeBackend{
		TransactionsFunc: func(ctx context.Context) ([]domain.Transaction, error) {
			return []domain.Transaction{tx(domain.NewDate(2024, 1, 2), "Cafe", 3, domain.Debit, "")}, nil
		},
		ChatFunc: func(ctx context.Context, req apiclient.ChatRequest) (string, error) {
			return reply, nil
		},
	}
}

func TestSnapshot_RunsAfterRefresh(t *testing.T) {
	b := snapshotBackend("Mostly coffee this month.")
	d := New(b, Options{SnapshotDelay: 10 * time.Millisecond})
	defer d.Close()

	d.Refresh(context.Background())

	require.Eventually(t, func() bool {
		return d.Snapshot().State == SnapshotCompleted
	}, time.Second, 5*time.Millisecond)

	snap := d.Snapshot()
	assert.Equal(t, "Mostly coffee this month.", snap.Content)
	assert.NotEmpty(t, snap.ID)
	assert.NotNil(t, snap.CompletedAt)

	reqs := b.chatRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, SnapshotPrompt, reqs[0].Message)
	assert.Empty(t, reqs[0].History)
	assert.Equal(t, domain.ContextTransactions, reqs[0].Context)
	assert.Empty(t, d.Messages(), "snapshots never touch the chat history")
}

func TestSnapshot_EmptyListDoesNotSchedule(t *testing.T) {
	b := &fakeBackend{}
	d := New(b, Options{SnapshotDelay: 10 * time.Millisecond})
	defer d.Close()

	d.Refresh(context.Background())
	d.SetTab(TabHistory)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, b.count("chat"))
	assert.Equal(t, SnapshotIdle, d.Snapshot().State)
}

func TestSnapshot_HistoryTabSchedules(t *testing.T) {
	b := snapshotBackend("summary")
	d := New(b, Options{SnapshotDelay: 10 * time.Millisecond})
	defer d.Close()

	d.Refresh(context.Background())
	require.Eventually(t, func() bool { return b.count("chat") == 1 }, time.Second, 5*time.Millisecond)

	d.SetTab(TabHistory)

	assert.Equal(t, TabHistory, d.State().Tab)
	assert.Eventually(t, func() bool { return b.count("chat") == 2 }, time.Second, 5*time.Millisecond)
}

func TestSnapshot_ResetCancelsPending(t *testing.T) {
	b := snapshotBackend("summary")
	d := New(b, Options{SnapshotDelay: 50 * time.Millisecond})
	defer d.Close()

	d.Refresh(context.Background())
	require.NoError(t, d.Reset(context.Background()))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, b.count("chat"))
}
