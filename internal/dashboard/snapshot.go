package dashboard

import (
	"sync"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/apiclient"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/google/uuid"
)

// SnapshotPrompt is the fixed request behind the history view's narrative summary.
const SnapshotPrompt = "Give me a short narrative summary of my current transactions: main income sources, biggest expenses and anything unusual."

// SnapshotState is the lifecycle of a snapshot request.
type SnapshotState string

const (
	SnapshotIdle      SnapshotState = ""
	SnapshotRunning   SnapshotState = "running"
	SnapshotCompleted SnapshotState = "completed"
	SnapshotFailed    SnapshotState = "failed"
)

// SnapshotStatus describes the latest snapshot request.
type SnapshotStatus struct {
	ID          string        `json:"id,omitempty"`
	State       SnapshotState `json:"state"`
	Content     string        `json:"content,omitempty"`
	Error       string        `json:"error,omitempty"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// Snapshot returns the latest snapshot status.
func (d *Dashboard) Snapshot() SnapshotStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// transactionsChanged schedules a snapshot for a non-empty list.
func (d *Dashboard) transactionsChanged() {
	d.mu.RLock()
	hasData := len(d.transactions) > 0
	d.mu.RUnlock()

	if hasData {
		d.scheduleSnapshot()
	}
}

func (d *Dashboard) scheduleSnapshot() {
	if d.snapshots != nil {
		d.snapshots.Trigger()
	}
}

// runSnapshot issues one snapshot request with empty history. It does not
// touch the chat history. A result is stored only if no newer snapshot
// started in the meantime.
func (d *Dashboard) runSnapshot() {
	id := uuid.NewString()
	started := time.Now()

	d.mu.Lock()
	d.snapshot = SnapshotStatus{ID: id, State: SnapshotRunning, StartedAt: &started}
	d.mu.Unlock()

	reply, err := d.backend.Chat(d.ctx, apiclient.ChatRequest{
		Message: SnapshotPrompt,
		History: []apiclient.HistoryEntry{},
		Context: domain.ContextTransactions,
	})
	d.metrics.ObserveWorkflow("snapshot", err)
	completed := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snapshot.ID != id {
		return
	}
	d.snapshot.CompletedAt = &completed
	if err != nil {
		d.log.Warn().Err(err).Str("snapshot_id", id).Msg("Snapshot request failed")
		d.snapshot.State = SnapshotFailed
		d.snapshot.Error = err.Error()
		return
	}
	d.snapshot.State = SnapshotCompleted
	d.snapshot.Content = reply
}

// Debouncer runs fn once after delay has passed without another Trigger.
// At most one call is pending at any time; each Trigger replaces it.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a debouncer for fn.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger cancels any pending call and arms a new one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that already fired when Stop was called must not run.
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			d.fn()
		}
	})
}

// Cancel drops the pending call, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

// Pending reports whether a call is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
