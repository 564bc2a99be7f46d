package dashboard

import (
	"sort"
	"strings"
	"sync"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// TypeFilter restricts the table to one transaction type.
type TypeFilter string

const (
	FilterAll    TypeFilter = "all"
	FilterCredit TypeFilter = "credit"
	FilterDebit  TypeFilter = "debit"
)

// Valid reports whether f is a known filter. The empty filter means all.
func (f TypeFilter) Valid() bool {
	switch f {
	case "", FilterAll, FilterCredit, FilterDebit:
		return true
	}
	return false
}

// SortOrder orders the table by date.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// Valid reports whether o is a known order. The empty order means newest first.
func (o SortOrder) Valid() bool {
	return o == "" || o == SortDesc || o == SortAsc
}

// RecentLimit is the row count of the home page's recent-transactions table.
const RecentLimit = 5

// Query is the full input of the transaction table besides the data itself.
// Exactly one of Limit and PageSize should be set; Limit wins if both are.
type Query struct {
	Search   string
	Type     TypeFilter
	Sort     SortOrder
	Page     int // 1-based, used with PageSize
	PageSize int
	Limit    int
}

// View is the derived table content.
type View struct {
	Rows       []domain.Transaction `json:"rows"`
	Total      int                  `json:"total"` // rows matching the filter before paging
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	PageSize   int                  `json:"page_size,omitempty"`
	Limit      int                  `json:"limit,omitempty"`
}

// HasNext reports whether a following page exists.
func (v View) HasNext() bool {
	return v.Limit == 0 && v.Page < v.TotalPages
}

// HasPrev reports whether a previous page exists.
func (v View) HasPrev() bool {
	return v.Limit == 0 && v.Page > 1
}

// Matches reports whether t passes the search text and type filter. Search is
// a case-insensitive substring match on description or category.
func Matches(t domain.Transaction, search string, filter TypeFilter) bool {
	if filter != "" && filter != FilterAll && t.Type.Normalize() != domain.TransactionType(filter) {
		return false
	}
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(t.Category), needle)
}

// Filter returns the matching transactions in a new slice.
func Filter(list []domain.Transaction, search string, filter TypeFilter) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(list))
	for _, t := range list {
		if Matches(t, search, filter) {
			out = append(out, t)
		}
	}
	return out
}

// SortByDate returns a date-sorted copy of list. Equal dates keep their input order.
func SortByDate(list []domain.Transaction, order SortOrder) []domain.Transaction {
	out := append([]domain.Transaction{}, list...)
	sort.SliceStable(out, func(i, j int) bool {
		if order == SortAsc {
			return out[i].Date.Before(out[j].Date.Date)
		}
		return out[i].Date.After(out[j].Date.Date)
	})
	return out
}

// Apply derives the table view from scratch: filter, sort, then page.
// The source list is never modified.
func Apply(list []domain.Transaction, q Query) View {
	rows := SortByDate(Filter(list, q.Search, q.Type), q.Sort)
	total := len(rows)

	if q.Limit > 0 {
		if total > q.Limit {
			rows = rows[:q.Limit]
		}
		return View{Rows: rows, Total: total, Page: 1, TotalPages: 1, Limit: q.Limit}
	}

	if q.PageSize <= 0 {
		return View{Rows: rows, Total: total, Page: 1, TotalPages: 1}
	}

	totalPages := (total + q.PageSize - 1) / q.PageSize
	page := clampPage(q.Page, totalPages)
	start := (page - 1) * q.PageSize
	end := start + q.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return View{
		Rows:       rows[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		PageSize:   q.PageSize,
	}
}

func clampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Source provides the transaction list together with a version that changes
// on every replacement. *Dashboard implements it.
type Source interface {
	Transactions() ([]domain.Transaction, uint64)
}

// Table is one interactive transaction table: it holds the search, filter,
// sort and page state and memoizes the last view until either the query or
// the source version changes.
type Table struct {
	source Source

	mu      sync.Mutex
	query   Query
	cached  *View
	key     Query
	version uint64
}

// NewPagedTable creates a table showing pageSize rows per page.
func NewPagedTable(source Source, pageSize int) *Table {
	return &Table{source: source, query: Query{Type: FilterAll, Sort: SortDesc, Page: 1, PageSize: pageSize}}
}

// NewLimitedTable creates a table showing only the first limit rows, without pagination.
func NewLimitedTable(source Source, limit int) *Table {
	return &Table{source: source, query: Query{Type: FilterAll, Sort: SortDesc, Page: 1, Limit: limit}}
}

// Query returns the current table query.
func (t *Table) Query() Query {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.query
}

// SetSearch changes the search text and returns to page 1.
func (t *Table) SetSearch(search string) {
	t.update(func(q *Query) {
		q.Search = search
		q.Page = 1
	})
}

// SetType changes the type filter and returns to page 1.
func (t *Table) SetType(filter TypeFilter) {
	if filter == "" {
		filter = FilterAll
	}
	t.update(func(q *Query) {
		q.Type = filter
		q.Page = 1
	})
}

// SetSort changes the date order.
func (t *Table) SetSort(order SortOrder) {
	t.update(func(q *Query) { q.Sort = order })
}

// Next moves one page forward; a no-op on the last page or in limit mode.
func (t *Table) Next() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v := t.viewLocked(); v.HasNext() {
		t.query.Page = v.Page + 1
	}
}

// Prev moves one page back; a no-op on page 1 or in limit mode.
func (t *Table) Prev() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v := t.viewLocked(); v.HasPrev() {
		t.query.Page = v.Page - 1
	}
}

// View returns the current derived view.
func (t *Table) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

func (t *Table) update(fn func(q *Query)) {
	t.mu.Lock()
	fn(&t.query)
	t.mu.Unlock()
}

func (t *Table) viewLocked() View {
	list, version := t.source.Transactions()
	if t.cached != nil && t.key == t.query && t.version == version {
		return *t.cached
	}
	v := Apply(list, t.query)
	t.cached, t.key, t.version = &v, t.query, version
	// Keep the stored page in range when the data shrinks.
	if t.query.Limit == 0 && t.query.PageSize > 0 {
		t.query.Page = v.Page
		t.key.Page = v.Page
	}
	return v
}
