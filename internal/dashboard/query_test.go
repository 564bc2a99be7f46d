package dashboard

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions() []domain.Transaction {
	return []domain.Transaction{
		tx(domain.NewDate(2024, 1, 5), "TESCO STORES 2231", 45, domain.Debit, "Food & Dining"),
		tx(domain.NewDate(2024, 1, 1), "ACME LTD SALARY", 3000, domain.Credit, "Income"),
		tx(domain.NewDate(2024, 1, 9), "Uber trip", 12, "DEBIT", "Transportation"),
		tx(domain.NewDate(2024, 1, 3), "Refund from Amazon", 20, domain.Credit, "Shopping"),
		tx(domain.NewDate(2024, 1, 7), "Netflix", 15, domain.Debit, ""),
	}
}

// datedTransactions returns n transactions on distinct consecutive days in ascending order.
func datedTransactions(n int) []domain.Transaction {
	out := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		d := domain.NewDate(2024, 1, 1)
		d.Date = d.Date.AddDays(i)
		out = append(out, tx(d, fmt.Sprintf("item %02d", i+1), int64(i+1), domain.Debit, "Misc"))
	}
	return out
}

func TestFilter_SubsetAndIdempotent(t *testing.T) {
	list := sampleTransactions()

	for _, search := range []string{"", "tesco", "FOOD", "o", "salary", "income", "nothing-matches", "uber"} {
		t.Run(search, func(t *testing.T) {
			once := Filter(list, search, FilterAll)
			twice := Filter(once, search, FilterAll)

			assert.Equal(t, once, twice, "filtering twice must not change the result")
			for _, got := range once {
				assert.Contains(t, list, got)
				needle := strings.ToLower(search)
				assert.True(t,
					strings.Contains(strings.ToLower(got.Description), needle) ||
						strings.Contains(strings.ToLower(got.Category), needle),
					"%q does not match %q", got.Description, search)
			}
		})
	}
}

func TestFilter_SearchMatchesCategoryCaseInsensitive(t *testing.T) {
	got := Filter(sampleTransactions(), "dining", FilterAll)
	require.Len(t, got, 1)
	assert.Equal(t, "TESCO STORES 2231", got[0].Description)
}

func TestFilter_TypeFilter(t *testing.T) {
	tests := []struct {
		filter TypeFilter
		want   int
	}{
		{FilterAll, 5},
		{"", 5},
		{FilterCredit, 2},
		{FilterDebit, 3}, // "DEBIT" normalizes to debit
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			assert.Len(t, Filter(sampleTransactions(), "", tt.filter), tt.want)
		})
	}
}

func TestFilter_SearchAndTypeCombined(t *testing.T) {
	got := Filter(sampleTransactions(), "a", FilterCredit)
	require.Len(t, got, 2)
	for _, g := range got {
		assert.Equal(t, domain.Credit, g.Type.Normalize())
	}
}

func TestSortByDate_DescIsReverseOfAsc(t *testing.T) {
	list := sampleTransactions()

	desc := SortByDate(list, SortDesc)
	asc := SortByDate(desc, SortAsc)

	require.Len(t, asc, len(desc))
	for i := range desc {
		assert.Equal(t, desc[i], asc[len(asc)-1-i])
	}
	assert.Equal(t, domain.NewDate(2024, 1, 9), desc[0].Date)
	assert.Equal(t, domain.NewDate(2024, 1, 1), asc[0].Date)
}

func TestApply_DoesNotMutateSource(t *testing.T) {
	list := sampleTransactions()
	original := append([]domain.Transaction{}, list...)

	_ = Apply(list, Query{Search: "e", Type: FilterDebit, Sort: SortAsc, Page: 1, PageSize: 2})

	assert.Equal(t, original, list)
}

func TestApply_Pagination37By25(t *testing.T) {
	list := datedTransactions(37)
	q := Query{Type: FilterAll, Sort: SortAsc, Page: 1, PageSize: 25}

	page1 := Apply(list, q)
	assert.Equal(t, 2, page1.TotalPages)
	assert.Equal(t, 37, page1.Total)
	require.Len(t, page1.Rows, 25)
	assert.Equal(t, "item 01", page1.Rows[0].Description)
	assert.Equal(t, "item 25", page1.Rows[24].Description)
	assert.True(t, page1.HasNext())
	assert.False(t, page1.HasPrev())

	q.Page = 2
	page2 := Apply(list, q)
	require.Len(t, page2.Rows, 12)
	assert.Equal(t, "item 26", page2.Rows[0].Description)
	assert.Equal(t, "item 37", page2.Rows[11].Description)
	assert.False(t, page2.HasNext())
}

func TestApply_PageOutOfRangeIsClamped(t *testing.T) {
	list := datedTransactions(10)

	v := Apply(list, Query{Sort: SortAsc, Page: 9, PageSize: 4})
	assert.Equal(t, 3, v.Page)
	assert.Len(t, v.Rows, 2)

	empty := Apply(nil, Query{Page: 3, PageSize: 4})
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Rows)
}

func TestApply_LimitMode(t *testing.T) {
	v := Apply(datedTransactions(8), Query{Sort: SortDesc, Limit: 5})

	require.Len(t, v.Rows, 5)
	assert.Equal(t, "item 08", v.Rows[0].Description)
	assert.Equal(t, 8, v.Total)
	assert.False(t, v.HasNext())
	assert.False(t, v.HasPrev())
}

type staticSource struct {
	list    []domain.Transaction
	version uint64
	reads   int
}

func (s *staticSource) Transactions() ([]domain.Transaction, uint64) {
	s.reads++
	return s.list, s.version
}

func TestTable_Navigation(t *testing.T) {
	src := &staticSource{list: datedTransactions(37), version: 1}
	table := NewPagedTable(src, 25)
	table.SetSort(SortAsc)

	table.Prev()
	assert.Equal(t, 1, table.View().Page, "prev on page 1 is a no-op")

	table.Next()
	v := table.View()
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, "item 26", v.Rows[0].Description)

	table.Next()
	assert.Equal(t, 2, table.View().Page, "next on the last page is a no-op")

	table.Prev()
	assert.Equal(t, 1, table.View().Page)
}

func TestTable_FilterChangeResetsPage(t *testing.T) {
	src := &staticSource{list: datedTransactions(37), version: 1}
	table := NewPagedTable(src, 25)
	table.Next()
	require.Equal(t, 2, table.View().Page)

	table.SetSearch("item 3")
	v := table.View()
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 8, v.Total) // items 30-37
}

func TestTable_RecomputesWhenSourceVersionChanges(t *testing.T) {
	src := &staticSource{list: datedTransactions(3), version: 1}
	table := NewLimitedTable(src, 5)

	first := table.View()
	again := table.View()
	assert.Equal(t, first, again)

	src.list = datedTransactions(6)
	src.version = 2
	v := table.View()
	assert.Len(t, v.Rows, 5)
	assert.Equal(t, 6, v.Total)
}

func TestTable_ClampsPageWhenDataShrinks(t *testing.T) {
	src := &staticSource{list: datedTransactions(37), version: 1}
	table := NewPagedTable(src, 25)
	table.Next()
	require.Equal(t, 2, table.View().Page)

	src.list = datedTransactions(5)
	src.version = 2
	assert.Equal(t, 1, table.View().Page)
	assert.Equal(t, 1, table.Query().Page)
}
