package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			_, _ = io.WriteString(w, `{"status":"healthy","message":"Finance Analyzer API is running"}`)
		case "/api/v1/analytics/summary":
			_, _ = io.WriteString(w, `{"total_income":3000,"total_expense":1250.5,"net_balance":1749.5,"transaction_count":4}`)
		case "/api/v1/analytics/spending":
			_, _ = io.WriteString(w, `{"Shopping":250.5,"Housing":1000}`)
		case "/api/v1/analytics/trends":
			_, _ = io.WriteString(w, `{"2024-02":{"income":3000,"expense":1000},"2024-01":{"income":0,"expense":250.5}}`)
		case "/api/v1/analytics/merchants":
			_, _ = io.WriteString(w, `[{"name":"Landlord","value":1000},{"name":"Amazon","value":250.5}]`)
		case "/api/v1/analytics/transactions":
			_, _ = io.WriteString(w, `[
				{"date":"2024-02-01","description":"Rent","amount":1000,"type":"debit","category":"Housing"},
				{"date":"2024-02-03","description":"Salary","amount":3000,"type":"credit","category":"Income"},
				{"date":"2024-01-20","description":"Amazon order","amount":250.5,"type":"debit","category":"Shopping"}
			]`)
		case "/api/v1/analytics/reset":
			_, _ = io.WriteString(w, `{"total_income":0,"total_expense":0,"net_balance":0,"transaction_count":0}`)
		case "/api/v1/upload":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if _, _, err := r.FormFile("file"); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"detail":"No file provided"}`)
				return
			}
			_, _ = io.WriteString(w, `{"transactions":[{"date":"2024-03-01","description":"Cafe","amount":3,"type":"debit"}],
				"metadata":{"bank_name":"Example Bank","currency":"EUR"}}`)
		case "/api/v1/chat":
			var req map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(map[string]string{"response": "context=" + req["context"].(string)})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, "--base-url", srv.URL, "summary")

	require.NoError(t, err)
	assert.Contains(t, out, "3000.00")
	assert.Contains(t, out, "1250.50")
	assert.Contains(t, out, "1749.50")
}

func TestSpendingCommand_SortedLargestFirst(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, "--base-url", srv.URL, "spending")

	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Housing"), strings.Index(out, "Shopping"))
}

func TestTrendsCommand_Chronological(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, "--base-url", srv.URL, "trends")

	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "2024-01"), strings.Index(out, "2024-02"))
}

func TestMerchantsCommand_Share(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, "--base-url", srv.URL, "merchants")

	require.NoError(t, err)
	assert.Contains(t, out, "100.0%") // Landlord vs February expense
	assert.Contains(t, out, "25.1%")  // 250.5 / 1000
}

func TestTransactionsCommand(t *testing.T) {
	srv := newBackend(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		wantErr bool
	}{
		{
			name: "newest first",
			args: []string{"transactions"},
			want: []string{"Page 1 of 1 (3 matching)"},
		},
		{
			name:    "debits only",
			args:    []string{"transactions", "--type", "debit"},
			want:    []string{"Rent", "Amazon order"},
			notWant: []string{"Salary"},
		},
		{
			name:    "search category",
			args:    []string{"transactions", "--search", "shop"},
			want:    []string{"Amazon order", "(1 matching)"},
			notWant: []string{"Rent"},
		},
		{
			name: "limit",
			args: []string{"transactions", "--limit", "2"},
			want: []string{"Showing 2 of 3 matching"},
		},
		{
			name:    "invalid type",
			args:    []string{"transactions", "--type", "refund"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--base-url", srv.URL}, tt.args...)...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func TestTransactionsCommand_JSONOrder(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, "--base-url", srv.URL, "--json", "transactions", "--sort", "asc")

	require.NoError(t, err)
	var view struct {
		Rows []struct {
			Description string `json:"description"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Rows, 3)
	assert.Equal(t, "Amazon order", view.Rows[0].Description)
	assert.Equal(t, "Salary", view.Rows[2].Description)
}

func TestUploadCommand(t *testing.T) {
	srv := newBackend(t)
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,amount\n2024-03-01,3\n"), 0o600))

	out, err := run(t, "--base-url", srv.URL, "upload", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded statement.csv: 1 transactions")
	assert.Contains(t, out, "Currency: EUR")
}

func TestUploadCommand_MissingFile(t *testing.T) {
	srv := newBackend(t)

	_, err := run(t, "--base-url", srv.URL, "upload", filepath.Join(t.TempDir(), "missing.pdf"))

	assert.Error(t, err)
}

func TestResetCommand_RequiresConfirmation(t *testing.T) {
	srv := newBackend(t)

	_, err := run(t, "--base-url", srv.URL, "reset")
	require.Error(t, err)

	out, err := run(t, "--base-url", srv.URL, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All data has been reset.")
}

func TestChatCommand(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, "--base-url", srv.URL, "chat", "--context", "HOME_PAGE", "how", "am", "I", "doing?")
	require.NoError(t, err)
	assert.Contains(t, out, "context=HOME_PAGE")

	_, err = run(t, "--base-url", srv.URL, "chat", "--context", "NOPE", "hi")
	assert.Error(t, err)
}

func TestHealthCommand(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, "--base-url", srv.URL, "health")

	require.NoError(t, err)
	assert.Contains(t, out, "Backend Status: healthy")
}
