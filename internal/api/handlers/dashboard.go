package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// Table names exposed under /api/tables/{name}.
const (
	TableRecent = "recent"
	TableAll    = "all"
)

// DashboardHandler serves the dashboard state and its interactive tables.
type DashboardHandler struct {
	dash     *dashboard.Dashboard
	tables   map[string]*dashboard.Table
	pageSize int
}

// NewDashboardHandler creates a new dashboard handler. pageSize is the
// default page size of the "all" table and of /api/transactions.
func NewDashboardHandler(dash *dashboard.Dashboard, pageSize int) *DashboardHandler {
	return &DashboardHandler{
		dash: dash,
		tables: map[string]*dashboard.Table{
			TableRecent: dashboard.NewLimitedTable(dash, dashboard.RecentLimit),
			TableAll:    dashboard.NewPagedTable(dash, pageSize),
		},
		pageSize: pageSize,
	}
}

// Register adds the dashboard routes to mux.
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", allow(http.MethodGet, h.GetState))
	mux.HandleFunc("/api/transactions", allow(http.MethodGet, h.ListTransactions))
	mux.HandleFunc("/api/tables/{name}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetTable(w, r)
		case http.MethodPatch:
			h.UpdateTable(w, r)
		default:
			middleware.MethodNotAllowed(w)
		}
	})
	mux.HandleFunc("/api/tables/{name}/{direction}", allow(http.MethodPost, h.TurnPage))
	mux.HandleFunc("/api/refresh", allow(http.MethodPost, h.Refresh))
	mux.HandleFunc("/api/reset", allow(http.MethodPost, h.Reset))
	mux.HandleFunc("/api/error", allow(http.MethodDelete, h.DismissError))
	mux.HandleFunc("/api/messages", allow(http.MethodGet, h.ListMessages))
	mux.HandleFunc("/api/chat", allow(http.MethodPost, h.Chat))
	mux.HandleFunc("/api/snapshot", allow(http.MethodGet, h.GetSnapshot))
	mux.HandleFunc("/api/view", allow(http.MethodPut, h.SetView))
}

// GetState handles GET /api/state
func (h *DashboardHandler) GetState(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.dash.State())
}

// ListTransactions handles GET /api/transactions
func (h *DashboardHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, h.pageSize)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, _ := h.dash.Transactions()
	middleware.WriteJSON(w, http.StatusOK, dashboard.Apply(list, q))
}

// GetTable handles GET /api/tables/{name}
func (h *DashboardHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w, r)
	if !ok {
		return
	}
	writeTable(w, table)
}

// UpdateTable handles PATCH /api/tables/{name}
func (h *DashboardHandler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w, r)
	if !ok {
		return
	}

	var req struct {
		Search *string `json:"search"`
		Type   *string `json:"type"`
		Sort   *string `json:"sort"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Type != nil && !dashboard.TypeFilter(*req.Type).Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "type must be one of all, credit, debit")
		return
	}
	if req.Sort != nil && !dashboard.SortOrder(*req.Sort).Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "sort must be asc or desc")
		return
	}

	if req.Search != nil {
		table.SetSearch(*req.Search)
	}
	if req.Type != nil {
		table.SetType(dashboard.TypeFilter(*req.Type))
	}
	if req.Sort != nil {
		table.SetSort(dashboard.SortOrder(*req.Sort))
	}
	writeTable(w, table)
}

// TurnPage handles POST /api/tables/{name}/next and /api/tables/{name}/prev
func (h *DashboardHandler) TurnPage(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w, r)
	if !ok {
		return
	}

	switch r.PathValue("direction") {
	case "next":
		table.Next()
	case "prev":
		table.Prev()
	default:
		middleware.WriteError(w, http.StatusNotFound, "Unknown page direction")
		return
	}
	writeTable(w, table)
}

// Refresh handles POST /api/refresh
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	report := h.dash.Refresh(r.Context())

	failures := make(map[dashboard.AnalyticsView]string, len(report.Failures))
	for view, err := range report.Failures {
		failures[view] = err.Error()
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       report.OK(),
		"failures": failures,
	})
}

// Reset handles POST /api/reset
// The backend call is not cancelled when the client disconnects.
func (h *DashboardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.dash.Reset(context.WithoutCancel(r.Context())); err != nil {
		reqLog := logger.FromContext(r.Context())
		reqLog.Error().Err(err).Msg("Failed to reset dashboard")
		msg := h.dash.Error()
		if msg == "" {
			msg = "Reset failed"
		}
		middleware.WriteError(w, http.StatusBadGateway, msg)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summary": h.dash.State().Summary,
	})
}

// DismissError handles DELETE /api/error
func (h *DashboardHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	h.dash.DismissError()
	w.WriteHeader(http.StatusNoContent)
}

// ListMessages handles GET /api/messages
func (h *DashboardHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages := h.dash.Messages()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// Chat handles POST /api/chat
func (h *DashboardHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string             `json:"message"`
		Context domain.ChatContext `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if req.Context == "" {
		req.Context = domain.ContextFinancialAI
	}
	if !req.Context.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown chat context")
		return
	}

	// The turn completes even if the client goes away; the reply stays in the history.
	if !h.dash.SendFrom(context.WithoutCancel(r.Context()), req.Context, req.Message) {
		middleware.WriteError(w, http.StatusConflict, "A chat request is already in progress")
		return
	}

	// A concurrent reset may have cleared the history already.
	messages := h.dash.Messages()
	reply := ""
	if n := len(messages); n > 0 && messages[n-1].Role == domain.RoleBot {
		reply = messages[n-1].Content
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reply":    reply,
		"messages": messages,
	})
}

// GetSnapshot handles GET /api/snapshot
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.dash.Snapshot())
}

// SetView handles PUT /api/view
func (h *DashboardHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tab dashboard.Tab `json:"tab"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Tab.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "tab must be one of dashboard, chat, history")
		return
	}

	h.dash.SetTab(req.Tab)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"tab": string(req.Tab)})
}

func (h *DashboardHandler) table(w http.ResponseWriter, r *http.Request) (*dashboard.Table, bool) {
	table, ok := h.tables[r.PathValue("name")]
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Table not found")
	}
	return table, ok
}

func writeTable(w http.ResponseWriter, table *dashboard.Table) {
	q := table.Query()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"search": q.Search,
		"type":   q.Type,
		"sort":   q.Sort,
		"view":   table.View(),
	})
}

// parseQuery reads search, type, sort, page, page_size and limit.
func parseQuery(r *http.Request, defaultPageSize int) (dashboard.Query, error) {
	values := r.URL.Query()
	q := dashboard.Query{
		Search:   values.Get("search"),
		Type:     dashboard.TypeFilter(values.Get("type")),
		Sort:     dashboard.SortOrder(values.Get("sort")),
		Page:     1,
		PageSize: defaultPageSize,
	}

	if !q.Type.Valid() {
		return q, errBadParam("type must be one of all, credit, debit")
	}
	if q.Type == "" {
		q.Type = dashboard.FilterAll
	}
	if !q.Sort.Valid() {
		return q, errBadParam("sort must be asc or desc")
	}
	if q.Sort == "" {
		q.Sort = dashboard.SortDesc
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &q.Page},
		{"page_size", &q.PageSize},
		{"limit", &q.Limit},
	} {
		v := values.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, errBadParam(p.name + " must be a positive integer")
		}
		*p.dst = n
	}

	return q, nil
}

type errBadParam string

func (e errBadParam) Error() string { return string(e) }

// allow restricts h to a single method.
func allow(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.MethodNotAllowed(w)
			return
		}
		h(w, r)
	}
}
