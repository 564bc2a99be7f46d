package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.Store
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.Store) *JobsHandler {
	return &JobsHandler{store: store}
}

// Register adds the job routes to mux.
func (h *JobsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/jobs", allow(http.MethodGet, h.ListJobs))
	mux.HandleFunc("/api/jobs/{id}", allow(http.MethodGet, h.GetJob))
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	job, err := h.store.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		reqLog := logger.FromContext(r.Context())
		reqLog.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.Filter{
		Kind:   jobs.Kind(query.Get("kind")),
		Status: jobs.Status(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.List(r.Context(), filter)
	if err != nil {
		reqLog := logger.FromContext(r.Context())
		reqLog.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
