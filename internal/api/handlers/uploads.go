package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/rs/zerolog"
)

// MaxUploadBytes caps the size of an uploaded statement.
const MaxUploadBytes = 20 << 20

// UploadsHandler accepts statements and queues them for upload to the backend.
type UploadsHandler struct {
	dash      *dashboard.Dashboard
	publisher jobs.Publisher
}

// NewUploadsHandler creates a new uploads handler.
func NewUploadsHandler(dash *dashboard.Dashboard, publisher jobs.Publisher) *UploadsHandler {
	return &UploadsHandler{
		dash:      dash,
		publisher: publisher,
	}
}

// Register adds the upload route to mux.
func (h *UploadsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/upload", allow(http.MethodPost, h.Upload))
}

// Upload handles POST /api/upload
// The multipart field "file" carries the statement. The response is 202 with
// the queued job; poll /api/jobs/{id} for the outcome.
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "A file is required in the \"file\" field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	filename := filepath.Base(header.Filename)
	h.dash.SelectFile(filename)

	job := &jobs.Job{
		Kind:     jobs.KindUpload,
		Filename: filename,
		Payload:  data,
	}
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue upload job")
		h.dash.SelectFile("")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue upload")
		return
	}

	log.Info().Str("job_id", job.ID).Str("filename", filename).Int("bytes", len(data)).Msg("Upload job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":   job.ID,
		"filename": filename,
		"status":   string(jobs.StatusPending),
	})
}

// UploadJobHandler returns the queue handler that runs upload jobs against dash.
// A failed job carries the same message the dashboard shows.
func UploadJobHandler(dash *dashboard.Dashboard, log zerolog.Logger) jobs.Handler {
	return func(ctx context.Context, job *jobs.Job) error {
		if job.Kind != jobs.KindUpload {
			return errors.New("unexpected job kind: " + string(job.Kind))
		}

		jobLog := logger.WithFields(log, map[string]interface{}{
			"job_id":   job.ID,
			"filename": job.Filename,
		})
		jobLog.Info().Msg("Processing upload job")

		err := dash.Upload(ctx, dashboard.File{Name: job.Filename, Content: bytes.NewReader(job.Payload)})
		if err != nil {
			jobLog.Warn().Err(err).Msg("Upload job failed")
			return errors.New(dashboard.UploadErrorMessage(err))
		}
		return nil
	}
}
