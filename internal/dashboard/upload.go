package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dvloznov/finance-dashboard/internal/apiclient"
)

// UploadFailedMessage is shown when the server gives no reason for a failed upload.
const UploadFailedMessage = "Upload failed"

// File is a statement chosen for upload.
type File struct {
	Name    string
	Content io.Reader
}

// Upload sends a statement to the backend. On success the returned
// transactions replace the current list, metadata.currency (when present)
// becomes the display currency, the error is cleared and a full Refresh
// follows. On failure the server's message becomes the dashboard error and
// transaction state is left untouched. Uploading is cleared on every path,
// and so is the selected file unless another file was selected meanwhile.
func (d *Dashboard) Upload(ctx context.Context, f File) error {
	d.mu.Lock()
	d.uploading = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.uploading = false
		if d.selectedFile == f.Name {
			d.selectedFile = ""
		}
		d.mu.Unlock()
	}()

	log := d.log.With().Str("filename", f.Name).Logger()
	log.Info().Msg("Uploading statement")

	content := f.Content
	if d.archiver != nil {
		data, err := io.ReadAll(f.Content)
		if err != nil {
			d.failUpload(fmt.Errorf("read statement: %w", err))
			return fmt.Errorf("Upload: read statement: %w", err)
		}
		if uri, err := d.archiver.Archive(ctx, f.Name, data); err != nil {
			log.Warn().Err(err).Msg("Failed to archive statement")
		} else {
			log.Info().Str("uri", uri).Msg("Statement archived")
		}
		content = bytes.NewReader(data)
	}

	result, err := d.backend.Upload(ctx, f.Name, content)
	if err != nil {
		d.failUpload(err)
		return fmt.Errorf("Upload: %w", err)
	}

	d.mu.Lock()
	d.replaceTransactionsLocked(result.Transactions, false)
	if result.Metadata != nil && result.Metadata.Currency != "" {
		d.currency = result.Metadata.Currency
	}
	d.errMsg = ""
	d.mu.Unlock()

	d.metrics.ObserveWorkflow("upload", nil)
	log.Info().Int("transactions", len(result.Transactions)).Msg("Statement uploaded")

	d.transactionsChanged()
	d.Refresh(ctx)
	return nil
}

// UploadErrorMessage is the user-facing text for a failed upload: the
// server's detail or message when it sent one, else UploadFailedMessage.
func UploadErrorMessage(err error) string {
	if msg := apiclient.ServerMessage(err); msg != "" {
		return msg
	}
	return UploadFailedMessage
}

func (d *Dashboard) failUpload(err error) {
	msg := UploadErrorMessage(err)

	d.mu.Lock()
	d.errMsg = msg
	d.mu.Unlock()

	d.metrics.ObserveWorkflow("upload", err)
	d.log.Error().Err(err).Msg("Upload failed")
}
