// Package archive keeps a copy of raw uploaded statements in Google Cloud Storage.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Archiver stores a raw statement file and returns its storage URI.
type Archiver interface {
	Archive(ctx context.Context, filename string, data []byte) (string, error)
}

// GCSArchiver writes statements to a GCS bucket.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
type GCSArchiver struct {
	bucket string
	now    func() time.Time
}

// NewGCSArchiver creates an archiver for the given bucket.
func NewGCSArchiver(bucket string) *GCSArchiver {
	return &GCSArchiver{bucket: bucket, now: time.Now}
}

// Archive uploads data under uploads/YYYY/MM/DD/<uuid>-<filename>.
func (a *GCSArchiver) Archive(ctx context.Context, filename string, data []byte) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	objectName := ObjectName(a.now(), uuid.NewString(), filename)
	w := client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = ContentType(filename)

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write statement to GCS: %w", err)
	}
	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}

// ObjectName builds the date-partitioned object name for a statement.
func ObjectName(now time.Time, id, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "statement"
	}
	return fmt.Sprintf("uploads/%s/%s-%s", now.Format("2006/01/02"), id, base)
}

// ContentType guesses the MIME type from the statement extension.
func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}

var _ Archiver = (*GCSArchiver)(nil)
