// Package archive stores raw model replies in GCS so rejected or degraded
// extraction runs can be inspected after the fact.
package archive

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Archiver writes raw model output to a GCS bucket. A nil *Archiver is a
// valid no-op, so callers don't branch on whether archiving is configured.
type Archiver struct {
	client *storage.Client
	bucket string
	log    zerolog.Logger
}

// New creates an archiver for the given bucket. Assumes application default
// credentials, same as the other Google Cloud clients.
func New(ctx context.Context, bucket string, log zerolog.Logger) (*Archiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive.New: create storage client: %w", err)
	}
	return &Archiver{
		client: client,
		bucket: bucket,
		log:    log,
	}, nil
}

// Close releases the storage client.
func (a *Archiver) Close() error {
	if a == nil || a.client == nil {
		return nil
	}
	return a.client.Close()
}

// Store writes one raw model reply under insights/<user>/<date>/<id>.txt and
// returns the object's GCS URI. Failures are logged, not returned: archiving
// is diagnostics, it must never fail a request.
func (a *Archiver) Store(ctx context.Context, userID, kind, raw string) string {
	if a == nil || raw == "" {
		return ""
	}

	objectName := fmt.Sprintf("insights/%s/%s/%s-%s.txt",
		userID, time.Now().UTC().Format("2006/01/02"), kind, uuid.NewString())

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"

	if _, err := w.Write([]byte(raw)); err != nil {
		_ = w.Close()
		a.log.Warn().Err(err).Str("object", objectName).Msg("Failed to write model output archive")
		return ""
	}
	if err := w.Close(); err != nil {
		a.log.Warn().Err(err).Str("object", objectName).Msg("Failed to finalize model output archive")
		return ""
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName)
}
