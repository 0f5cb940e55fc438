// Package blob stores submission attachments (receipt photos) in a GCS
// bucket and hands back stable links for the ledger's attachment column.
package blob

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const uploadTimeout = 2 * time.Minute

// Store uploads attachment bytes to a bucket. Safe for concurrent use.
type Store struct {
	client *storage.Client
	bucket string
	now    func() time.Time
	log    zerolog.Logger
}

// NewStore builds a Store for the named bucket. Assumes Application Default
// Credentials are configured.
func NewStore(ctx context.Context, bucket string, log zerolog.Logger) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("blob: bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("blob: create storage client: %w", err)
	}

	return &Store{client: client, bucket: bucket, now: time.Now, log: log}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Upload writes the attachment bytes under a timestamped object name and
// returns its public URL. Object names carry the submitting user and a uuid
// suffix so concurrent uploads never collide.
func (s *Store) Upload(ctx context.Context, data []byte, userID, filename, contentType string) (string, error) {
	objectName := s.objectName(userID, filename)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("blob: write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("blob: finalize upload %s: %w", objectName, err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName)
	s.log.Info().Str("object", objectName).Int("size_bytes", len(data)).Msg("Attachment uploaded")
	return url, nil
}

func (s *Store) objectName(userID, filename string) string {
	base := path.Base(strings.TrimSpace(filename))
	if base == "" || base == "." || base == "/" {
		base = "attachment"
	}
	stamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s_%s", stamp, sanitize(userID), uuid.NewString()[:8], base)
}

// sanitize keeps object names flat and URL-friendly.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}
