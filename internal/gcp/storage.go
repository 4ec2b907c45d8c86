package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// maxObjectBytes bounds how much of an uploaded object is read into memory.
const maxObjectBytes = 64 << 20

// ErrObjectTooLarge is returned by DownloadObject for objects above maxObjectBytes.
var ErrObjectTooLarge = errors.New("gcs object exceeds size limit")

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not a failure: re-delivered events write the same report.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, content []byte) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Object already exists. Skipping.", "gcsObject", objectName)
			return nil
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Object already exists. Skipping.", "gcsObject", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == 412
}

// ReportBucket stores rendered reports under <prefix>/<jobID>.<ext>.
type ReportBucket struct {
	client *storage.Client
	name   string
	prefix string
}

func NewReportBucket(client *storage.Client, name, prefix string) *ReportBucket {
	if prefix == "" {
		prefix = "reports"
	}
	return &ReportBucket{client: client, name: name, prefix: prefix}
}

// Save uploads the report with bounded retries and returns its gs:// URI.
func (b *ReportBucket) Save(ctx context.Context, jobID, contentType string, content []byte) (string, error) {
	object := fmt.Sprintf("%s/%s%s", b.prefix, jobID, extensionFor(contentType))

	const maxRetries = 4
	backoff := time.Second
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
		err := SaveToGCSAtomically(writeCtx, b.client.Bucket(b.name), object, contentType, content)
		cancel()
		if err == nil {
			return fmt.Sprintf("gs://%s/%s", b.name, object), nil
		}

		lastErr = err
		slog.Warn("Report upload failed, will retry.",
			"gcsObject", object,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("upload for %s failed after all retries: %w", object, lastErr)
}

func extensionFor(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(mediaType) {
	case "text/markdown":
		return ".md"
	case "application/pdf":
		return ".pdf"
	case "application/json":
		return ".json"
	default:
		return ""
	}
}

// ObjectInfo is what the upload trigger needs to know about a stored document.
type ObjectInfo struct {
	Data     []byte
	Metadata map[string]string
}

// DownloadObject reads gs://bucket/object into memory together with its custom metadata.
func DownloadObject(ctx context.Context, client *storage.Client, bucket, object string) (*ObjectInfo, error) {
	handle := client.Bucket(bucket).Object(object)
	attrs, err := handle.Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes of gs://%s/%s: %w", bucket, object, err)
	}
	if attrs.Size > maxObjectBytes {
		return nil, fmt.Errorf("%w: gs://%s/%s is %d bytes, limit is %d", ErrObjectTooLarge, bucket, object, attrs.Size, maxObjectBytes)
	}

	reader, err := handle.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxObjectBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object: %w", err)
	}
	return &ObjectInfo{Data: data, Metadata: attrs.Metadata}, nil
}
