// Package blob defines the minimal capability surface blobkeeper needs from
// a remote blob backend: stream bytes to a path, resolve a durable download
// locator for a completed upload, and delete a blob at a path.
package blob

import (
	"context"
	"io"
	"time"
)

// Metadata carries backend-native blob metadata supplied with an upload.
type Metadata struct {
	// ContentType is the MIME type stored with the blob.
	ContentType string
	// Custom holds arbitrary user metadata persisted alongside the blob.
	Custom map[string]string
}

// Snapshot is the terminal metadata of a completed blob transfer.
type Snapshot struct {
	Bucket      string
	Key         string
	Location    string
	ContentType string
	ETag        string
	Size        int64
	UploadedAt  time.Time
	Custom      map[string]string
}

// ProgressFunc is called during an upload with bytes written so far and the
// total size. If total is -1, the total size is unknown.
type ProgressFunc func(written, total int64)

// Store is the blob-store adapter contract. Implementations keep no local
// state between calls; all side effects are network I/O.
type Store interface {
	// Put streams src to the given key, invoking onProgress (when non-nil)
	// as bytes move. It blocks until the transfer reaches a terminal state
	// and returns the resulting Snapshot. Cancelling ctx aborts the
	// transfer.
	Put(ctx context.Context, key string, src io.Reader, size int64, meta Metadata, onProgress ProgressFunc) (*Snapshot, error)

	// DownloadLocator returns a durable reference usable to retrieve the
	// blob's contents. It returns ("", nil) when the backend configuration
	// exposes no locators; that is a recognized degraded mode, not an
	// error.
	DownloadLocator(ctx context.Context, key string) (string, error)

	// Delete removes the blob at key. It fails with common.ErrBlobNotFound
	// when no object exists there and with common.ErrBackendUnavailable on
	// transport errors.
	Delete(ctx context.Context, key string) error
}
