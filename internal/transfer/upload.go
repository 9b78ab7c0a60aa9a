package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/blobkeeper/internal/blob"
	"github.com/dmitrijs2005/blobkeeper/internal/common"
	"github.com/dmitrijs2005/blobkeeper/internal/config"
	"github.com/dmitrijs2005/blobkeeper/internal/logging"
	"github.com/dmitrijs2005/blobkeeper/internal/record"
)

// Options carries per-call upload settings.
type Options struct {
	// Factory overrides the metadata synthesizer for this call.
	Factory Factory
	// Raw is passed through to the factory untouched.
	Raw map[string]any
}

// Request describes one upload. It is immutable once submitted.
type Request struct {
	// Path is the blob location prefix; Filename names the object under
	// it. An empty Filename gets a generated object name.
	Path     string
	Filename string

	// Source is the byte source. When nil, LocalURI must carry a
	// device-local file URI with the configured local path prefix; the
	// file is then streamed from disk.
	Source   io.Reader
	Size     int64
	LocalURI string

	// Metadata is the backend-native blob metadata (content type etc.).
	Metadata blob.Metadata

	// DBPath is the record-store location. Empty skips persistence.
	DBPath string

	// Options optionally overrides per-call behavior.
	Options *Options
}

// Result is the outcome of a successfully finished upload. It is handed to
// the caller and owned by the caller.
type Result struct {
	// Key is the record-store identifier: the generated tree key or
	// collection id. Empty when persistence was skipped.
	Key string
	// Ref is the fully-qualified record path usable for a later delete.
	Ref string
	// Record is the synthesized (and, when a DBPath was given, persisted)
	// metadata record.
	Record record.Record
	// Snapshot is the raw terminal blob metadata.
	Snapshot *blob.Snapshot
	// Locator is the download locator, empty when unavailable.
	Locator string
	// CreatedAt is assigned by the record store's clock; zero when
	// persistence was skipped.
	CreatedAt time.Time
}

// Uploader drives a single upload end-to-end: blob transfer with progress
// relay, locator resolution, metadata synthesis, and record persistence.
// The two phases are strictly sequential and not atomic; a crash between
// them leaves a blob without a record, which callers reconcile out of band.
type Uploader struct {
	blobs       blob.Store
	records     record.Store // nil when no record store is configured
	factory     Factory      // deployment-wide default, may be nil
	localPrefix string
	log         logging.Logger
}

// NewUploader wires an Uploader. records and factory may be nil.
func NewUploader(blobs blob.Store, records record.Store, factory Factory, cfg *config.Config, log logging.Logger) *Uploader {
	return &Uploader{
		blobs:       blobs,
		records:     records,
		factory:     factory,
		localPrefix: cfg.LocalPathPrefix,
		log:         log,
	}
}

// Do runs one upload. It blocks until the upload reaches a terminal state
// and reports the same outcome through both the sink and the return
// values. Cancelling ctx aborts the blob transfer; once persistence has
// begun the operation runs to completion or failure.
func (u *Uploader) Do(ctx context.Context, req *Request, sink Sink) (*Result, error) {
	if sink == nil {
		sink = NopSink{}
	}
	g := newSinkGuard(sink)

	key := u.objectKey(req)
	log := u.log.With("path", key)

	src, size, closeSrc, err := u.resolveSource(req)
	if err != nil {
		uerr := &UploadError{Kind: common.ErrTransferFailed, Err: err}
		g.fail(uerr)
		return nil, uerr
	}
	defer closeSrc()

	snap, err := u.blobs.Put(ctx, key, src, size, req.Metadata, g.progress)
	if err != nil {
		log.Error(ctx, "blob transfer failed", "error", err)
		uerr := &UploadError{Kind: common.ErrTransferFailed, Err: err}
		g.fail(uerr)
		return nil, uerr
	}

	locator, err := u.blobs.DownloadLocator(ctx, snap.Key)
	if err != nil {
		// Degrades the result, never fails the upload.
		log.Warn(ctx, "download locator unavailable", "error", err)
		locator = ""
	}

	rec := synthesize(snap, locator, req.Options, u.factory)

	res := &Result{
		Record:   rec,
		Snapshot: snap,
		Locator:  locator,
	}

	if req.DBPath == "" || u.records == nil {
		if req.DBPath != "" {
			log.Warn(ctx, "no record store configured, skipping metadata write", "db_path", req.DBPath)
		}
		g.complete(res)
		return res, nil
	}

	// Point of no cancellation: the metadata write runs to completion
	// even if the caller gives up.
	wr, err := u.records.Write(context.WithoutCancel(ctx), req.DBPath, rec)
	if err != nil {
		log.Error(ctx, "metadata persist failed", "db_path", req.DBPath, "error", err)
		uerr := &UploadError{Kind: common.ErrMetadataPersist, Err: err, Snapshot: snap, Locator: locator}
		g.fail(uerr)
		return nil, uerr
	}

	res.Key = wr.Key
	res.Ref = wr.Ref
	res.CreatedAt = wr.CreatedAt

	log.Info(ctx, "upload complete", "key", wr.Key, "size", snap.Size)
	g.complete(res)
	return res, nil
}

// Locator resolves a download locator for an already-uploaded blob.
func (u *Uploader) Locator(ctx context.Context, path string) (string, error) {
	return u.blobs.DownloadLocator(ctx, strings.Trim(path, "/"))
}

func (u *Uploader) objectKey(req *Request) string {
	name := req.Filename
	if name == "" {
		name = randomObjectName()
	}
	return strings.Trim(strings.Trim(req.Path, "/")+"/"+name, "/")
}

// randomObjectName returns a date-partitioned object name used when the
// request does not name the file.
func randomObjectName() string {
	d := time.Now()
	return fmt.Sprintf("%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (u *Uploader) resolveSource(req *Request) (io.Reader, int64, func() error, error) {
	noop := func() error { return nil }

	if req.Source != nil {
		return req.Source, req.Size, noop, nil
	}

	if req.LocalURI != "" {
		if u.localPrefix == "" || !strings.HasPrefix(req.LocalURI, u.localPrefix) {
			return nil, 0, nil, fmt.Errorf("local uri %q does not match prefix %q", req.LocalURI, u.localPrefix)
		}
		p := strings.TrimPrefix(req.LocalURI, u.localPrefix)
		f, err := os.Open(p)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("open local file: %w", err)
		}
		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, 0, nil, fmt.Errorf("stat local file: %w", err)
		}
		return f, fi.Size(), f.Close, nil
	}

	return nil, 0, nil, errors.New("request has no byte source")
}
