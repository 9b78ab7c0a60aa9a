package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/blobkeeper/internal/blob"
	"github.com/dmitrijs2005/blobkeeper/internal/common"
	"github.com/dmitrijs2005/blobkeeper/internal/logging"
	"github.com/dmitrijs2005/blobkeeper/internal/record"
)

// DeleteRequest asks for a blob and, optionally, its metadata record to be
// removed as one logical operation.
type DeleteRequest struct {
	// Path is the blob location.
	Path string
	// DBPath is the fully-qualified record location; empty skips the
	// record store.
	DBPath string
}

// DeleteResult confirms what was removed. RecordRemoved reports whether
// the record store performed (or confirmed) the removal; it stays false
// when the record step was skipped.
type DeleteResult struct {
	Path          string
	DBPath        string
	RecordRemoved bool
}

// Deleter removes a blob and its metadata record sequentially: blob first,
// so a metadata record is never orphaned while its blob still exists.
type Deleter struct {
	blobs   blob.Store
	records record.Store // nil when no record store is configured
	log     logging.Logger
}

func NewDeleter(blobs blob.Store, records record.Store, log logging.Logger) *Deleter {
	return &Deleter{blobs: blobs, records: records, log: log}
}

// Do runs one delete. A blob-delete failure aborts with the record left
// untouched. A record-delete failure after a confirmed blob delete returns
// the partial DeleteResult together with an error wrapping
// common.ErrRecordDelete, so the caller can retry just that step. A
// missing record is a successful no-op: the desired end state already
// holds.
func (d *Deleter) Do(ctx context.Context, req *DeleteRequest) (*DeleteResult, error) {
	path := strings.Trim(req.Path, "/")

	if err := d.blobs.Delete(ctx, path); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrBlobDelete, err)
	}

	res := &DeleteResult{Path: req.Path, DBPath: req.DBPath}

	if req.DBPath == "" {
		return res, nil
	}
	if d.records == nil {
		d.log.Warn(ctx, "no record store configured, skipping record delete", "db_path", req.DBPath)
		return res, nil
	}

	if err := d.records.Remove(ctx, req.DBPath); err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			d.log.Debug(ctx, "record already absent", "db_path", req.DBPath)
			res.RecordRemoved = true
			return res, nil
		}
		return res, fmt.Errorf("%w: %w", common.ErrRecordDelete, err)
	}

	res.RecordRemoved = true
	return res, nil
}
