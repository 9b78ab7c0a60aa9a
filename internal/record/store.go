// Package record defines the record-store adapter blobkeeper persists
// upload metadata into. Exactly one of the two variants is active per
// deployment: the keyed tree (DynamoDB, ordered generated keys under a
// path) or the collection (MongoDB, id-addressed documents). Orchestrators
// depend only on the variant-agnostic Store contract.
package record

import (
	"context"
	"strings"
	"time"
)

// Record is an arbitrary mapping from field name to value. A persisted
// record never contains fields whose value is absent (nil); see
// StripAbsent.
type Record map[string]any

// WriteResult reports where a record landed.
type WriteResult struct {
	// Key is the generated identifier: the ordered tree key or the
	// collection document id.
	Key string
	// Ref is the fully-qualified record path ("dbPath/Key") usable for a
	// later Remove.
	Ref string
	// CreatedAt is assigned from the record store's own clock.
	CreatedAt time.Time
}

// Store is the variant-agnostic record-store contract.
type Store interface {
	// Write persists rec under dbPath with a freshly generated key or id.
	// Transport failures wrap common.ErrRecordStoreUnavailable.
	Write(ctx context.Context, dbPath string, rec Record) (*WriteResult, error)

	// Remove deletes the record at the fully-qualified dbPath. It fails
	// with common.ErrRecordNotFound when nothing exists there.
	Remove(ctx context.Context, dbPath string) error
}

// StripAbsent returns a copy of rec without fields whose value is nil.
// Absent fields are dropped, never written as null.
func StripAbsent(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// normalizePath trims surrounding slashes so "/meta/uploads/" and
// "meta/uploads" address the same location.
func normalizePath(p string) string {
	return strings.Trim(p, "/")
}

// splitPath splits a fully-qualified record path into its parent location
// and the final key segment.
func splitPath(p string) (parent, key string) {
	p = normalizePath(p)
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}
