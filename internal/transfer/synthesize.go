package transfer

import (
	"github.com/dmitrijs2005/blobkeeper/internal/blob"
	"github.com/dmitrijs2005/blobkeeper/internal/record"
)

// Factory converts the terminal blob metadata and download locator into the
// record to persist. A caller-supplied factory's return value is used
// verbatim; only the default factory strips absent fields.
type Factory func(snap *blob.Snapshot, locator string, raw map[string]any) record.Record

// DefaultFactory builds the persisted record from the blob backend's own
// metadata, dropping every field whose value is absent. It is pure and
// deterministic given its inputs.
func DefaultFactory(snap *blob.Snapshot, locator string, _ map[string]any) record.Record {
	rec := record.Record{
		"bucket":       orAbsent(snap.Bucket),
		"full_path":    orAbsent(snap.Key),
		"content_type": orAbsent(snap.ContentType),
		"e_tag":        orAbsent(snap.ETag),
		"size":         snap.Size,
		"download_url": orAbsent(locator),
	}
	if !snap.UploadedAt.IsZero() {
		rec["uploaded_at"] = snap.UploadedAt
	}
	for k, v := range snap.Custom {
		rec[k] = v
	}
	return record.StripAbsent(rec)
}

// orAbsent maps the empty string to an absent value so StripAbsent drops
// the field instead of persisting "".
func orAbsent(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// synthesize picks the per-call factory over the global one over the
// default.
func synthesize(snap *blob.Snapshot, locator string, opts *Options, global Factory) record.Record {
	var raw map[string]any
	if opts != nil {
		raw = opts.Raw
		if opts.Factory != nil {
			return opts.Factory(snap, locator, raw)
		}
	}
	if global != nil {
		return global(snap, locator, raw)
	}
	return DefaultFactory(snap, locator, raw)
}
