package transfer

import (
	"fmt"

	"github.com/dmitrijs2005/blobkeeper/internal/blob"
)

// UploadError reports which phase of an upload failed. Kind is one of the
// common sentinels (ErrTransferFailed, ErrMetadataPersist); Err is the
// underlying cause. When the blob transfer already succeeded, Snapshot and
// Locator carry the known blob outcome so the caller can retry the
// metadata write without re-uploading the blob.
type UploadError struct {
	Kind     error
	Err      error
	Snapshot *blob.Snapshot
	Locator  string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *UploadError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
