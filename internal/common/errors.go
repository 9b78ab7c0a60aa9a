// Package common defines shared sentinel errors used across the blobkeeper
// orchestration, blob-store and record-store layers. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Blob-store errors.
	ErrBlobNotFound       = errors.New("blob not found")
	ErrBackendUnavailable = errors.New("blob backend unavailable")

	// Record-store errors.
	ErrRecordNotFound         = errors.New("record not found")
	ErrRecordStoreUnavailable = errors.New("record store unavailable")

	// Upload orchestration errors (which phase failed).
	ErrTransferFailed  = errors.New("blob transfer failed")
	ErrMetadataPersist = errors.New("metadata persist failed")

	// Delete orchestration errors.
	ErrBlobDelete   = errors.New("blob delete failed")
	ErrRecordDelete = errors.New("record delete failed")
)
