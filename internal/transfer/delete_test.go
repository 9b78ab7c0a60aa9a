package transfer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/blobkeeper/internal/common"
)

func TestDeleter_Do_RemovesBlobAndRecord(t *testing.T) {
	blobs := &fakeBlobStore{}
	records := &fakeRecordStore{}
	d := NewDeleter(blobs, records, testLogger())

	res, err := d.Do(context.Background(), &DeleteRequest{
		Path:   "/images/a.png",
		DBPath: "/meta/uploads/-Nabc123",
	})
	require.NoError(t, err)

	assert.Equal(t, "images/a.png", blobs.deleteKey)
	assert.Equal(t, "/meta/uploads/-Nabc123", records.removeDBPath)
	assert.True(t, res.RecordRemoved)
}

func TestDeleter_Do_BlobFailureLeavesRecordUntouched(t *testing.T) {
	cause := fmt.Errorf("%w: timeout", common.ErrBackendUnavailable)
	blobs := &fakeBlobStore{deleteErr: cause}
	records := &fakeRecordStore{}
	d := NewDeleter(blobs, records, testLogger())

	res, err := d.Do(context.Background(), &DeleteRequest{
		Path:   "images/a.png",
		DBPath: "/meta/uploads/-Nabc123",
	})
	require.Error(t, err)
	assert.Nil(t, res)

	assert.ErrorIs(t, err, common.ErrBlobDelete)
	assert.ErrorIs(t, err, common.ErrBackendUnavailable)
	assert.Equal(t, 0, records.removeCalls)
}

func TestDeleter_Do_MissingRecordIsSuccess(t *testing.T) {
	blobs := &fakeBlobStore{}
	records := &fakeRecordStore{removeErr: common.ErrRecordNotFound}
	d := NewDeleter(blobs, records, testLogger())

	res, err := d.Do(context.Background(), &DeleteRequest{
		Path:   "images/a.png",
		DBPath: "/meta/uploads/-Nabc123",
	})
	require.NoError(t, err)

	// The desired end state already holds.
	assert.True(t, res.RecordRemoved)
}

func TestDeleter_Do_RecordFailureIsPartial(t *testing.T) {
	cause := errors.New("conditional check failed")
	blobs := &fakeBlobStore{}
	records := &fakeRecordStore{removeErr: fmt.Errorf("%w: %w", common.ErrRecordStoreUnavailable, cause)}
	d := NewDeleter(blobs, records, testLogger())

	res, err := d.Do(context.Background(), &DeleteRequest{
		Path:   "images/a.png",
		DBPath: "/meta/uploads/-Nabc123",
	})
	require.Error(t, err)

	assert.ErrorIs(t, err, common.ErrRecordDelete)
	assert.ErrorIs(t, err, common.ErrRecordStoreUnavailable)

	// The blob delete is confirmed; the result says which half remains.
	require.NotNil(t, res)
	assert.Equal(t, "images/a.png", blobs.deleteKey)
	assert.False(t, res.RecordRemoved)
}

func TestDeleter_Do_NoDBPathSkipsRecordStore(t *testing.T) {
	blobs := &fakeBlobStore{}
	records := &fakeRecordStore{}
	d := NewDeleter(blobs, records, testLogger())

	res, err := d.Do(context.Background(), &DeleteRequest{Path: "images/a.png"})
	require.NoError(t, err)

	assert.Equal(t, 0, records.removeCalls)
	assert.False(t, res.RecordRemoved)
}

func TestDeleter_Do_NoRecordStoreConfigured(t *testing.T) {
	blobs := &fakeBlobStore{}
	d := NewDeleter(blobs, nil, testLogger())

	res, err := d.Do(context.Background(), &DeleteRequest{
		Path:   "images/a.png",
		DBPath: "/meta/uploads/-Nabc123",
	})
	require.NoError(t, err)
	assert.False(t, res.RecordRemoved)
}
