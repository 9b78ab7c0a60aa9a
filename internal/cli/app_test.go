package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/blobkeeper/internal/blob"
	"github.com/dmitrijs2005/blobkeeper/internal/common"
	"github.com/dmitrijs2005/blobkeeper/internal/config"
	"github.com/dmitrijs2005/blobkeeper/internal/logging"
	"github.com/dmitrijs2005/blobkeeper/internal/transfer"
)

// -------- test fakes --------

type fakeUploader struct {
	res     *transfer.Result
	err     error
	locator string

	req  *transfer.Request
	path string
}

func (f *fakeUploader) Do(ctx context.Context, req *transfer.Request, sink transfer.Sink) (*transfer.Result, error) {
	f.req = req
	if f.err != nil {
		sink.Fail(f.err)
		return nil, f.err
	}
	sink.Complete(f.res)
	return f.res, nil
}

func (f *fakeUploader) Locator(ctx context.Context, path string) (string, error) {
	f.path = path
	return f.locator, f.err
}

type fakeDeleter struct {
	res *transfer.DeleteResult
	err error

	req *transfer.DeleteRequest
}

func (f *fakeDeleter) Do(ctx context.Context, req *transfer.DeleteRequest) (*transfer.DeleteResult, error) {
	f.req = req
	return f.res, f.err
}

func newTestApp(u *fakeUploader, d *fakeDeleter) (*App, *bytes.Buffer) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	out := &bytes.Buffer{}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &App{config: cfg, log: log, uploader: u, deleter: d, out: out}, out
}

// -------- tests --------

func TestApp_Run_UnknownCommand(t *testing.T) {
	app, _ := newTestApp(&fakeUploader{}, &fakeDeleter{})

	err := app.Run(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestApp_Run_NoCommandPrintsUsage(t *testing.T) {
	app, out := newTestApp(&fakeUploader{}, &fakeDeleter{})

	err := app.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "usage: blobkeeper")
}

func TestApp_Upload(t *testing.T) {
	u := &fakeUploader{res: &transfer.Result{
		Key:      "-Nabc123",
		Ref:      "meta/uploads/-Nabc123",
		Locator:  "https://signed.example/a",
		Snapshot: &blob.Snapshot{Key: "images/a.png", Size: 7},
	}}
	app, out := newTestApp(u, &fakeDeleter{})

	err := app.Run(context.Background(), []string{
		"upload", "-f", "/tmp/a.png", "-d", "images", "-y", "image/png", "-k", "/meta/uploads",
	})
	require.NoError(t, err)

	require.NotNil(t, u.req)
	assert.Equal(t, "file:///tmp/a.png", u.req.LocalURI)
	assert.Equal(t, "images", u.req.Path)
	assert.Equal(t, "a.png", u.req.Filename) // derived from -f
	assert.Equal(t, "image/png", u.req.Metadata.ContentType)
	assert.Equal(t, "/meta/uploads", u.req.DBPath)

	assert.Contains(t, out.String(), "record: meta/uploads/-Nabc123")
	assert.Contains(t, out.String(), "download: https://signed.example/a")
}

func TestApp_Upload_PrefixedURIKeptVerbatim(t *testing.T) {
	u := &fakeUploader{res: &transfer.Result{Snapshot: &blob.Snapshot{Key: "a"}}}
	app, _ := newTestApp(u, &fakeDeleter{})

	err := app.Run(context.Background(), []string{"upload", "-f", "file:///tmp/b.txt"})
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/b.txt", u.req.LocalURI)
}

func TestApp_Upload_MissingFile(t *testing.T) {
	app, _ := newTestApp(&fakeUploader{}, &fakeDeleter{})

	err := app.Run(context.Background(), []string{"upload", "-d", "images"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-f")
}

func TestApp_Delete(t *testing.T) {
	d := &fakeDeleter{res: &transfer.DeleteResult{
		Path:          "images/a.png",
		DBPath:        "/meta/uploads/-Nabc123",
		RecordRemoved: true,
	}}
	app, out := newTestApp(&fakeUploader{}, d)

	err := app.Run(context.Background(), []string{
		"delete", "-d", "images/a.png", "-k", "/meta/uploads/-Nabc123",
	})
	require.NoError(t, err)

	assert.Equal(t, "images/a.png", d.req.Path)
	assert.Contains(t, out.String(), "deleted images/a.png")
	assert.Contains(t, out.String(), "removed record /meta/uploads/-Nabc123")
}

func TestApp_Delete_PartialFailureReported(t *testing.T) {
	d := &fakeDeleter{
		res: &transfer.DeleteResult{Path: "images/a.png", DBPath: "/meta/uploads/-N1"},
		err: errors.New("record delete failed: table missing"),
	}
	app, out := newTestApp(&fakeUploader{}, d)

	err := app.Run(context.Background(), []string{"delete", "-d", "images/a.png", "-k", "/meta/uploads/-N1"})
	require.Error(t, err)
	assert.Contains(t, out.String(), "record /meta/uploads/-N1 NOT removed")
}

func TestApp_Locator(t *testing.T) {
	u := &fakeUploader{locator: "https://signed.example/a"}
	app, out := newTestApp(u, &fakeDeleter{})

	err := app.Run(context.Background(), []string{"locator", "-d", "/images/a.png"})
	require.NoError(t, err)

	assert.Equal(t, "/images/a.png", u.path)
	assert.Contains(t, out.String(), "https://signed.example/a")
}

func TestApp_Locator_Disabled(t *testing.T) {
	app, out := newTestApp(&fakeUploader{}, &fakeDeleter{})

	err := app.Run(context.Background(), []string{"locator", "-d", "images/a.png"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "disabled")
}

func TestConsoleSink_SkipsRepeatedPercent(t *testing.T) {
	out := &bytes.Buffer{}
	s := newConsoleSink(out)

	s.Progress(transfer.ProgressEvent{BytesTransferred: 250, TotalBytes: 1000})
	s.Progress(transfer.ProgressEvent{BytesTransferred: 251, TotalBytes: 1000})
	s.Progress(transfer.ProgressEvent{BytesTransferred: 500, TotalBytes: 1000})

	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("25%")))
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("50%")))
}

func TestConsoleSink_PrintsInitialZeroPercent(t *testing.T) {
	out := &bytes.Buffer{}
	s := newConsoleSink(out)

	s.Progress(transfer.ProgressEvent{BytesTransferred: 0, TotalBytes: 1000})

	assert.Contains(t, out.String(), "0%")
}

func TestApp_Delete_BlobDeleteFailure(t *testing.T) {
	d := &fakeDeleter{err: common.ErrBlobDelete}
	app, _ := newTestApp(&fakeUploader{}, d)

	err := app.Run(context.Background(), []string{"delete", "-d", "images/a.png"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBlobDelete)
}
