package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/blobkeeper/internal/blob"
	"github.com/dmitrijs2005/blobkeeper/internal/flagx"
	"github.com/dmitrijs2005/blobkeeper/internal/transfer"
)

type uploadOptions struct {
	File        string
	Path        string
	Name        string
	ContentType string
	DBPath      string
}

func parseUploadArgs(args []string) (*uploadOptions, error) {
	args = flagx.FilterArgs(args, []string{"-f", "-d", "-s", "-y", "-k"})

	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	opts := &uploadOptions{}
	fs.StringVar(&opts.File, "f", "", "local file")
	fs.StringVar(&opts.Path, "d", "", "destination path")
	fs.StringVar(&opts.Name, "s", "", "object name")
	fs.StringVar(&opts.ContentType, "y", "", "content type")
	fs.StringVar(&opts.DBPath, "k", "", "record location")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.File == "" {
		return nil, errors.New("upload: -f <file> is required")
	}
	if opts.Name == "" {
		opts.Name = filepath.Base(strings.TrimSuffix(opts.File, "/"))
	}
	return opts, nil
}

func (a *App) runUpload(ctx context.Context, args []string) error {
	opts, err := parseUploadArgs(args)
	if err != nil {
		return err
	}

	uri := opts.File
	if !strings.HasPrefix(uri, a.config.LocalPathPrefix) {
		uri = a.config.LocalPathPrefix + uri
	}

	res, err := a.uploader.Do(ctx, &transfer.Request{
		Path:     opts.Path,
		Filename: opts.Name,
		LocalURI: uri,
		Metadata: blob.Metadata{ContentType: opts.ContentType},
		DBPath:   opts.DBPath,
	}, newConsoleSink(a.out))
	if err != nil {
		return err
	}

	if res.Key != "" {
		fmt.Fprintf(a.out, "record: %s\n", res.Ref)
	}
	if res.Locator != "" {
		fmt.Fprintf(a.out, "download: %s\n", res.Locator)
	}
	return nil
}

// consoleSink renders upload progress on the terminal.
type consoleSink struct {
	out         io.Writer
	lastPercent int
}

// newConsoleSink starts below 0% so the first event always prints.
func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out, lastPercent: -1}
}

func (s *consoleSink) Progress(ev transfer.ProgressEvent) {
	p := ev.Percent()
	if p == s.lastPercent {
		return
	}
	s.lastPercent = p
	fmt.Fprintf(s.out, "\ruploading... %3d%%", p)
}

func (s *consoleSink) Complete(res *transfer.Result) {
	fmt.Fprintf(s.out, "\ruploaded %s (%d bytes)\n", res.Snapshot.Key, res.Snapshot.Size)
}

func (s *consoleSink) Fail(err error) {
	fmt.Fprintf(s.out, "\rupload failed: %v\n", err)
}
