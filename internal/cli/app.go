// Package cli implements the blobkeeper command-line application: upload,
// delete and locator commands over the configured blob and record stores.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/blobkeeper/internal/blob"
	"github.com/dmitrijs2005/blobkeeper/internal/cache"
	"github.com/dmitrijs2005/blobkeeper/internal/config"
	"github.com/dmitrijs2005/blobkeeper/internal/logging"
	"github.com/dmitrijs2005/blobkeeper/internal/record"
	"github.com/dmitrijs2005/blobkeeper/internal/transfer"
)

// uploader and deleter are the orchestration seams the commands run
// against; tests substitute fakes.
type uploader interface {
	Do(ctx context.Context, req *transfer.Request, sink transfer.Sink) (*transfer.Result, error)
	Locator(ctx context.Context, path string) (string, error)
}

type deleter interface {
	Do(ctx context.Context, req *transfer.DeleteRequest) (*transfer.DeleteResult, error)
}

type App struct {
	config   *config.Config
	log      logging.Logger
	uploader uploader
	deleter  deleter
	out      io.Writer
}

// NewApp wires the blob store, the optional locator cache, the configured
// record store variant and the orchestrators.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	s3, err := blob.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	var blobs blob.Store = s3
	if cfg.RedisAddr != "" {
		blobs, err = cache.NewLocatorStore(ctx, blobs, cfg)
		if err != nil {
			return nil, fmt.Errorf("init locator cache: %w", err)
		}
	}

	records, err := newRecordStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &App{
		config:   cfg,
		log:      log,
		uploader: transfer.NewUploader(blobs, records, nil, cfg, log),
		deleter:  transfer.NewDeleter(blobs, records, log),
		out:      os.Stdout,
	}, nil
}

// newRecordStore selects the record store variant. Exactly one is active;
// an empty DynamoDB table name with the keyed tree selected means metadata
// persistence is disabled entirely.
func newRecordStore(ctx context.Context, cfg *config.Config, log logging.Logger) (record.Store, error) {
	if cfg.UseCollectionStore {
		s, err := record.NewCollectionStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init collection record store: %w", err)
		}
		return s, nil
	}
	if cfg.DynamoTable == "" {
		log.Warn(ctx, "no record store configured, metadata persistence disabled")
		return nil, nil
	}
	s, err := record.NewKeyedTreeStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init keyed-tree record store: %w", err)
	}
	return s, nil
}

// Run dispatches the subcommand named by the first positional argument.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "upload":
		return a.runUpload(ctx, args)
	case "delete":
		return a.runDelete(ctx, args)
	case "locator":
		return a.runLocator(ctx, args)
	case "", "help":
		a.printUsage()
		return nil
	default:
		a.printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) printUsage() {
	fmt.Fprintln(a.out, `usage: blobkeeper <command> [flags]

commands:
  upload   upload a file and persist its metadata record
           -f file    local file (path or prefixed URI)
           -d path    destination path in the blob store
           -s name    object name (default: the local file name)
           -y type    content type
           -k dbpath  record location; empty skips metadata persistence
  delete   delete a blob and its metadata record
           -d path    blob path
           -k dbpath  fully-qualified record path
  locator  resolve a download locator for an existing blob
           -d path    blob path

global flags: -c <config.json> plus the flags listed in the config package.`)
}
