package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/blobkeeper/internal/flagx"
	"github.com/dmitrijs2005/blobkeeper/internal/transfer"
)

type deleteOptions struct {
	Path   string
	DBPath string
}

func parseDeleteArgs(args []string) (*deleteOptions, error) {
	args = flagx.FilterArgs(args, []string{"-d", "-k"})

	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	opts := &deleteOptions{}
	fs.StringVar(&opts.Path, "d", "", "blob path")
	fs.StringVar(&opts.DBPath, "k", "", "record path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.Path == "" {
		return nil, errors.New("delete: -d <path> is required")
	}
	return opts, nil
}

func (a *App) runDelete(ctx context.Context, args []string) error {
	opts, err := parseDeleteArgs(args)
	if err != nil {
		return err
	}

	res, err := a.deleter.Do(ctx, &transfer.DeleteRequest{
		Path:   opts.Path,
		DBPath: opts.DBPath,
	})
	if err != nil {
		// The blob may already be gone while its record still exists; the
		// partial result tells the operator what is left to retry.
		if res != nil && !res.RecordRemoved {
			fmt.Fprintf(a.out, "blob %s deleted, record %s NOT removed\n", res.Path, res.DBPath)
		}
		return err
	}

	fmt.Fprintf(a.out, "deleted %s\n", res.Path)
	if res.RecordRemoved {
		fmt.Fprintf(a.out, "removed record %s\n", res.DBPath)
	}
	return nil
}
