package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/blobkeeper/internal/flagx"
)

func parseLocatorArgs(args []string) (string, error) {
	args = flagx.FilterArgs(args, []string{"-d"})

	fs := flag.NewFlagSet("locator", flag.ContinueOnError)
	var path string
	fs.StringVar(&path, "d", "", "blob path")
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	if path == "" {
		return "", errors.New("locator: -d <path> is required")
	}
	return path, nil
}

func (a *App) runLocator(ctx context.Context, args []string) error {
	path, err := parseLocatorArgs(args)
	if err != nil {
		return err
	}

	url, err := a.uploader.Locator(ctx, path)
	if err != nil {
		return fmt.Errorf("resolve locator: %w", err)
	}
	if url == "" {
		fmt.Fprintln(a.out, "download locators are disabled for this backend")
		return nil
	}

	fmt.Fprintln(a.out, url)
	return nil
}
