package apt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nginxutil/install-nginx/internal/files"
	"github.com/nginxutil/install-nginx/internal/logger"
)

// binaryPayloadPath is where the service binary lives inside the
// package's filesystem payload.
const binaryPayloadPath = "usr/sbin/nginx"

// scratchDirName is the extraction directory created under the working
// directory while a fetch is in flight.
const scratchDirName = "nginx-pkg-extract"

// FetchOptions configures one fetch run.
type FetchOptions struct {
	SigningKeyPath string       // trust key to import before anything else
	Codename       string       // OS release codename selecting the feed
	DestPath       string       // where the extracted binary ends up
	WorkDir        string       // scratch/download area; "" means cwd
	Progress       func(string) // per-step message callback
}

// FetchBinary runs the whole package acquisition sequence: import the
// trust key, register the vendor feeds, refresh the index, download the
// package, extract its payload, move the service binary to DestPath,
// and delete the archive and scratch tree. Every step is a hard
// dependency on the previous one succeeding; the first failure aborts
// the fetch with no retry and no partial cleanup.
func (c *Client) FetchBinary(ctx context.Context, opts FetchOptions) (string, error) {
	if opts.SigningKeyPath == "" || opts.Codename == "" || opts.DestPath == "" {
		return "", fmt.Errorf("signing key, codename, and destination are required")
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(string) {}
	}
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		workDir = wd
	}

	progress("Importing package signing key...")
	if err := c.ImportKey(ctx, opts.SigningKeyPath); err != nil {
		return "", err
	}

	progress("Registering vendor package sources...")
	if err := c.AddSources(ctx, opts.Codename); err != nil {
		return "", err
	}

	progress("Refreshing package index...")
	if err := c.RefreshIndex(ctx); err != nil {
		return "", err
	}

	progress("Downloading package...")
	deb, err := c.Download(ctx, workDir)
	if err != nil {
		return "", err
	}

	progress("Extracting package payload...")
	scratch := filepath.Join(workDir, scratchDirName)
	if err := c.Extract(ctx, deb, scratch); err != nil {
		return "", err
	}

	payload := filepath.Join(scratch, binaryPayloadPath)
	if _, err := os.Stat(payload); err != nil {
		return "", fmt.Errorf("package payload missing %s: %w", binaryPayloadPath, err)
	}
	if err := files.MoveFile(payload, opts.DestPath); err != nil {
		return "", fmt.Errorf("relocate binary: %w", err)
	}

	logger.Debugf("cleaning up %s and %s", deb, scratch)
	if err := os.Remove(deb); err != nil {
		return "", fmt.Errorf("remove archive %s: %w", deb, err)
	}
	if err := os.RemoveAll(scratch); err != nil {
		return "", fmt.Errorf("remove scratch %s: %w", scratch, err)
	}
	return opts.DestPath, nil
}
