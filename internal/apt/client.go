package apt

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nginxutil/install-nginx/internal/config"
	"github.com/nginxutil/install-nginx/internal/logger"
)

// PackageName is the vendor package the binary is extracted from.
const PackageName = "nginx"

// Runner runs external packaging tools. All package operations go
// through it; exit codes are the only success/failure signal trusted.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	RunIn(ctx context.Context, dir, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// Client talks to the system package manager: trust store, source
// lists, index, and package downloads. It never installs packages.
type Client struct {
	run Runner

	// SourcesFile is where the vendor feeds are registered.
	SourcesFile string
}

// New builds a client with a real command runner and the standard
// sources destination.
func New() *Client {
	return NewWith(nil)
}

// NewWith allows injecting the runner for testing.
func NewWith(r Runner) *Client {
	if r == nil {
		r = defaultRunner{}
	}
	return &Client{run: r, SourcesFile: config.DefaultSourcesFile}
}

type defaultRunner struct{}

func (defaultRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

func (defaultRunner) RunIn(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

func (defaultRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

// ImportKey adds the vendor signing key to the package trust store.
func (c *Client) ImportKey(ctx context.Context, keyPath string) error {
	logger.Debugf("importing signing key %s", keyPath)
	if err := c.run.Run(ctx, "apt-key", "add", keyPath); err != nil {
		return fmt.Errorf("apt-key add %s: %w", keyPath, err)
	}
	return nil
}

// RefreshIndex updates the package index so the newly added feeds are
// visible. Blocks until the network client finishes or errors.
func (c *Client) RefreshIndex(ctx context.Context) error {
	logger.Debugf("refreshing package index")
	if err := c.run.Run(ctx, "apt-get", "update"); err != nil {
		return fmt.Errorf("apt-get update: %w", err)
	}
	return nil
}

// Download fetches (without installing) the vendor package into dir and
// returns the path of the downloaded archive.
func (c *Client) Download(ctx context.Context, dir string) (string, error) {
	logger.Debugf("downloading package %s into %s", PackageName, dir)
	if err := c.run.RunIn(ctx, dir, "apt-get", "download", PackageName); err != nil {
		return "", fmt.Errorf("apt-get download %s: %w", PackageName, err)
	}
	matches, err := filepath.Glob(filepath.Join(dir, PackageName+"_*.deb"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("apt-get download succeeded but no %s_*.deb found in %s", PackageName, dir)
	}
	// More than one archive can only happen on a dirty working
	// directory; take the lexically newest.
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Extract unpacks the package's filesystem payload into scratch without
// running any maintainer scripts.
func (c *Client) Extract(ctx context.Context, deb, scratch string) error {
	logger.Debugf("extracting %s into %s", deb, scratch)
	if err := c.run.Run(ctx, "dpkg-deb", "-x", deb, scratch); err != nil {
		return fmt.Errorf("dpkg-deb -x %s: %w", deb, err)
	}
	return nil
}

// CandidateVersion reports the version the package index would serve,
// or "" when the package is unknown. Informational only; the install
// path never consumes it.
func (c *Client) CandidateVersion(ctx context.Context) (string, error) {
	out, err := c.run.Output(ctx, "apt-cache", "policy", PackageName)
	if err != nil {
		return "", fmt.Errorf("apt-cache policy %s: %w", PackageName, err)
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Candidate:"); ok {
			v = strings.TrimSpace(v)
			if v == "(none)" {
				return "", nil
			}
			return v, nil
		}
	}
	return "", nil
}
