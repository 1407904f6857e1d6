package layout

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/nginxutil/install-nginx/internal/config"
	"github.com/nginxutil/install-nginx/internal/logger"
)

// Runner runs commands; used for the recursive chown calls.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// Provisioner lays out the runtime directory tree and hands it to the
// service user.
type Provisioner struct {
	run Runner
}

// New builds a provisioner with a real command runner.
func New() *Provisioner {
	return NewWith(nil)
}

// NewWith allows injecting the runner for testing.
func NewWith(r Runner) *Provisioner {
	if r == nil {
		r = defaultRunner{}
	}
	return &Provisioner{run: r}
}

type defaultRunner struct{}

func (defaultRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

// Ensure creates the full directory tree, then chowns it. All
// directories are created before any ownership change so a chown
// failure (e.g. unknown user) aborts instead of leaving partial
// ownership behind. Pre-existing directories are not an error.
func (p *Provisioner) Ensure(ctx context.Context, cfg config.Config) error {
	dirs := []string{
		cfg.InstallPath,
		cfg.BinDir(),
		cfg.ConfDir(),
		cfg.LogDir(),
		cfg.GlobalLogDir,
		cfg.GlobalCacheDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}

	// Ownership is applied recursively to each top-level root; the
	// install subdirectories are covered by the install path chown.
	owned := []string{cfg.InstallPath, cfg.GlobalLogDir, cfg.GlobalCacheDir}
	owner := cfg.ServiceUser + ":" + cfg.ServiceUser
	for _, d := range owned {
		logger.Debugf("chown -R %s %s", owner, d)
		if err := p.run.Run(ctx, "chown", "-R", owner, d); err != nil {
			return fmt.Errorf("chown %s to %s: %w", d, cfg.ServiceUser, err)
		}
	}
	return nil
}
