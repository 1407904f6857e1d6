package install

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/nginxutil/install-nginx/internal/config"
	"github.com/nginxutil/install-nginx/internal/files"
	"github.com/nginxutil/install-nginx/internal/logger"
)

// runScript is the companion launch script shipped with the tool. Its
// behavior (starting and supervising the service) is outside this
// program; it is only placed next to the binary.
//
//go:embed run-nginx.sh
var runScript []byte

// Runner runs commands; used for the chown calls.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// Installer relocates the fetched binary and the run-script into the
// install tree and assigns ownership and execute permissions.
type Installer struct {
	run Runner
}

// New builds an installer with a real command runner.
func New() *Installer {
	return NewWith(nil)
}

// NewWith allows injecting the runner for testing.
func NewWith(r Runner) *Installer {
	if r == nil {
		r = defaultRunner{}
	}
	return &Installer{run: r}
}

type defaultRunner struct{}

func (defaultRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

// Install moves binarySrc to <install>/bin/nginx and writes the
// run-script beside it. The binary gets owner execute permission, the
// run-script world execute; both are handed to the service user. Any
// sub-step failure aborts with the underlying error.
func (i *Installer) Install(ctx context.Context, binarySrc string, cfg config.Config) error {
	owner := cfg.ServiceUser + ":" + cfg.ServiceUser

	dest := cfg.BinaryPath()
	if binarySrc != dest {
		if err := files.MoveFile(binarySrc, dest); err != nil {
			return fmt.Errorf("place binary: %w", err)
		}
	}
	if err := i.run.Run(ctx, "chown", owner, dest); err != nil {
		return fmt.Errorf("chown %s: %w", dest, err)
	}
	if err := addExec(dest, 0o100); err != nil {
		return err
	}
	logger.Infof("installed binary at %s", dest)

	script := cfg.RunScriptPath()
	if err := os.WriteFile(script, runScript, 0o644); err != nil {
		return fmt.Errorf("write run-script: %w", err)
	}
	if err := i.run.Run(ctx, "chown", owner, script); err != nil {
		return fmt.Errorf("chown %s: %w", script, err)
	}
	if err := addExec(script, 0o111); err != nil {
		return err
	}
	logger.Infof("installed run-script at %s", script)
	return nil
}

// addExec adds the given execute bits on top of the file's current mode.
func addExec(path string, bits os.FileMode) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.Chmod(path, fi.Mode().Perm()|bits); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
