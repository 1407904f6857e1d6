package sysuser

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"os/user"

	"github.com/nginxutil/install-nginx/internal/logger"
)

// Runner runs commands; used for the useradd call.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// LookupFunc reports whether an OS account exists. The error is
// non-nil only when the lookup itself failed.
type LookupFunc func(name string) (exists bool, err error)

// Provisioner ensures a service account exists. Creation is idempotent:
// an already-present user is left untouched and never mutated.
type Provisioner struct {
	run    Runner
	lookup LookupFunc
}

// New builds a provisioner backed by the OS user database and a real
// command runner.
func New() *Provisioner {
	return NewWith(nil, nil)
}

// NewWith allows injecting dependencies for testing.
func NewWith(r Runner, l LookupFunc) *Provisioner {
	if r == nil {
		r = defaultRunner{}
	}
	if l == nil {
		l = osLookup
	}
	return &Provisioner{run: r, lookup: l}
}

type defaultRunner struct{}

func (defaultRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

func osLookup(name string) (bool, error) {
	_, err := user.Lookup(name)
	if err == nil {
		return true, nil
	}
	if _, unknown := err.(user.UnknownUserError); unknown {
		return false, nil
	}
	return false, err
}

// Ensure creates the named system account if it does not exist yet.
// Repeated calls are safe; the only caller-visible difference between
// "created" and "already there" is a log line.
func (p *Provisioner) Ensure(ctx context.Context, name string) error {
	exists, err := p.lookup(name)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", name, err)
	}
	if exists {
		logger.Debugf("user %s already exists, leaving it alone", name)
		return nil
	}
	logger.Infof("creating service user %s", name)
	if err := p.run.Run(ctx, "useradd", "-r", "-s", "/usr/sbin/nologin", name); err != nil {
		return fmt.Errorf("useradd %s: %w", name, err)
	}
	return nil
}
