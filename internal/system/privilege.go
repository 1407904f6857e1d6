package system

import (
	"os"

	"github.com/nginxutil/install-nginx/internal/exitcodes"
)

// Guard checks that the process runs with elevated privileges. It must
// pass before any filesystem mutation happens.
type Guard struct {
	euid func() int
}

// NewGuard returns a guard backed by the real effective uid.
func NewGuard() Guard {
	return Guard{euid: os.Geteuid}
}

// NewGuardWith allows injecting the uid source for tests.
func NewGuardWith(euid func() int) Guard {
	if euid == nil {
		euid = os.Geteuid
	}
	return Guard{euid: euid}
}

// Check returns a precondition error unless the effective uid is root.
func (g Guard) Check() error {
	if g.euid() != 0 {
		return exitcodes.PreconditionErr("install-nginx must run as root (use sudo)")
	}
	return nil
}
