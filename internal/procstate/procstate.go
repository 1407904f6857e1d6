// Package procstate inspects the provisioned service's runtime state
// through its PID file. It never signals or otherwise touches the
// process.
package procstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

const pidFileName = "nginx.pid"

// State is the result of one probe.
type State struct {
	PIDFile string `json:"pid_file" yaml:"pid_file"`
	PID     int32  `json:"pid,omitempty" yaml:"pid,omitempty"`
	Running bool   `json:"running" yaml:"running"`
}

// pidExistsFunc is swapped out in tests.
type pidExistsFunc func(ctx context.Context, pid int32) (bool, error)

// Prober reads the PID file under the service's PID folder and checks
// whether the recorded process is alive.
type Prober struct {
	pidExists pidExistsFunc
}

func New() *Prober {
	return &Prober{pidExists: process.PidExistsWithContext}
}

func NewWith(exists pidExistsFunc) *Prober {
	return &Prober{pidExists: exists}
}

// Probe reports the service state for the given PID folder. A missing
// or empty PID file means "not running" and is not an error; a present
// but unparseable one is.
func (p *Prober) Probe(ctx context.Context, pidFolder string) (State, error) {
	st := State{PIDFile: filepath.Join(pidFolder, pidFileName)}

	data, err := os.ReadFile(st.PIDFile)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return st, err
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return st, nil
	}
	pid, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return st, fmt.Errorf("parse pid file %s: %w", st.PIDFile, err)
	}
	st.PID = int32(pid)

	alive, err := p.pidExists(ctx, st.PID)
	if err != nil {
		return st, fmt.Errorf("check pid %d: %w", st.PID, err)
	}
	st.Running = alive
	return st, nil
}
