package tmpfiles

import (
	"fmt"
	"os"

	"github.com/nginxutil/install-nginx/internal/config"
)

// Writer persists the boot-time directive that recreates the PID
// directory after reboot. The PID folder lives on volatile storage, so
// the directory itself is not created here: systemd-tmpfiles
// materializes it at boot from the rule this writes.
type Writer struct {
	// Path of the directive file; defaults to the tmpfiles.d drop-in.
	Path string
}

// New returns a writer targeting the standard tmpfiles.d drop-in.
func New() Writer {
	return Writer{Path: config.DefaultTmpfilesFile}
}

// Write overwrites the directive file with exactly one "d" (directory)
// rule: path, mode 0744, owner and group set to the service user.
// Rerunning replaces the file, so the rule is never duplicated.
func (w Writer) Write(pidFolder, username string) error {
	path := w.Path
	if path == "" {
		path = config.DefaultTmpfilesFile
	}
	line := fmt.Sprintf("d %s 0744 %s %s -\n", pidFolder, username, username)
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return fmt.Errorf("write boot directive %s: %w", path, err)
	}
	return nil
}
