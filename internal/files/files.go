package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// MoveFile relocates src to dst, creating dst's parent directories as
// needed. Rename is attempted first; when src and dst live on different
// filesystems (the usual case for a working-directory scratch tree and
// /opt) it falls back to copy-then-remove, preserving the file mode.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// Backup writes a timestamped sibling copy of path and returns the
// backup path. Callers treat failure as fatal: a file we cannot back up
// is a file we should not rewrite.
func Backup(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	ts := time.Now().Format("20060102-150405")
	dst := path + "." + ts + ".bak"
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}
