package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMoveFile_CreatesParents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "a", "b", "dst")
	if err := os.WriteFile(src, []byte("payload"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still present after move")
	}
	b, err := os.ReadFile(dst)
	if err != nil || string(b) != "payload" {
		t.Errorf("destination content = %q, err %v", b, err)
	}
}

func TestMoveFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := MoveFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nginx.list")
	if err := os.WriteFile(path, []byte("deb ...\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bak, err := Backup(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(bak, path+".") || !strings.HasSuffix(bak, ".bak") {
		t.Errorf("unexpected backup name %q", bak)
	}
	b, err := os.ReadFile(bak)
	if err != nil || string(b) != "deb ...\n" {
		t.Errorf("backup content = %q, err %v", b, err)
	}
}

func TestBackup_MissingFile(t *testing.T) {
	if _, err := Backup(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
