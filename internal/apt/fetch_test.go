package apt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fetchRunner fakes the download and extract side effects so the whole
// acquisition sequence can run against a temp directory.
func fetchRunner(t *testing.T, failOn string) *scriptedRunner {
	t.Helper()
	r := &scriptedRunner{failOn: failOn}
	r.onRunIn = func(dir string, call []string) error {
		// apt-get download nginx
		return os.WriteFile(filepath.Join(dir, "nginx_1.18.0-1_amd64.deb"), []byte("deb"), 0o644)
	}
	return r
}

// extractingRunner additionally materializes the payload on dpkg-deb -x.
type extractingRunner struct {
	*scriptedRunner
}

func (e *extractingRunner) Run(ctx context.Context, name string, args ...string) error {
	if err := e.scriptedRunner.Run(ctx, name, args...); err != nil {
		return err
	}
	if name == "dpkg-deb" && len(args) == 3 && args[0] == "-x" {
		payload := filepath.Join(args[2], "usr", "sbin", "nginx")
		if err := os.MkdirAll(filepath.Dir(payload), 0o755); err != nil {
			return err
		}
		return os.WriteFile(payload, []byte("ELF"), 0o755)
	}
	return nil
}

func baseOptions(t *testing.T, work string) FetchOptions {
	t.Helper()
	key := filepath.Join(work, "signing.key")
	if err := os.WriteFile(key, []byte("key"), 0o644); err != nil {
		t.Fatal(err)
	}
	return FetchOptions{
		SigningKeyPath: key,
		Codename:       "bionic",
		DestPath:       filepath.Join(work, "opt", "nginx", "bin", "nginx"),
		WorkDir:        work,
	}
}

func TestFetchBinary_FullSequence(t *testing.T) {
	work := t.TempDir()
	r := &extractingRunner{fetchRunner(t, "")}
	c := NewWith(r)
	c.SourcesFile = filepath.Join(work, "nginx.list")

	var steps []string
	opts := baseOptions(t, work)
	opts.Progress = func(msg string) { steps = append(steps, msg) }

	dest, err := c.FetchBinary(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest != opts.DestPath {
		t.Errorf("dest = %s, want %s", dest, opts.DestPath)
	}
	if b, err := os.ReadFile(dest); err != nil || string(b) != "ELF" {
		t.Errorf("binary not relocated: %v", err)
	}

	// Archive and scratch tree are gone.
	if m, _ := filepath.Glob(filepath.Join(work, "*.deb")); len(m) != 0 {
		t.Errorf("archive not deleted: %v", m)
	}
	if _, err := os.Stat(filepath.Join(work, scratchDirName)); !os.IsNotExist(err) {
		t.Error("scratch tree not deleted")
	}

	// Ordered external tool sequence.
	var names []string
	for _, call := range r.calls {
		names = append(names, call[0])
	}
	want := []string{"apt-key", "apt-get", "apt-get", "dpkg-deb"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("tool sequence = %v, want %v", names, want)
	}
	if len(steps) != 5 {
		t.Errorf("expected 5 progress messages, got %v", steps)
	}
}

func TestFetchBinary_KeyImportFailureAbortsEverything(t *testing.T) {
	work := t.TempDir()
	r := fetchRunner(t, "apt-key")
	c := NewWith(r)
	c.SourcesFile = filepath.Join(work, "nginx.list")

	_, err := c.FetchBinary(context.Background(), baseOptions(t, work))
	if err == nil {
		t.Fatal("expected abort on key import failure")
	}
	if len(r.calls) != 1 {
		t.Errorf("expected no calls after the failing one, got %v", r.calls)
	}
	if _, serr := os.Stat(c.SourcesFile); !os.IsNotExist(serr) {
		t.Error("sources written despite earlier step failing")
	}
}

func TestFetchBinary_DownloadFailureLeavesNoBinary(t *testing.T) {
	work := t.TempDir()
	r := &scriptedRunner{}
	r.onRunIn = func(dir string, call []string) error {
		return os.ErrDeadlineExceeded // network error stand-in
	}
	c := NewWith(r)
	c.SourcesFile = filepath.Join(work, "nginx.list")

	opts := baseOptions(t, work)
	_, err := c.FetchBinary(context.Background(), opts)
	if err == nil {
		t.Fatal("expected download failure to abort")
	}
	if _, serr := os.Stat(opts.DestPath); !os.IsNotExist(serr) {
		t.Error("destination binary must not exist after failed download")
	}
	// Earlier side effects persist: fail-fast, no rollback.
	if _, serr := os.Stat(c.SourcesFile); serr != nil {
		t.Error("sources entry should persist after later failure")
	}
}

func TestFetchBinary_PayloadMissing(t *testing.T) {
	work := t.TempDir()
	// Extract "succeeds" but produces no usr/sbin/nginx.
	r := fetchRunner(t, "")
	c := NewWith(r)
	c.SourcesFile = filepath.Join(work, "nginx.list")

	_, err := c.FetchBinary(context.Background(), baseOptions(t, work))
	if err == nil {
		t.Fatal("expected error for missing payload binary")
	}
}

func TestIsNewerVersion(t *testing.T) {
	cases := []struct {
		current, candidate string
		want               bool
	}{
		{"1.18.0", "1.20.1-1~bionic", true},
		{"1.20.1", "1.20.1-1~bionic", false},
		{"1.21.0", "1.20.1", false},
		{"unknown", "1.20.1", true},
		{"1.18.0", "garbage", false},
		{"1:1.18.0-0ubuntu1", "1:1.18.0-0ubuntu3", false},
	}
	for _, tc := range cases {
		if got := IsNewerVersion(tc.current, tc.candidate); got != tc.want {
			t.Errorf("IsNewerVersion(%q, %q) = %v, want %v", tc.current, tc.candidate, got, tc.want)
		}
	}
}
