package procstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writePIDFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, pidFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestProbe_NoPIDFile(t *testing.T) {
	p := NewWith(func(ctx context.Context, pid int32) (bool, error) {
		t.Fatal("pid check must not run without a pid file")
		return false, nil
	})

	st, err := p.Probe(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Running || st.PID != 0 {
		t.Errorf("expected not-running state, got %+v", st)
	}
}

func TestProbe_RunningProcess(t *testing.T) {
	dir := writePIDFile(t, "4242\n")
	var checked int32
	p := NewWith(func(ctx context.Context, pid int32) (bool, error) {
		checked = pid
		return true, nil
	})

	st, err := p.Probe(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Running || st.PID != 4242 {
		t.Errorf("got %+v", st)
	}
	if checked != 4242 {
		t.Errorf("probed pid %d", checked)
	}
}

func TestProbe_StalePIDFile(t *testing.T) {
	dir := writePIDFile(t, "4242")
	p := NewWith(func(ctx context.Context, pid int32) (bool, error) {
		return false, nil
	})

	st, err := p.Probe(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if st.Running {
		t.Error("dead pid reported as running")
	}
	if st.PID != 4242 {
		t.Errorf("pid = %d, stale pid should still be reported", st.PID)
	}
}

func TestProbe_EmptyPIDFile(t *testing.T) {
	dir := writePIDFile(t, "  \n")
	p := NewWith(func(ctx context.Context, pid int32) (bool, error) {
		t.Fatal("pid check must not run for an empty pid file")
		return false, nil
	})

	st, err := p.Probe(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Running {
		t.Error("empty pid file reported as running")
	}
}

func TestProbe_GarbagePIDFile(t *testing.T) {
	dir := writePIDFile(t, "not-a-pid")
	p := NewWith(func(ctx context.Context, pid int32) (bool, error) {
		return false, nil
	})

	if _, err := p.Probe(context.Background(), dir); err == nil {
		t.Fatal("expected parse error for garbage pid file")
	}
}
