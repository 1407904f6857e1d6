package sysuser

import (
	"context"
	"errors"
	"testing"
)

// fakeRunner just records invocations without executing anything.
type fakeRunner struct {
	calls [][]string
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.err
}

func TestEnsure_CreatesMissingUser(t *testing.T) {
	r := &fakeRunner{}
	p := NewWith(r, func(name string) (bool, error) { return false, nil })

	if err := p.Ensure(context.Background(), "nginx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("expected one useradd call, got %d", len(r.calls))
	}
	call := r.calls[0]
	if call[0] != "useradd" || call[len(call)-1] != "nginx" {
		t.Errorf("unexpected call: %v", call)
	}
}

func TestEnsure_ExistingUserUntouched(t *testing.T) {
	r := &fakeRunner{}
	p := NewWith(r, func(name string) (bool, error) { return true, nil })

	if err := p.Ensure(context.Background(), "nginx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("expected no mutation for existing user, got %v", r.calls)
	}
}

func TestEnsure_Idempotent(t *testing.T) {
	// First call creates; the account then "exists" for the second call.
	created := false
	r := &fakeRunner{}
	p := NewWith(r, func(name string) (bool, error) { return created, nil })

	if err := p.Ensure(context.Background(), "nginx"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	created = true
	if err := p.Ensure(context.Background(), "nginx"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("expected exactly one useradd across both calls, got %d", len(r.calls))
	}
}

func TestEnsure_UseraddFailure(t *testing.T) {
	r := &fakeRunner{err: errors.New("exit 1")}
	p := NewWith(r, func(name string) (bool, error) { return false, nil })

	if err := p.Ensure(context.Background(), "nginx"); err == nil {
		t.Fatal("expected useradd failure to propagate")
	}
}

func TestEnsure_LookupFailure(t *testing.T) {
	r := &fakeRunner{}
	p := NewWith(r, func(name string) (bool, error) { return false, errors.New("nss broken") })

	if err := p.Ensure(context.Background(), "nginx"); err == nil {
		t.Fatal("expected lookup failure to propagate")
	}
	if len(r.calls) != 0 {
		t.Fatal("must not attempt creation when lookup fails")
	}
}
