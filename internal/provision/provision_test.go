package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nginxutil/install-nginx/internal/apt"
	"github.com/nginxutil/install-nginx/internal/config"
	"github.com/nginxutil/install-nginx/internal/exitcodes"
	"github.com/nginxutil/install-nginx/internal/manifest"
)

// pipelineFakes records which collaborators ran, in order, and lets a
// test fail any one of them.
type pipelineFakes struct {
	order   []string
	failAt  string
	failErr error

	fetchOpts apt.FetchOptions
}

func (p *pipelineFakes) hit(name string) error {
	p.order = append(p.order, name)
	if name == p.failAt {
		return p.failErr
	}
	return nil
}

type fakeUsers struct{ p *pipelineFakes }

func (f fakeUsers) Ensure(ctx context.Context, name string) error { return f.p.hit("user") }

type fakeLayout struct{ p *pipelineFakes }

func (f fakeLayout) Ensure(ctx context.Context, cfg config.Config) error { return f.p.hit("layout") }

type fakeBoot struct{ p *pipelineFakes }

func (f fakeBoot) Write(pidFolder, username string) error { return f.p.hit("boot") }

type fakeFetcher struct {
	p       *pipelineFakes
	version string
}

func (f *fakeFetcher) FetchBinary(ctx context.Context, opts apt.FetchOptions) (string, error) {
	f.p.fetchOpts = opts
	return opts.DestPath, f.p.hit("fetch")
}

func (f *fakeFetcher) CandidateVersion(ctx context.Context) (string, error) {
	return f.version, nil
}

type fakeInstaller struct{ p *pipelineFakes }

func (f fakeInstaller) Install(ctx context.Context, binarySrc string, cfg config.Config) error {
	return f.p.hit("install")
}

func newTestService(p *pipelineFakes) *Service {
	return NewWith(fakeUsers{p}, fakeLayout{p}, fakeBoot{p}, &fakeFetcher{p: p, version: "1.25.3-1~jammy"}, fakeInstaller{p})
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.SigningKeyPath = "/tmp/nginx_signing.key"
	cfg.InstallPath = filepath.Join(t.TempDir(), "opt", "nginx")
	if err := os.MkdirAll(cfg.BinDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.BinaryPath(), []byte("ELF"), 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRun_StepOrder(t *testing.T) {
	p := &pipelineFakes{}
	err := newTestService(p).Run(context.Background(), Options{
		Config:   testConfig(t),
		Codename: "jammy",
		WorkDir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"user", "layout", "boot", "fetch", "install"}
	if !reflect.DeepEqual(p.order, want) {
		t.Errorf("step order = %v, want %v", p.order, want)
	}
}

func TestRun_FetchOptionsPlumbed(t *testing.T) {
	p := &pipelineFakes{}
	cfg := testConfig(t)
	work := t.TempDir()
	if err := newTestService(p).Run(context.Background(), Options{
		Config:   cfg,
		Codename: "focal",
		WorkDir:  work,
	}); err != nil {
		t.Fatal(err)
	}

	if p.fetchOpts.SigningKeyPath != cfg.SigningKeyPath {
		t.Errorf("signing key = %q", p.fetchOpts.SigningKeyPath)
	}
	if p.fetchOpts.Codename != "focal" {
		t.Errorf("codename = %q", p.fetchOpts.Codename)
	}
	if p.fetchOpts.DestPath != filepath.Join(work, "nginx") {
		t.Errorf("dest = %q", p.fetchOpts.DestPath)
	}
}

func TestRun_FailFast(t *testing.T) {
	cases := []struct {
		failAt   string
		wantStep string
		ranAfter []string
	}{
		{"user", "ensure service user", []string{"layout", "boot", "fetch", "install"}},
		{"layout", "ensure directory layout", []string{"boot", "fetch", "install"}},
		{"boot", "write boot pid directive", []string{"fetch", "install"}},
		{"fetch", "fetch service binary", []string{"install"}},
		{"install", "install artifacts", nil},
	}
	for _, tc := range cases {
		t.Run(tc.failAt, func(t *testing.T) {
			p := &pipelineFakes{failAt: tc.failAt, failErr: errors.New("boom")}
			err := newTestService(p).Run(context.Background(), Options{
				Config:   testConfig(t),
				Codename: "jammy",
				WorkDir:  t.TempDir(),
			})
			if err == nil {
				t.Fatal("expected pipeline failure")
			}

			var ke *exitcodes.KindedError
			if !errors.As(err, &ke) {
				t.Fatalf("error %T is not a step failure", err)
			}
			if ke.Kind != exitcodes.KindStep || ke.Step != tc.wantStep {
				t.Errorf("got kind=%v step=%q, want step %q", ke.Kind, ke.Step, tc.wantStep)
			}

			for _, later := range tc.ranAfter {
				for _, ran := range p.order {
					if ran == later {
						t.Errorf("step %q ran after failure at %q", later, tc.failAt)
					}
				}
			}
		})
	}
}

func TestRun_WritesManifest(t *testing.T) {
	p := &pipelineFakes{}
	cfg := testConfig(t)
	if err := newTestService(p).Run(context.Background(), Options{
		Config:   cfg,
		Codename: "jammy",
		WorkDir:  t.TempDir(),
	}); err != nil {
		t.Fatal(err)
	}

	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if m.ServiceUser != cfg.ServiceUser || m.BinaryPath != cfg.BinaryPath() {
		t.Errorf("manifest fields off: %+v", m)
	}
	if m.PackageVersion != "1.25.3-1~jammy" {
		t.Errorf("package version = %q", m.PackageVersion)
	}
	if ok, _ := manifest.Verify(m); !ok {
		t.Error("fresh manifest should verify against the binary")
	}
}

func TestRun_DryRunExecutesNothing(t *testing.T) {
	p := &pipelineFakes{}
	var announced []string
	cfg := testConfig(t)
	if err := newTestService(p).Run(context.Background(), Options{
		Config:   cfg,
		Codename: "jammy",
		WorkDir:  t.TempDir(),
		DryRun:   true,
		Progress: func(msg string) { announced = append(announced, msg) },
	}); err != nil {
		t.Fatal(err)
	}

	if len(p.order) != 0 {
		t.Errorf("dry run executed steps: %v", p.order)
	}
	if len(announced) != 6 {
		t.Errorf("expected all 6 steps announced, got %v", announced)
	}
	if _, err := os.Stat(cfg.ManifestPath()); !os.IsNotExist(err) {
		t.Error("dry run wrote a manifest")
	}
}
