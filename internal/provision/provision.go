package provision

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/nginxutil/install-nginx/internal/apt"
	"github.com/nginxutil/install-nginx/internal/config"
	"github.com/nginxutil/install-nginx/internal/exitcodes"
	"github.com/nginxutil/install-nginx/internal/install"
	"github.com/nginxutil/install-nginx/internal/layout"
	"github.com/nginxutil/install-nginx/internal/logger"
	"github.com/nginxutil/install-nginx/internal/manifest"
	"github.com/nginxutil/install-nginx/internal/sysuser"
	"github.com/nginxutil/install-nginx/internal/tmpfiles"
)

// External-system clients the pipeline drives. Narrow interfaces so
// tests can substitute fakes for the host-mutating pieces.
type (
	// UserProvisioner ensures the service account exists.
	UserProvisioner interface {
		Ensure(ctx context.Context, name string) error
	}

	// LayoutProvisioner creates and owns the directory tree.
	LayoutProvisioner interface {
		Ensure(ctx context.Context, cfg config.Config) error
	}

	// DirectiveWriter persists the boot-time PID directory rule.
	DirectiveWriter interface {
		Write(pidFolder, username string) error
	}

	// PackageFetcher acquires the service binary from the vendor package.
	PackageFetcher interface {
		FetchBinary(ctx context.Context, opts apt.FetchOptions) (string, error)
		CandidateVersion(ctx context.Context) (string, error)
	}

	// ArtifactInstaller places the binary and run-script.
	ArtifactInstaller interface {
		Install(ctx context.Context, binarySrc string, cfg config.Config) error
	}
)

// Options configures one provisioning run.
type Options struct {
	Config   config.Config
	Codename string       // OS release codename, derived before the run
	WorkDir  string       // download/extract scratch area; "" means cwd
	Progress func(string) // per-step message callback
	DryRun   bool         // list the steps, mutate nothing
}

// Service executes the provisioning sequence: user, directories, boot
// directive, package fetch, install, manifest. Strictly ordered and
// fail-fast: the first failing step aborts the run, completed steps'
// side effects stay in place, nothing is retried or rolled back.
type Service struct {
	users   UserProvisioner
	layout  LayoutProvisioner
	boot    DirectiveWriter
	pkgs    PackageFetcher
	install ArtifactInstaller
}

// New wires the service against the real host. The config decides
// where the boot directive lands.
func New(cfg config.Config, aptClient *apt.Client) *Service {
	return &Service{
		users:   sysuser.New(),
		layout:  layout.New(),
		boot:    tmpfiles.Writer{Path: cfg.TmpfilesFile},
		pkgs:    aptClient,
		install: install.New(),
	}
}

// NewWith allows injecting all collaborators for testing.
func NewWith(u UserProvisioner, l LayoutProvisioner, b DirectiveWriter, p PackageFetcher, i ArtifactInstaller) *Service {
	return &Service{users: u, layout: l, boot: b, pkgs: p, install: i}
}

// step is one named, fallible stage of the pipeline.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// Run executes the pipeline. On failure the returned error is a step
// failure carrying the step name and the underlying tool's error.
func (s *Service) Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	progress := opts.Progress
	if progress == nil {
		progress = func(string) {}
	}
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		workDir = wd
	}

	// The fetch step stages the binary here; the install step consumes it.
	stagedBinary := filepath.Join(workDir, "nginx")

	steps := []step{
		{"ensure service user", func(ctx context.Context) error {
			return s.users.Ensure(ctx, cfg.ServiceUser)
		}},
		{"ensure directory layout", func(ctx context.Context) error {
			return s.layout.Ensure(ctx, cfg)
		}},
		{"write boot pid directive", func(ctx context.Context) error {
			return s.boot.Write(cfg.PIDFolder, cfg.ServiceUser)
		}},
		{"fetch service binary", func(ctx context.Context) error {
			_, err := s.pkgs.FetchBinary(ctx, apt.FetchOptions{
				SigningKeyPath: cfg.SigningKeyPath,
				Codename:       opts.Codename,
				DestPath:       stagedBinary,
				WorkDir:        workDir,
				Progress:       progress,
			})
			return err
		}},
		{"install artifacts", func(ctx context.Context) error {
			return s.install.Install(ctx, stagedBinary, cfg)
		}},
		{"record manifest", func(ctx context.Context) error {
			return s.writeManifest(ctx, cfg, opts.Codename)
		}},
	}

	for _, st := range steps {
		progress(st.name)
		if opts.DryRun {
			continue
		}
		logger.InfoKV("running step", "step", st.name)
		if err := st.run(ctx); err != nil {
			logger.ErrorKV("step failed", "step", st.name, "error", err)
			return exitcodes.StepErr(st.name, err)
		}
	}
	return nil
}

func (s *Service) writeManifest(ctx context.Context, cfg config.Config, codename string) error {
	sum, err := manifest.Checksum(cfg.BinaryPath())
	if err != nil {
		return err
	}
	m := manifest.Manifest{
		ProvisionedAt:  time.Now().UTC(),
		ServiceUser:    cfg.ServiceUser,
		BinaryPath:     cfg.BinaryPath(),
		BinaryChecksum: sum,
		Codename:       codename,
	}
	// Best effort: the candidate version is informational.
	if v, verr := s.pkgs.CandidateVersion(ctx); verr == nil {
		m.PackageVersion = v
	}
	return manifest.Save(cfg.ManifestPath(), m)
}
