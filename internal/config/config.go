package config

import (
	"os"
	"path/filepath"

	"github.com/nginxutil/install-nginx/internal/exitcodes"
)

// Well-known host paths the provisioner touches beyond the install tree.
const (
	DefaultGlobalLogDir   = "/var/log/nginx"
	DefaultGlobalCacheDir = "/var/cache/nginx"

	// DefaultSourcesFile is where the vendor package feeds are registered.
	DefaultSourcesFile = "/etc/apt/sources.list.d/nginx.list"

	// DefaultTmpfilesFile receives the boot-time PID directory directive.
	DefaultTmpfilesFile = "/etc/tmpfiles.d/nginx.conf"
)

// Config holds the resolved settings for one provisioning run.
// Built once from defaults + env + flags and treated as immutable after
// Validate.
type Config struct {
	SigningKeyPath string // vendor package signing key (required)
	InstallPath    string // install tree root
	ServiceUser    string // unprivileged account the binary runs as
	PIDFolder      string // volatile PID directory, recreated at boot

	GlobalLogDir   string // host-wide nginx log directory
	GlobalCacheDir string // host-wide nginx cache directory
	SourcesFile    string // apt source list destination
	TmpfilesFile   string // tmpfiles.d directive destination
}

// Defaults returns the stock layout for an nginx install.
func Defaults() Config {
	return Config{
		InstallPath:    "/opt/nginx",
		ServiceUser:    "nginx",
		PIDFolder:      "/var/run/nginx",
		GlobalLogDir:   DefaultGlobalLogDir,
		GlobalCacheDir: DefaultGlobalCacheDir,
		SourcesFile:    DefaultSourcesFile,
		TmpfilesFile:   DefaultTmpfilesFile,
	}
}

// Load returns defaults with environment overrides applied. Flags are
// applied on top by the command layer.
func Load() Config {
	cfg := Defaults()
	if v := os.Getenv("NGINX_INSTALL_PATH"); v != "" {
		cfg.InstallPath = v
	}
	if v := os.Getenv("NGINX_SERVICE_USER"); v != "" {
		cfg.ServiceUser = v
	}
	if v := os.Getenv("NGINX_PID_FOLDER"); v != "" {
		cfg.PIDFolder = v
	}
	return cfg
}

// BinDir returns the directory the binary and run-script land in.
func (c Config) BinDir() string { return filepath.Join(c.InstallPath, "bin") }

// ConfDir returns the per-install configuration directory.
func (c Config) ConfDir() string { return filepath.Join(c.InstallPath, "config") }

// LogDir returns the per-install log directory.
func (c Config) LogDir() string { return filepath.Join(c.InstallPath, "log") }

// BinaryPath returns the final location of the extracted binary.
func (c Config) BinaryPath() string { return filepath.Join(c.BinDir(), "nginx") }

// RunScriptPath returns the final location of the companion run-script.
func (c Config) RunScriptPath() string { return filepath.Join(c.BinDir(), "run-nginx") }

// ManifestPath returns where the install manifest is recorded.
func (c Config) ManifestPath() string { return filepath.Join(c.InstallPath, ".install-manifest.json") }

// Validate checks the invariants that must hold before any provisioning
// step executes: all four primary fields non-empty and the signing key
// present on disk.
func (c Config) Validate() error {
	if c.SigningKeyPath == "" {
		return exitcodes.UsageErr("--signing-key is required")
	}
	if c.InstallPath == "" || c.ServiceUser == "" || c.PIDFolder == "" {
		return exitcodes.UsageErr("install path, user, and pid folder must not be empty")
	}
	if _, err := os.Stat(c.SigningKeyPath); err != nil {
		return exitcodes.UsageErrf("signing key %s: not readable", c.SigningKeyPath)
	}
	return nil
}
