package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/spf13/cobra"

	"github.com/nginxutil/install-nginx/internal/apt"
	"github.com/nginxutil/install-nginx/internal/config"
	"github.com/nginxutil/install-nginx/internal/exitcodes"
	"github.com/nginxutil/install-nginx/internal/manifest"
	"github.com/nginxutil/install-nginx/internal/procstate"
	ui "github.com/nginxutil/install-nginx/internal/ui"
)

// statusResult is what a previous provisioning run left on the host.
type statusResult struct {
	UserExists       bool   `json:"user_exists" yaml:"user_exists"`
	LayoutPresent    bool   `json:"layout_present" yaml:"layout_present"`
	BootDirective    bool   `json:"boot_directive" yaml:"boot_directive"`
	SourcesPresent   bool   `json:"sources_present" yaml:"sources_present"`
	BinaryPresent    bool   `json:"binary_present" yaml:"binary_present"`
	ManifestPresent  bool   `json:"manifest_present" yaml:"manifest_present"`
	BinaryDrift      bool   `json:"binary_drift" yaml:"binary_drift"`
	InstalledVersion string `json:"installed_version,omitempty" yaml:"installed_version,omitempty"`
	CandidateVersion string `json:"candidate_version,omitempty" yaml:"candidate_version,omitempty"`
	UpdateAvailable  bool   `json:"update_available" yaml:"update_available"`
	Running          bool   `json:"running" yaml:"running"`
	PID              int32  `json:"pid,omitempty" yaml:"pid,omitempty"`
	Error            string `json:"error,omitempty" yaml:"error,omitempty"`
}

func computeStatus(ctx context.Context, cfg config.Config) statusResult {
	var res statusResult

	if _, err := user.Lookup(cfg.ServiceUser); err == nil {
		res.UserExists = true
	}

	res.LayoutPresent = true
	for _, dir := range []string{cfg.InstallPath, cfg.BinDir(), cfg.ConfDir(), cfg.LogDir()} {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			res.LayoutPresent = false
			break
		}
	}

	if _, err := os.Stat(cfg.TmpfilesFile); err == nil {
		res.BootDirective = true
	}
	if _, err := os.Stat(cfg.SourcesFile); err == nil {
		res.SourcesPresent = true
	}
	if _, err := os.Stat(cfg.BinaryPath()); err == nil {
		res.BinaryPresent = true
	}

	if m, err := manifest.Load(cfg.ManifestPath()); err == nil {
		res.ManifestPresent = true
		res.InstalledVersion = m.PackageVersion
		if ok, verr := manifest.Verify(m); verr == nil && !ok {
			res.BinaryDrift = true
		}
	}

	// Candidate lookup talks to apt; best effort with a short timeout.
	aptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	aptClient := apt.New()
	aptClient.SourcesFile = cfg.SourcesFile
	if candidate, err := aptClient.CandidateVersion(aptCtx); err == nil && candidate != "" {
		res.CandidateVersion = candidate
		if res.InstalledVersion != "" {
			res.UpdateAvailable = apt.IsNewerVersion(res.InstalledVersion, candidate)
		}
	}

	if st, err := procstate.New().Probe(ctx, cfg.PIDFolder); err == nil {
		res.Running = st.Running
		res.PID = st.PID
	} else {
		res.Error = err.Error()
	}

	return res
}

func printStatusText(res statusResult, cfg config.Config) {
	p := getPrinter()
	c := p.Colors

	p.Section("Provisioned State")
	statusLine(p, "service user "+cfg.ServiceUser, res.UserExists, "present", "missing")
	statusLine(p, "directory layout "+cfg.InstallPath, res.LayoutPresent, "present", "missing")
	statusLine(p, "boot directive "+cfg.TmpfilesFile, res.BootDirective, "present", "missing")
	statusLine(p, "apt sources "+cfg.SourcesFile, res.SourcesPresent, "present", "missing")
	statusLine(p, "binary "+cfg.BinaryPath(), res.BinaryPresent, "present", "missing")

	p.Section("Binary")
	if !res.ManifestPresent {
		fmt.Printf("%s no install manifest\n", c.StatusIcon("warning"))
	} else if res.BinaryDrift {
		fmt.Printf("%s binary differs from last provisioned checksum\n", c.StatusIcon("drift"))
	} else {
		fmt.Printf("%s checksum matches manifest\n", c.StatusIcon("ok"))
	}
	if res.InstalledVersion != "" {
		p.KeyValueLine("installed", res.InstalledVersion, "")
	}
	if res.CandidateVersion != "" {
		color := "dim"
		if res.UpdateAvailable {
			color = "yellow"
		}
		p.KeyValueLine("candidate", res.CandidateVersion, color)
	}

	p.Section("Process")
	if res.Running {
		fmt.Printf("%s nginx running (pid %d)\n", c.StatusIcon("running"), res.PID)
	} else {
		fmt.Printf("%s nginx not running\n", c.StatusIcon("stopped"))
	}
	if res.Error != "" {
		p.Warn(res.Error)
	}
}

func statusLine(p ui.Printer, what string, ok bool, okWord, badWord string) {
	c := p.Colors
	if ok {
		fmt.Printf("%s %s %s\n", c.StatusIcon("ok"), what, c.Description(okWord))
	} else {
		fmt.Printf("%s %s %s\n", c.StatusIcon("missing"), what, c.Error(badWord))
	}
}

// statusIncomplete reports whether --strict should fail the command.
func statusIncomplete(res statusResult) bool {
	return !res.UserExists || !res.LayoutPresent || !res.BootDirective ||
		!res.BinaryPresent || res.BinaryDrift || res.Error != ""
}

func init() {
	var statusStrict bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show what a previous run left on the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadCfg()
			res := computeStatus(cmd.Context(), cfg)

			p := getPrinter()
			p.Structured(res, func() {
				if flagQuiet {
					fmt.Printf("user=%v layout=%v binary=%v drift=%v running=%v\n",
						res.UserExists, res.LayoutPresent, res.BinaryPresent, res.BinaryDrift, res.Running)
				} else {
					printStatusText(res, cfg)
				}
			})

			if statusStrict && statusIncomplete(res) {
				return exitcodes.PreconditionErr("host provisioning is incomplete")
			}
			return nil
		},
	}
	statusCmd.Flags().BoolVar(&statusStrict, "strict", false, "Exit non-zero if provisioning is incomplete or the binary drifted")
	rootCmd.AddCommand(statusCmd)
}
