package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nginxutil/install-nginx/internal/apt"
	"github.com/nginxutil/install-nginx/internal/config"
	"github.com/nginxutil/install-nginx/internal/exitcodes"
	"github.com/nginxutil/install-nginx/internal/logger"
	"github.com/nginxutil/install-nginx/internal/provision"
	"github.com/nginxutil/install-nginx/internal/system"
	ui "github.com/nginxutil/install-nginx/internal/ui"
)

// Version information - set via -ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// rootCmd wires the CLI surface using Cobra. The root command itself is
// the provisioning operation; subcommands cover diagnostics (doctor,
// status, logs) and plumbing (version, completion). Persistent flags
// are applied to a loaded config in loadCfg().
var rootCmd = &cobra.Command{
	Use:           "install-nginx",
	Short:         "Provision nginx from the vendor apt repository",
	Long:          "Provision an Ubuntu host with nginx: service user, directory layout, boot PID directive, vendor package fetch, and binary install.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize global UI config from flags after parsing but before
		// command execution.
		ui.InitGlobal(ui.Config{
			NoColor: flagNoColor,
			NoEmoji: flagNoEmoji,
		})

		// Set NO_COLOR env so lipgloss and other libraries respect the flag
		if flagNoColor {
			os.Setenv("NO_COLOR", "1")
		}

		switch {
		case flagVerbose:
			if lvl, ok := logger.ParseLevel("debug"); ok {
				logger.SetLevel(lvl)
			}
		case flagQuiet:
			if lvl, ok := logger.ParseLevel("error"); ok {
				logger.SetLevel(lvl)
			}
		}
	},
	RunE: runInstall,
}

var (
	flagSigningKey     string
	flagPath           string
	flagUser           string
	flagPIDFolder      string
	flagWorkDir        string
	flagDryRun         bool
	flagOutput         string
	flagVerbose        bool
	flagQuiet          bool
	flagNoColor        bool
	flagNoEmoji        bool
	flagNonInteractive bool
)

func init() {
	// Flag parse failures (unknown flag, missing value) are usage
	// errors: message plus usage text, exit 1.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcodes.UsageErr(err.Error())
	})

	// Install flags (root command only)
	rootCmd.Flags().StringVarP(&flagSigningKey, "signing-key", "k", "", "Path to the vendor package signing key (required)")
	rootCmd.Flags().StringVar(&flagPath, "path", "", "Install tree root (default /opt/nginx)")
	rootCmd.Flags().StringVar(&flagUser, "user", "", "Service account name (default nginx)")
	rootCmd.Flags().StringVar(&flagPIDFolder, "pid-folder", "", "PID directory (default /var/run/nginx)")
	rootCmd.Flags().StringVar(&flagWorkDir, "work-dir", "", "Scratch directory for download/extract (default cwd)")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "List the provisioning steps without executing them")

	// Persistent flags shared by all commands
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format: json|yaml|text")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet mode: minimal output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable ANSI colors")
	rootCmd.PersistentFlags().BoolVar(&flagNoEmoji, "no-emoji", false, "Disable emoji output")
	rootCmd.PersistentFlags().BoolVar(&flagNonInteractive, "non-interactive", false, "Never start interactive views")

	// Replace root help to present grouped, example-rich output.
	// Only apply custom help to the root command; subcommands use cobra's default help.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			fmt.Fprintln(os.Stdout, cmd.UsageString())
			return
		}
		// Help runs before PersistentPreRun, so manually configure colors
		c := ui.NewColorConfig()
		c.Enabled = c.Enabled && !flagNoColor
		c.EmojiEnabled = c.EmojiEnabled && !flagNoEmoji
		w := os.Stdout

		fmt.Fprintln(w, c.Header(" install-nginx "))
		fmt.Fprintln(w, c.Description("Provision an Ubuntu host with nginx from the vendor apt repository."))
		fmt.Fprintln(w, c.Separator(50))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.Header("USAGE"))
		fmt.Fprintf(w, "  install-nginx --signing-key <file> [flags]\n")
		fmt.Fprintf(w, "  install-nginx <command> [flags]\n")
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.Header("FLAGS"))
		fmt.Fprintln(w, c.FormatFlag("-k, --signing-key <file>", "Vendor package signing key (required)"))
		fmt.Fprintln(w, c.FormatFlag("    --path <dir>        ", "Install tree root (default /opt/nginx)"))
		fmt.Fprintln(w, c.FormatFlag("    --user <name>       ", "Service account (default nginx)"))
		fmt.Fprintln(w, c.FormatFlag("    --pid-folder <dir>  ", "PID directory (default /var/run/nginx)"))
		fmt.Fprintln(w, c.FormatFlag("    --dry-run           ", "List steps without executing"))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.Header("COMMANDS"))
		fmt.Fprintln(w, c.FormatFlag("doctor    ", "Check host preconditions and resources"))
		fmt.Fprintln(w, c.FormatFlag("status    ", "Show what a previous run left on the host"))
		fmt.Fprintln(w, c.FormatFlag("logs      ", "Follow an nginx log file"))
		fmt.Fprintln(w, c.FormatFlag("version   ", "Show version"))
		fmt.Fprintln(w, c.FormatFlag("completion", "Generate shell completion"))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.Header("EXAMPLES"))
		fmt.Fprintln(w, c.Description("  sudo install-nginx --signing-key ./nginx_signing.key"))
		fmt.Fprintln(w, c.Description("  sudo install-nginx -k ./nginx_signing.key --path /srv/nginx --user www-data"))
		fmt.Fprintln(w, c.Description("  install-nginx --signing-key ./nginx_signing.key --dry-run"))
		fmt.Fprintln(w)
	})
}

// runInstall is the root operation: validate inputs, enforce
// preconditions, then run the provisioning pipeline.
func runInstall(cmd *cobra.Command, args []string) error {
	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Preconditions are enforced before any step runs. Dry runs mutate
	// nothing, so they may run unprivileged.
	if !flagDryRun {
		if err := system.NewGuard().Check(); err != nil {
			return err
		}
	}
	codename, err := system.Codename()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := getPrinter()
	progress := func(msg string) {
		if !flagQuiet {
			p.Step(msg)
		}
	}

	aptClient := apt.New()
	aptClient.SourcesFile = cfg.SourcesFile

	svc := provision.New(cfg, aptClient)
	if err := svc.Run(ctx, provision.Options{
		Config:   cfg,
		Codename: codename,
		WorkDir:  flagWorkDir,
		Progress: progress,
		DryRun:   flagDryRun,
	}); err != nil {
		return err
	}

	if flagDryRun {
		p.Info("dry run: no changes were made")
		return nil
	}
	if !flagQuiet {
		printInstallSummary(cfg, codename)
	}
	return nil
}

// printInstallSummary renders the post-install box with the paths the
// operator needs next.
func printInstallSummary(cfg config.Config, codename string) {
	label := lipgloss.NewStyle().Bold(true)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("10")).
		Padding(0, 2)

	body := fmt.Sprintf("%s\n\n%s %s\n%s %s\n%s %s\n%s %s",
		label.Foreground(lipgloss.Color("10")).Render("nginx provisioned"),
		label.Render("binary:    "), cfg.BinaryPath(),
		label.Render("run-script:"), cfg.RunScriptPath(),
		label.Render("user:      "), cfg.ServiceUser,
		label.Render("codename:  "), codename,
	)
	fmt.Println(box.Render(body))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		presentError(err)
		os.Exit(exitcodes.CodeForError(err))
	}
}

// presentError renders a failure according to its kind: usage errors
// get the usage text, everything else a structured message.
func presentError(err error) {
	if exitcodes.IsUsage(err) {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, rootCmd.UsageString())
		return
	}

	switch exitcodes.KindOf(err) {
	case exitcodes.KindStep:
		ui.PrintError(ui.ErrorMessage{
			Problem: err.Error(),
			Causes:  []string{"a provisioning tool returned a non-zero exit status"},
			Actions: []string{"inspect the output above", "re-run after fixing the failing step; completed steps are idempotent"},
		})
	case exitcodes.KindPrecondition:
		ui.PrintError(ui.ErrorMessage{
			Problem: err.Error(),
			Actions: []string{"run 'install-nginx doctor' to check the host"},
		})
	default:
		fmt.Fprintln(os.Stderr, err)
	}
}
