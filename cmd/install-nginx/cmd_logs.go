package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	ui "github.com/nginxutil/install-nginx/internal/ui"
)

var flagLogFile string

// logDeps holds injectable dependencies for handleLogsCore.
type logDeps struct {
	isTerminal  func(fd int) bool
	stat        func(name string) (os.FileInfo, error)
	followTUI   func(file string) error
	followPlain func(ctx context.Context, file string) error
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Follow an nginx log file",
	Long:  "Follow an nginx log file. Interactive sessions get a scrollback viewer; pipes get plain line output.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleLogs()
	},
}

func handleLogs() error {
	return handleLogsCore(logDeps{
		isTerminal:  func(fd int) bool { return term.IsTerminal(fd) },
		stat:        os.Stat,
		followTUI:   ui.FollowFile,
		followPlain: followPlain,
	})
}

// handleLogsCore contains the testable core logic for handleLogs.
func handleLogsCore(deps logDeps) error {
	cfg := loadCfg()
	lp := flagLogFile
	if lp == "" {
		lp = filepath.Join(cfg.GlobalLogDir, "error.log")
	}

	if _, err := deps.stat(lp); err != nil {
		if flagOutput == "json" {
			getPrinter().JSON(map[string]any{"ok": false, "error": "log file not found", "path": lp})
		} else {
			getPrinter().Error(fmt.Sprintf("log file not found: %s", lp))
		}
		return fmt.Errorf("log file not found: %s", lp)
	}

	interactive := deps.isTerminal(int(os.Stdin.Fd())) && deps.isTerminal(int(os.Stdout.Fd())) && !flagNonInteractive
	if interactive {
		return deps.followTUI(lp)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return deps.followPlain(ctx, lp)
}

// followPlain streams appended lines to stdout until interrupted.
// Used when stdout is not a terminal (pipes, service logs).
func followPlain(ctx context.Context, file string) error {
	t, err := tail.TailFile(file, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("tail %s: %w", file, err)
	}
	defer func() {
		_ = t.Stop()
		t.Cleanup()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return line.Err
			}
			fmt.Println(line.Text)
		}
	}
}

func init() {
	logsCmd.Flags().StringVar(&flagLogFile, "file", "", "Log file to follow (default <global log dir>/error.log)")
	rootCmd.AddCommand(logsCmd)
}
