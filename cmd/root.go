package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"photo-reconciler/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Persistent flags shared by every subcommand. Empty values leave the loaded
// configuration untouched.
var (
	configDir string
	sourceDir string
	destDir   string
	backupDir string
	logDir    string
	dryRun    bool
	yes       bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "photo-reconciler",
	Short: "Reconcile photo libraries between sync locations",
	Long: `Photo Reconciler compares two photo and video trees, typically an old sync
location and the one a current client writes to, and moves, renames, overwrites or
deletes files so that nothing is lost. Every mutating stage asks for confirmation
and writes a run log.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	// Interrupts cancel the run between files; the current file operation completes
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// Console format and debug level give readable ISO8601 output for a CLI
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config", ".", "Directory containing .env and photo-reconciler.toml")
	flags.StringVar(&sourceDir, "source", "", "Source root (overrides paths.source)")
	flags.StringVar(&destDir, "dest", "", "Destination root (overrides paths.destination)")
	flags.StringVar(&backupDir, "backup", "", "Backup root for overwritten files (overrides paths.backup)")
	flags.StringVar(&logDir, "log-dir", "", "Directory for run logs (overrides paths.log_dir)")
	flags.BoolVar(&dryRun, "dry-run", false, "Report planned actions without changing anything")
	flags.BoolVar(&yes, "yes", false, "Auto-confirm every stage (non-interactive)")
}
