package cmd

import (
	"time"

	"photo-reconciler/feature/timematch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var timezone string

// timematchCmd pairs source videos with destination files by capture instant.
var timematchCmd = &cobra.Command{
	Use:   "match-timestamps",
	Short: "Match timestamp-named source files to destination files by creation time",
	Long: `Match source files named like 20230615_123456789_iOS.mov to destination files
whose creation time falls in the same second, then offer to delete the matched
source files. Keys with several candidates on either side are reported for manual
review and never deleted.

The suffix and extensions come from the [timestamps] config section.

Examples:
  photo-reconciler match-timestamps --source old --dest new --dry-run
  photo-reconciler match-timestamps --source old --dest new --timezone Europe/Amsterdam`,
	RunE: runTimematch,
}

func init() {
	timematchCmd.Flags().StringVar(&timezone, "timezone", "", "IANA zone destination creation times are read in (default local)")

	RootCmd.AddCommand(timematchCmd)
}

func runTimematch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if err := a.cfg.RequirePaths("source", "destination"); err != nil {
		return err
	}

	loc := time.Local
	if timezone != "" {
		if loc, err = time.LoadLocation(timezone); err != nil {
			return err
		}
	}

	a.log.Info("Starting timestamp matching",
		zap.String("source", a.cfg.Paths.Source),
		zap.String("destination", a.cfg.Paths.Destination),
		zap.String("suffix", a.cfg.Timestamps.Suffix),
		zap.Strings("extensions", a.cfg.Timestamps.Extensions),
		zap.String("timezone", loc.String()),
	)

	svc := timematch.NewService(a.fs, a.executor, a.logs, a.clock, a.log)
	res, err := svc.Run(cmd.Context(), timematch.Options{
		Source:      a.cfg.Paths.Source,
		Destination: a.cfg.Paths.Destination,
		Suffix:      a.cfg.Timestamps.Suffix,
		Extensions:  a.cfg.Timestamps.Extensions,
		Location:    loc,
	})
	if err != nil {
		return err
	}

	if res.Stage != nil {
		logStages(a.log, *res.Stage)
	}
	a.log.Info("Timestamp matching finished", zap.Strings("logs", res.Logs))
	return nil
}
