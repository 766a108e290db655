package cmd

import (
	"photo-reconciler/feature/intake"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	writeDates       bool
	intakeExtensions []string
)

// intakeCmd brings new files into a flat destination.
var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Move new files into the destination, resolving capture dates",
	Long: `Move source files that are missing from the destination into it (flat),
after resolving a capture date from metadata or from a YYYY/MM folder path.
Files with no date are reported and left in place.

Source files already present at the destination with the same size and the same
number of metadata tags are offered for deletion first.

Examples:
  photo-reconciler intake --source inbox --dest library --dry-run

  # Store folder-derived dates in the files before moving (exiftool backend)
  photo-reconciler intake --source inbox --dest library --write-dates

  # Videos only
  photo-reconciler intake --source inbox --dest videos --ext .mov --ext .mp4`,
	RunE: runIntake,
}

func init() {
	intakeCmd.Flags().BoolVar(&writeDates, "write-dates", false, "Write folder-derived capture dates into files before moving")
	intakeCmd.Flags().StringSliceVar(&intakeExtensions, "ext", nil, "Only consider files with these extensions")

	RootCmd.AddCommand(intakeCmd)
}

func runIntake(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if err := a.cfg.RequirePaths("source", "destination"); err != nil {
		return err
	}

	svc := intake.NewService(a.fs, a.extractor, a.executor, a.logs, a.log)
	res, err := svc.Run(cmd.Context(), intake.Options{
		Source:      a.cfg.Paths.Source,
		Destination: a.cfg.Paths.Destination,
		WriteDates:  writeDates,
		Extensions:  intakeExtensions,
	})
	if err != nil {
		return err
	}

	logStages(a.log, res.Stages...)
	a.log.Info("Intake finished", zap.Strings("logs", res.Logs))
	return nil
}
