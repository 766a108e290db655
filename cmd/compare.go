package cmd

import (
	"photo-reconciler/feature/compare"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportPath   string
	preserveTree bool
)

// compareCmd reconciles two trees by file name.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare source and destination by file name and reconcile them",
	Long: `Compare the source and destination trees by file name, then run three
separately confirmed stages:

  1. Move files missing from the destination.
  2. Move same-named files of a different size under a suffixed name.
  3. Overwrite identical files when the source carries more metadata tags
     (only when a backup directory is configured).

Names that occur more than once on either side are reported and never touched.

Examples:
  # Report and plan only
  photo-reconciler compare --source old --dest new --dry-run

  # Run every stage with interactive confirmation
  photo-reconciler compare --source old --dest new --backup backups

  # Export the comparison as YAML
  photo-reconciler compare --source old --dest new --export comparison.yaml --dry-run`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&exportPath, "export", "", "Write the comparison as YAML to this file")
	compareCmd.Flags().BoolVar(&preserveTree, "preserve-tree", false, "Keep relative directories when moving missing files")

	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if err := a.cfg.RequirePaths("source", "destination"); err != nil {
		return err
	}

	a.log.Info("Starting name comparison",
		zap.String("source", a.cfg.Paths.Source),
		zap.String("destination", a.cfg.Paths.Destination),
	)

	svc := compare.NewService(a.fs, a.extractor, a.executor, a.logs, a.log)
	res, err := svc.Run(cmd.Context(), compare.Options{
		Source:       a.cfg.Paths.Source,
		Destination:  a.cfg.Paths.Destination,
		Backup:       a.cfg.Paths.Backup,
		PreserveTree: preserveTree || a.cfg.Policy.PreserveTree,
		ExportPath:   exportPath,
	})
	if err != nil {
		return err
	}

	logStages(a.log, res.Stages...)
	a.log.Info("Compare finished", zap.Strings("logs", res.Logs))
	return nil
}
