package cmd

import (
	"photo-reconciler/feature/cleanup"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// pruneCmd removes empty directories.
var pruneCmd = &cobra.Command{
	Use:   "prune-empty [dir]",
	Short: "Remove empty directories below a root",
	Long: `Remove every directory below the given root that is empty or holds only empty
directories, deepest first. The root itself is kept. The directory defaults to the
configured source.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrune,
}

func init() {
	RootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	root := a.cfg.Paths.Source
	if len(args) == 1 {
		root = args[0]
	} else if err := a.cfg.RequirePaths("source"); err != nil {
		return err
	}

	res, err := cleanup.NewService(a.fs, a.executor, a.logs, a.log).Run(cmd.Context(), root)
	if err != nil {
		return err
	}

	if res.Stage != nil {
		logStages(a.log, *res.Stage)
	}
	a.log.Info("Prune finished", zap.Int("empty", len(res.Empty)), zap.String("log", res.Log))
	return nil
}
