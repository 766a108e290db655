package cmd

import (
	"photo-reconciler/feature/survey"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// surveyCmd counts images under a directory.
var surveyCmd = &cobra.Command{
	Use:   "survey [dir]",
	Short: "Count images with and without a capture date, by year and month",
	Long: `Walk a directory and count image files with and without an embedded capture
date, grouped by year and month. The directory defaults to the configured source.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSurvey,
}

func init() {
	RootCmd.AddCommand(surveyCmd)
}

func runSurvey(cmd *cobra.Command, args []string) error {
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

	res, err := survey.NewService(a.fs, a.extractor, a.logs, a.log).Run(cmd.Context(), root)
	if err != nil {
		return err
	}

	for _, m := range res.Months() {
		a.log.Info("Images by month", zap.String("month", m.String()), zap.Int("count", res.ByMonth[m]))
	}
	a.log.Info("Survey finished", zap.String("log", res.Log))
	return nil
}
