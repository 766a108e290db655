package cmd

import (
	"fmt"
	"os"

	"photo-reconciler/core/config"
	"photo-reconciler/core/logger"
	"photo-reconciler/core/metadata"
	"photo-reconciler/core/reconcile"
	"photo-reconciler/core/runlog"
	"photo-reconciler/core/utils"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// ids generates the run id attached to every log line.
var ids utils.IDGenerator = utils.UUIDGenerator{}

// app holds the collaborators every subcommand is built from.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	fs        afero.Fs
	clock     utils.Clock
	extractor metadata.Extractor
	executor  *reconcile.Executor
	logs      *runlog.Writer
}

// newApp loads configuration, applies flag overrides and wires the shared services.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg)

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	l = logger.WithRunID(l, ids.New())

	fs := afero.NewOsFs()
	clock := utils.RealClock{}

	extractor, err := metadata.New(cfg.Metadata, fs, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metadata backend: %w", err)
	}

	executor := reconcile.NewExecutor(fs, confirmer(cfg.Policy), reconcile.ExecutorOptions{
		DryRun:       cfg.Policy.DryRun,
		RenameSuffix: cfg.Policy.RenameSuffix,
		BackupRoot:   cfg.Paths.Backup,
		BackupPrefix: cfg.Policy.BackupPrefix,
	}, l).WithClock(clock)
	if w, ok := extractor.(metadata.CaptureWriter); ok {
		executor = executor.WithCaptureWriter(w)
	}

	return &app{
		cfg:       cfg,
		log:       l,
		fs:        fs,
		clock:     clock,
		extractor: extractor,
		executor:  executor,
		logs:      runlog.NewWriter(fs, cfg.Paths.LogDir, clock, l),
	}, nil
}

func applyFlags(cfg *config.Config) {
	if sourceDir != "" {
		cfg.Paths.Source = sourceDir
	}
	if destDir != "" {
		cfg.Paths.Destination = destDir
	}
	if backupDir != "" {
		cfg.Paths.Backup = backupDir
	}
	if logDir != "" {
		cfg.Paths.LogDir = logDir
	}
	if dryRun {
		cfg.Policy.DryRun = true
	}
	if yes {
		cfg.Policy.AutoConfirm = true
	}
}

// confirmer picks how stages are confirmed: --yes approves everything, a terminal
// gets a prompt, anything else declines.
func confirmer(policy reconcile.Policy) reconcile.Confirmer {
	if policy.AutoConfirm {
		return reconcile.AutoConfirmer{}
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return reconcile.NewPromptConfirmer(os.Stdin, os.Stdout)
	}
	return reconcile.DeclineConfirmer{}
}

// logStages prints a one-line summary per applied stage.
func logStages(l *zap.Logger, stages ...reconcile.StageResult) {
	for _, s := range stages {
		if s.Declined {
			l.Warn("Stage cancelled by user. No changes were made.", zap.String("stage", s.Stage))
			continue
		}
		l.Info("Stage result",
			zap.String("stage", s.Stage),
			zap.Bool("dry_run", s.DryRun),
			zap.Int("planned", s.Planned),
			zap.Int("moved", s.Count(reconcile.OutcomeMoved)),
			zap.Int("deleted", s.Count(reconcile.OutcomeDeleted)),
			zap.Int("updated", s.Count(reconcile.OutcomeUpdated)),
			zap.Int("skipped", s.Count(reconcile.OutcomeSkipped)),
			zap.Int("failed", s.Count(reconcile.OutcomeFailed)),
		)
	}
}
