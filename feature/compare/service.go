package compare

import (
	"context"
	"fmt"

	"photo-reconciler/core/index"
	"photo-reconciler/core/metadata"
	"photo-reconciler/core/reconcile"
	"photo-reconciler/core/runlog"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Stage names, also used as run log prefixes.
const (
	StageMove      = "move"
	StageRename    = "rename"
	StageOverwrite = "overwrite"
)

// Options describes one compare run.
type Options struct {
	Source      string
	Destination string
	// Backup enables the overwrite stage. Empty skips it.
	Backup string
	// PreserveTree keeps relative directories when moving source-only files.
	PreserveTree bool
	// ExportPath, when set, receives the comparison as YAML.
	ExportPath string
}

// Result collects everything a run produced.
type Result struct {
	Comparison *reconcile.Comparison
	Analysis   []reconcile.TagComparison
	Stages     []reconcile.StageResult
	Logs       []string
}

// Service runs name-based reconciliation.
type Service struct {
	fs        afero.Fs
	indexer   *index.Indexer
	extractor metadata.Extractor
	executor  *reconcile.Executor
	logs      *runlog.Writer
	logger    *zap.Logger
}

// NewService creates a new compare service.
func NewService(fs afero.Fs, extractor metadata.Extractor, executor *reconcile.Executor, logs *runlog.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fs:        fs,
		indexer:   index.NewIndexer(fs, logger),
		extractor: extractor,
		executor:  executor,
		logs:      logs,
		logger:    logger,
	}
}

// Run compares both trees and applies the three stages in order.
// Only a missing source or destination root is returned as an error.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	src, err := s.indexer.Index(ctx, opts.Source, index.NameKeyer{})
	if err != nil {
		return nil, fmt.Errorf("failed to index source: %w", err)
	}
	dst, err := s.indexer.Index(ctx, opts.Destination, index.NameKeyer{})
	if err != nil {
		return nil, fmt.Errorf("failed to index destination: %w", err)
	}

	cmp := reconcile.CompareByName(src, dst)
	res := &Result{Comparison: cmp}

	s.logger.Info("Comparison complete",
		zap.Int("source_files", cmp.Summary.FilesA),
		zap.Int("destination_files", cmp.Summary.FilesB),
		zap.Int("identical", cmp.Summary.Identical),
		zap.Int("size_mismatches", cmp.Summary.SizeMismatches),
		zap.Int("duplicate_groups", cmp.Summary.DuplicateGroups),
		zap.Int("only_in_source", cmp.Summary.OnlyInA),
		zap.Int("only_in_destination", cmp.Summary.OnlyInB),
		zap.Strings("source_duplicate_names", src.Duplicates()),
		zap.Strings("destination_duplicate_names", dst.Duplicates()),
	)
	for _, dup := range cmp.ByStatus(reconcile.StatusDuplicateGroup) {
		s.logger.Warn("Duplicate name needs manual review",
			zap.String("name", dup.Key),
			zap.Int("source_entries", len(dup.A)),
			zap.Int("destination_entries", len(dup.B)),
			zap.Error(dup.Err()),
		)
	}

	s.writeLog(res, "comparison_report", runlog.ComparisonReport(cmp))

	if opts.ExportPath != "" {
		if err := runlog.ExportYAML(s.fs, opts.ExportPath, cmp); err != nil {
			s.logger.Warn("Failed to export comparison", zap.String("path", opts.ExportPath), zap.Error(err))
		} else {
			s.logger.Info("Exported comparison", zap.String("path", opts.ExportPath))
		}
	}

	header := []runlog.Field{runlog.F("Source", opts.Source), runlog.F("Destination", opts.Destination)}

	// Stage 1: files missing from the destination
	moves := reconcile.PlanMoveUnique(cmp.OnlyInA(), opts.Destination, opts.PreserveTree)
	s.applyStage(ctx, res, StageMove, "Move Operation Log", header, moves)

	// Stage 2: same name, different size
	renames := reconcile.PlanMoveWithRename(cmp.SizeMismatches(), opts.Destination)
	s.applyStage(ctx, res, StageRename, "Different Size Move Log", header, renames)

	// Stage 3: same name and size, better metadata
	if opts.Backup == "" {
		s.logger.Info("No backup directory configured, skipping overwrite stage")
		return res, nil
	}
	overwrites, analysis, err := reconcile.PlanOverwriteIfBetter(ctx, cmp.ByStatus(reconcile.StatusIdentical), s.extractor)
	if err != nil {
		return res, fmt.Errorf("failed to analyze metadata: %w", err)
	}
	res.Analysis = analysis
	if len(analysis) > 0 {
		s.writeLog(res, "exif_analysis", runlog.TagAnalysisReport("Metadata Tag Analysis", header, analysis))
	}
	s.applyStage(ctx, res, StageOverwrite, "Overwrite Operation Log",
		append(header, runlog.F("Backup", opts.Backup)), overwrites)

	return res, nil
}

func (s *Service) applyStage(ctx context.Context, res *Result, stage, title string, header []runlog.Field, plan []reconcile.Action) {
	if len(plan) == 0 {
		s.logger.Info("Nothing to do", zap.String("stage", stage))
		return
	}
	stageResult := s.executor.Apply(ctx, stage, plan)
	res.Stages = append(res.Stages, stageResult)
	s.writeLog(res, stage+"_log", runlog.StageReport(title, header, stageResult))
}

func (s *Service) writeLog(res *Result, prefix string, report *runlog.Report) {
	path, err := s.logs.Write(prefix, report)
	if err != nil {
		s.logger.Warn("Failed to write run log", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	res.Logs = append(res.Logs, path)
}
