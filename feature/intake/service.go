package intake

import (
	"context"
	"database/sql"
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
	StageDeleteDuplicates = "delete_duplicates"
	StageWriteDates       = "write_dates"
	StageMove             = "intake_move"
)

// Options describes one intake run.
type Options struct {
	Source      string
	Destination string
	// WriteDates stores folder-derived capture dates in the files before moving them.
	WriteDates bool
	// Extensions limits the source files considered. Empty means all.
	Extensions []string
}

// Dated is a source file with its resolved capture date.
type Dated struct {
	Record     index.FileRecord
	Resolution metadata.Resolution
}

// Result collects everything a run produced.
type Result struct {
	Comparison *reconcile.Comparison
	Dated      []Dated
	Undated    []index.FileRecord
	Stages     []reconcile.StageResult
	Logs       []string
}

// Service runs intake.
type Service struct {
	indexer   *index.Indexer
	extractor metadata.Extractor
	resolver  *metadata.Resolver
	executor  *reconcile.Executor
	logs      *runlog.Writer
	logger    *zap.Logger
}

// NewService creates a new intake service.
func NewService(fs afero.Fs, extractor metadata.Extractor, executor *reconcile.Executor, logs *runlog.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		indexer:   index.NewIndexer(fs, logger),
		extractor: extractor,
		resolver:  metadata.NewResolver(extractor, false, logger),
		executor:  executor,
		logs:      logs,
		logger:    logger,
	}
}

// Run deletes confirmed duplicates, writes missing dates and moves new files.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	ix := s.indexer.WithExtensions(opts.Extensions...)
	src, err := ix.Index(ctx, opts.Source, index.NameKeyer{})
	if err != nil {
		return nil, fmt.Errorf("failed to index source: %w", err)
	}
	dst, err := ix.Index(ctx, opts.Destination, index.NameKeyer{})
	if err != nil {
		return nil, fmt.Errorf("failed to index destination: %w", err)
	}
	// New files land at the top of the destination, so only names there can collide.
	dst = dst.Filter(func(r index.FileRecord) bool { return r.RelDir() == "." })

	cmp := reconcile.CompareByName(src, dst)
	res := &Result{Comparison: cmp}

	header := []runlog.Field{runlog.F("Source", opts.Source), runlog.F("Destination", opts.Destination)}

	// Same name and size: delete the source only when tag counts also agree
	duplicates, err := s.duplicates(ctx, cmp.ByStatus(reconcile.StatusIdentical))
	if err != nil {
		return res, err
	}
	s.applyStage(ctx, res, StageDeleteDuplicates, "Duplicate Deletion Log", header, reconcile.PlanDeleteSource(duplicates))

	for _, rec := range cmp.OnlyInA() {
		r, err := s.resolver.Resolve(ctx, rec.Path)
		if err != nil {
			return res, fmt.Errorf("failed to resolve capture dates: %w", err)
		}
		if !r.Known() {
			res.Undated = append(res.Undated, rec)
			continue
		}
		rec.CaptureTime = sql.NullTime{Time: r.Time, Valid: true}
		res.Dated = append(res.Dated, Dated{Record: rec, Resolution: r})
	}

	s.logger.Info("Intake analysis complete",
		zap.Int("source_files", cmp.Summary.FilesA),
		zap.Int("new_files", len(cmp.OnlyInA())),
		zap.Int("dated", len(res.Dated)),
		zap.Int("undated", len(res.Undated)),
		zap.Int("duplicates", len(duplicates)),
		zap.Int("size_mismatches", cmp.Summary.SizeMismatches),
	)
	for _, rec := range res.Undated {
		s.logger.Warn("No capture date found, file left in place", zap.String("path", rec.Path))
	}
	s.writeLog(res, "intake_dates", dateReport(header, res, cmp))

	if opts.WriteDates {
		s.writeDates(ctx, res, header)
	}

	records := make([]index.FileRecord, 0, len(res.Dated))
	for _, d := range res.Dated {
		records = append(records, d.Record)
	}
	s.applyStage(ctx, res, StageMove, "Intake Move Log", header, reconcile.PlanMoveUnique(records, opts.Destination, false))

	return res, nil
}

func (s *Service) writeDates(ctx context.Context, res *Result, header []runlog.Field) {
	if _, ok := s.extractor.(metadata.CaptureWriter); !ok {
		s.logger.Warn("Metadata backend cannot write dates, skipping date writes")
		return
	}
	var items []reconcile.DatedRecord
	for _, d := range res.Dated {
		if d.Resolution.Source != metadata.SourceFolder {
			continue
		}
		items = append(items, reconcile.DatedRecord{Record: d.Record, Time: d.Resolution.Time})
	}
	s.applyStage(ctx, res, StageWriteDates, "Capture Date Write Log", header, reconcile.PlanWriteCaptureTime(items))
}

// duplicates narrows identical pairs to those whose tag counts are known and equal.
func (s *Service) duplicates(ctx context.Context, identical []reconcile.MatchResult) ([]reconcile.MatchResult, error) {
	if len(identical) == 0 {
		return nil, nil
	}
	_, analysis, err := reconcile.PlanOverwriteIfBetter(ctx, identical, s.extractor)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze metadata: %w", err)
	}
	same := make(map[string]bool, len(analysis))
	for _, a := range analysis {
		if a.SourceKnown && a.TargetKnown && a.SourceTags == a.TargetTags {
			same[a.Key] = true
		}
	}
	var out []reconcile.MatchResult
	for _, r := range identical {
		if same[r.Key] {
			out = append(out, r)
		}
	}
	return out, nil
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

func dateReport(header []runlog.Field, res *Result, cmp *reconcile.Comparison) *runlog.Report {
	counts := make(map[metadata.DateSource]int)
	for _, d := range res.Dated {
		counts[d.Resolution.Source]++
	}
	r := &runlog.Report{
		Title:  "Intake Date Report",
		Header: header,
		Summary: []runlog.Field{
			runlog.F("New files", len(res.Dated)+len(res.Undated)),
			runlog.F("Date from metadata", counts[metadata.SourceMetadata]),
			runlog.F("Date from folder", counts[metadata.SourceFolder]),
			runlog.F("No date", len(res.Undated)),
			runlog.F("Size mismatches (not moved)", cmp.Summary.SizeMismatches),
			runlog.F("Duplicate names (not moved)", cmp.Summary.DuplicateGroups),
		},
	}

	var dated []runlog.Block
	for _, d := range res.Dated {
		dated = append(dated, runlog.Block{Fields: []runlog.Field{
			runlog.F("File", d.Record.Path),
			runlog.F("Date", d.Resolution.Time.Format("2006-01-02 15:04:05")),
			runlog.F("Source", d.Resolution.Source),
		}})
	}
	r.AddSection(runlog.Section{Title: "DATED FILES", Blocks: dated})

	var undated []runlog.Block
	for _, rec := range res.Undated {
		undated = append(undated, runlog.Block{Fields: []runlog.Field{runlog.F("File", rec.Path)}})
	}
	r.AddSection(runlog.Section{Title: "FILES WITHOUT A DATE", Blocks: undated})

	var mismatched []runlog.Block
	for _, m := range cmp.SizeMismatches() {
		mismatched = append(mismatched, runlog.Block{Fields: []runlog.Field{
			runlog.F("Source", m.A[0].Path),
			runlog.F("Destination", m.B[0].Path),
			runlog.F("Size difference", m.SizeDiff),
		}})
	}
	r.AddSection(runlog.Section{Title: "SIZE MISMATCHES", Blocks: mismatched})

	return r
}
