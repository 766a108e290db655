package timematch

import (
	"context"
	"fmt"
	"time"

	"photo-reconciler/core/index"
	"photo-reconciler/core/reconcile"
	"photo-reconciler/core/runlog"
	"photo-reconciler/core/utils"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// StageDelete is the stage name used for deleting matched sources.
const StageDelete = "delete_matched"

// Options describes one timestamp matching run.
type Options struct {
	Source      string
	Destination string
	// Suffix is the marker between the time and the extension, e.g. "_iOS".
	Suffix string
	// Extensions limits both sides, e.g. [".mov"].
	Extensions []string
	// Location is the zone destination creation times are read in. Nil means local.
	Location *time.Location
}

// Result collects everything a run produced.
type Result struct {
	Match *reconcile.TimestampMatch
	Stage *reconcile.StageResult
	Logs  []string
}

// Service runs timestamp matching.
type Service struct {
	indexer  *index.Indexer
	executor *reconcile.Executor
	logs     *runlog.Writer
	clock    utils.Clock
	logger   *zap.Logger
}

// NewService creates a new timestamp matching service.
func NewService(fs afero.Fs, executor *reconcile.Executor, logs *runlog.Writer, clock utils.Clock, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = utils.RealClock{}
	}
	return &Service{
		indexer:  index.NewIndexer(fs, logger),
		executor: executor,
		logs:     logs,
		clock:    clock,
		logger:   logger,
	}
}

// Run matches source files to destination files and offers deletion of matched sources.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	ix := s.indexer.WithExtensions(opts.Extensions...)

	srcKeyer := index.NewFilenameTimestampKeyer(opts.Suffix, opts.Extensions)
	src, err := ix.Index(ctx, opts.Source, srcKeyer)
	if err != nil {
		return nil, fmt.Errorf("failed to index source: %w", err)
	}

	dstKeyer := index.CreatedTimeKeyer{Location: opts.Location, ScanTime: s.clock.Now()}
	dst, err := ix.Index(ctx, opts.Destination, dstKeyer)
	if err != nil {
		return nil, fmt.Errorf("failed to index destination: %w", err)
	}

	m := reconcile.MatchByTimestamp(src, dst)
	res := &Result{Match: m}

	s.logger.Info("Timestamp matching complete",
		zap.Int("sources", m.Summary.Sources),
		zap.Int("destinations", m.Summary.Destinations),
		zap.Int("matched", m.Summary.Matched),
		zap.Int("ambiguous", m.Summary.Ambiguous),
		zap.Int("no_counterpart", m.Summary.NoCounterpart),
		zap.Int("unkeyed", m.Summary.Unkeyed),
	)
	for _, amb := range m.ByStatus(reconcile.StatusAmbiguous) {
		s.logger.Warn("Ambiguous timestamp match needs manual review",
			zap.String("key", amb.Key),
			zap.Int("source_entries", len(amb.A)),
			zap.Int("destination_entries", len(amb.B)),
			zap.Error(amb.Err()),
		)
	}

	header := []runlog.Field{
		runlog.F("Source", opts.Source),
		runlog.F("Destination", opts.Destination),
	}
	s.writeLog(res, "timestamp_matches", runlog.TimestampReport(header, m))

	plan := reconcile.PlanDeleteSource(m.ByStatus(reconcile.StatusMatched))
	if len(plan) == 0 {
		s.logger.Info("No matched source files to delete")
		return res, nil
	}

	stage := s.executor.Apply(ctx, StageDelete, plan)
	res.Stage = &stage
	s.writeLog(res, StageDelete+"_log", runlog.StageReport("Matched Source Deletion Log", header, stage))

	return res, nil
}

func (s *Service) writeLog(res *Result, prefix string, report *runlog.Report) {
	path, err := s.logs.Write(prefix, report)
	if err != nil {
		s.logger.Warn("Failed to write run log", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	res.Logs = append(res.Logs, path)
}
