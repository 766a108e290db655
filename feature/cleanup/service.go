package cleanup

import (
	"context"
	"fmt"
	"path/filepath"

	"photo-reconciler/core/index"
	"photo-reconciler/core/reconcile"
	"photo-reconciler/core/runlog"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// StagePrune is the stage name used for removing empty directories.
const StagePrune = "prune_empty"

// Result collects everything a run produced.
type Result struct {
	// Empty lists the directories found empty, children before parents.
	Empty  []string
	Errors []index.ScanError
	Stage  *reconcile.StageResult
	Log    string
}

// Service prunes empty directories.
type Service struct {
	fs       afero.Fs
	executor *reconcile.Executor
	logs     *runlog.Writer
	logger   *zap.Logger
}

// NewService creates a new cleanup service.
func NewService(fs afero.Fs, executor *reconcile.Executor, logs *runlog.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fs: fs, executor: executor, logs: logs, logger: logger}
}

// Run finds the directories under root that are empty, or contain only empty
// directories, and removes them after confirmation.
func (s *Service) Run(ctx context.Context, root string) (*Result, error) {
	info, err := s.fs.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", index.ErrRootNotFound, root)
	}

	res := &Result{}
	if _, err := s.collect(ctx, root, true, res); err != nil {
		return nil, err
	}

	s.logger.Info("Empty directory scan complete",
		zap.String("root", root),
		zap.Int("empty", len(res.Empty)),
		zap.Int("unreadable", len(res.Errors)),
	)
	if len(res.Empty) == 0 {
		return res, nil
	}

	stage := s.executor.Apply(ctx, StagePrune, reconcile.PlanRemoveEmptyDirs(root, res.Empty))
	res.Stage = &stage

	path, err := s.logs.Write(StagePrune+"_log", runlog.StageReport("Empty Directory Removal Log",
		[]runlog.Field{runlog.F("Directory", root)}, stage))
	if err != nil {
		s.logger.Warn("Failed to write run log", zap.String("prefix", StagePrune), zap.Error(err))
	} else {
		res.Log = path
	}

	return res, nil
}

// collect reports whether dir would be empty once its empty subdirectories are
// removed, appending every such subdirectory to res.Empty in post-order.
func (s *Service) collect(ctx context.Context, dir string, isRoot bool, res *Result) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		s.logger.Warn("Failed to read path", zap.String("path", dir), zap.Error(err))
		res.Errors = append(res.Errors, index.ScanError{Path: dir, Err: err})
		return false, nil
	}

	empty := true
	for _, entry := range entries {
		if !entry.IsDir() {
			empty = false
			continue
		}
		sub, err := s.collect(ctx, filepath.Join(dir, entry.Name()), false, res)
		if err != nil {
			return false, err
		}
		if !sub {
			empty = false
		}
	}

	if empty && !isRoot {
		res.Empty = append(res.Empty, dir)
	}
	return empty, nil
}
