package reconcile

import (
	"context"
	"fmt"
	"path/filepath"

	"photo-reconciler/core/metadata"
	"photo-reconciler/core/utils"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// DryRun skips every action without asking for confirmation.
	DryRun bool
	// RenameSuffix is inserted before the extension by MoveWithRename.
	RenameSuffix string
	// BackupRoot receives destination files replaced by OverwriteIfBetter.
	BackupRoot string
	// BackupPrefix names the per-stage backup directory.
	BackupPrefix string
}

// Executor applies planned actions to a filesystem, one confirmation per stage.
type Executor struct {
	fs        afero.Fs
	confirmer Confirmer
	opts      ExecutorOptions
	clock     utils.Clock
	writer    metadata.CaptureWriter
	log       *zap.Logger
}

// NewExecutor creates an Executor. A nil logger disables logging.
func NewExecutor(fs afero.Fs, confirmer Confirmer, opts ExecutorOptions, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RenameSuffix == "" {
		opts.RenameSuffix = "_from_source"
	}
	if opts.BackupPrefix == "" {
		opts.BackupPrefix = "overwrite_backup"
	}
	return &Executor{
		fs:        fs,
		confirmer: confirmer,
		opts:      opts,
		clock:     utils.RealClock{},
		log:       log,
	}
}

// WithClock returns a copy of the Executor that stamps backups using clock.
func (e *Executor) WithClock(clock utils.Clock) *Executor {
	cp := *e
	cp.clock = clock
	return &cp
}

// WithCaptureWriter returns a copy of the Executor that applies
// ActionWriteCaptureTime through w.
func (e *Executor) WithCaptureWriter(w metadata.CaptureWriter) *Executor {
	cp := *e
	cp.writer = w
	return &cp
}

// Apply runs plan as a single stage. In dry-run mode every action is skipped.
// Otherwise the Confirmer is asked once; a refusal leaves the stage declined with no
// outcomes. Per-action failures are recorded and never stop the stage.
func (e *Executor) Apply(ctx context.Context, stage string, plan []Action) StageResult {
	result := StageResult{Stage: stage, DryRun: e.opts.DryRun, Planned: len(plan)}
	if len(plan) == 0 {
		return result
	}

	if e.opts.DryRun {
		for _, a := range plan {
			result.Outcomes = append(result.Outcomes, ActionOutcome{
				Action:      a,
				Status:      OutcomeSkipped,
				Source:      a.Source.Path,
				Destination: a.Destination,
				Reason:      "dry run",
			})
		}
		e.log.Info("Dry run, no changes made", zap.String("stage", stage), zap.Int("actions", len(plan)))
		return result
	}

	if !e.confirmer.Confirm(prompt(stage, plan)) {
		result.Declined = true
		e.log.Info("Stage declined", zap.String("stage", stage), zap.Int("actions", len(plan)))
		return result
	}

	// One backup directory per stage.
	backupDir := filepath.Join(e.opts.BackupRoot, e.opts.BackupPrefix+"_"+utils.RunStamp(e.clock.Now()))

	for _, a := range plan {
		var outcome ActionOutcome
		if err := ctx.Err(); err != nil {
			outcome = skipped(a, a.Destination, err.Error(), err)
		} else {
			outcome = e.apply(ctx, a, backupDir)
		}
		e.logOutcome(stage, outcome)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	e.log.Info("Stage complete",
		zap.String("stage", stage),
		zap.Int("moved", result.Count(OutcomeMoved)),
		zap.Int("deleted", result.Count(OutcomeDeleted)),
		zap.Int("updated", result.Count(OutcomeUpdated)),
		zap.Int("skipped", result.Count(OutcomeSkipped)),
		zap.Int("failed", result.Count(OutcomeFailed)),
	)

	return result
}

func (e *Executor) apply(ctx context.Context, a Action, backupDir string) ActionOutcome {
	switch a.Type {
	case ActionMoveUnique:
		return e.moveUnique(a)
	case ActionMoveWithRename:
		return e.moveWithRename(a)
	case ActionOverwriteIfBetter:
		return e.overwrite(a, backupDir)
	case ActionDeleteSource:
		return e.deleteSource(a)
	case ActionWriteCaptureTime:
		return e.writeCaptureTime(ctx, a)
	case ActionRemoveEmptyDir:
		return e.removeEmptyDir(a)
	default:
		err := fmt.Errorf("unknown action type %q", a.Type)
		return failed(a, a.Destination, err)
	}
}

func (e *Executor) moveUnique(a Action) ActionOutcome {
	dst := a.Destination
	if exists(e.fs, dst) {
		return skipped(a, dst, "destination exists", ErrNameCollision)
	}
	if err := e.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return failed(a, dst, fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err))
	}
	if err := moveFile(e.fs, a.Source.Path, dst); err != nil {
		return failed(a, dst, err)
	}
	return ActionOutcome{Action: a, Status: OutcomeMoved, Source: a.Source.Path, Destination: dst, Reason: a.Reason}
}

func (e *Executor) moveWithRename(a Action) ActionOutcome {
	dir := a.Destination
	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return failed(a, dir, fmt.Errorf("failed to create %s: %w", dir, err))
	}
	dst, err := uniqueName(e.fs, dir, a.Source.Stem(), e.opts.RenameSuffix, filepath.Ext(a.Source.Name))
	if err != nil {
		return failed(a, dir, err)
	}
	if err := moveFile(e.fs, a.Source.Path, dst); err != nil {
		return failed(a, dst, err)
	}
	return ActionOutcome{Action: a, Status: OutcomeMoved, Source: a.Source.Path, Destination: dst, Reason: a.Reason}
}

// overwrite moves the destination into backupDir, verifies the backup, and only then
// copies the source over the destination path.
func (e *Executor) overwrite(a Action, backupDir string) ActionOutcome {
	dst := a.Destination
	info, err := e.fs.Stat(dst)
	if err != nil {
		return skipped(a, dst, "destination no longer exists", err)
	}
	if _, err := e.fs.Stat(a.Source.Path); err != nil {
		return skipped(a, dst, "source no longer exists", err)
	}

	rel := a.Target.RelPath
	if rel == "" {
		rel = filepath.Base(dst)
	}
	backup := filepath.Join(backupDir, rel)

	if exists(e.fs, backup) {
		return failedBackup(a, dst, backup, fmt.Errorf("%s already exists", backup))
	}
	if err := e.fs.MkdirAll(filepath.Dir(backup), 0755); err != nil {
		return failedBackup(a, dst, backup, err)
	}
	if err := moveFile(e.fs, dst, backup); err != nil {
		return failedBackup(a, dst, backup, err)
	}

	backed, err := e.fs.Stat(backup)
	if err != nil {
		return failedBackup(a, dst, backup, err)
	}
	if backed.Size() != info.Size() {
		return failedBackup(a, dst, backup, fmt.Errorf("backup size %d, expected %d", backed.Size(), info.Size()))
	}
	if exists(e.fs, dst) {
		return failedBackup(a, dst, backup, fmt.Errorf("%s still present after backup", dst))
	}

	if err := copyFile(e.fs, a.Source.Path, dst); err != nil {
		if restoreErr := restore(e.fs, backup, dst); restoreErr != nil {
			outcome := failed(a, dst, fmt.Errorf("copy failed, original kept at %s (restore failed: %v): %w", backup, restoreErr, err))
			outcome.Backup = backup
			return outcome
		}
		return failed(a, dst, fmt.Errorf("copy failed, original restored: %w", err))
	}

	return ActionOutcome{
		Action:      a,
		Status:      OutcomeMoved,
		Source:      a.Source.Path,
		Destination: dst,
		Backup:      backup,
		Reason:      a.Reason,
	}
}

func (e *Executor) deleteSource(a Action) ActionOutcome {
	if !exists(e.fs, a.Destination) {
		return skipped(a, a.Destination, "counterpart no longer exists", nil)
	}
	if err := e.fs.Remove(a.Source.Path); err != nil {
		return failed(a, a.Destination, err)
	}
	return ActionOutcome{Action: a, Status: OutcomeDeleted, Source: a.Source.Path, Destination: a.Destination, Reason: a.Reason}
}

func (e *Executor) writeCaptureTime(ctx context.Context, a Action) ActionOutcome {
	if e.writer == nil {
		return skipped(a, a.Destination, "metadata backend cannot write dates", nil)
	}
	if err := e.writer.SetCaptureTime(ctx, a.Source.Path, a.CaptureTime); err != nil {
		return failed(a, a.Destination, err)
	}
	return ActionOutcome{Action: a, Status: OutcomeUpdated, Source: a.Source.Path, Destination: a.Destination, Reason: a.Reason}
}

func (e *Executor) removeEmptyDir(a Action) ActionOutcome {
	dir := a.Source.Path
	empty, err := afero.IsEmpty(e.fs, dir)
	if err != nil {
		return skipped(a, dir, "directory no longer readable", err)
	}
	if !empty {
		return skipped(a, dir, "directory no longer empty", nil)
	}
	if err := e.fs.Remove(dir); err != nil {
		return failed(a, dir, err)
	}
	return ActionOutcome{Action: a, Status: OutcomeDeleted, Source: dir, Reason: a.Reason}
}

func (e *Executor) logOutcome(stage string, o ActionOutcome) {
	fields := []zap.Field{
		zap.String("stage", stage),
		zap.String("source", o.Source),
		zap.String("destination", o.Destination),
	}
	switch o.Status {
	case OutcomeFailed:
		e.log.Warn("Action failed", append(fields, zap.Error(o.Err))...)
	case OutcomeSkipped:
		e.log.Info("Action skipped", append(fields, zap.String("reason", o.Reason))...)
	default:
		if o.Backup != "" {
			fields = append(fields, zap.String("backup", o.Backup))
		}
		e.log.Debug("Action applied", append(fields, zap.String("status", string(o.Status)))...)
	}
}

func prompt(stage string, plan []Action) string {
	var verb string
	switch plan[0].Type {
	case ActionMoveUnique, ActionMoveWithRename:
		verb = "Move"
	case ActionOverwriteIfBetter:
		verb = "Overwrite"
	case ActionDeleteSource:
		verb = "Delete"
	case ActionWriteCaptureTime:
		verb = "Write capture dates to"
	case ActionRemoveEmptyDir:
		return fmt.Sprintf("[%s] Remove %d empty director(ies)?", stage, len(plan))
	default:
		verb = "Apply"
	}
	return fmt.Sprintf("[%s] %s %d file(s)?", stage, verb, len(plan))
}

func skipped(a Action, dst, reason string, err error) ActionOutcome {
	return ActionOutcome{Action: a, Status: OutcomeSkipped, Source: a.Source.Path, Destination: dst, Reason: reason, Err: err}
}

func failed(a Action, dst string, err error) ActionOutcome {
	return ActionOutcome{Action: a, Status: OutcomeFailed, Source: a.Source.Path, Destination: dst, Reason: err.Error(), Err: err}
}

func failedBackup(a Action, dst, backup string, err error) ActionOutcome {
	err = fmt.Errorf("%w: %v", ErrBackupFailed, err)
	outcome := failed(a, dst, err)
	outcome.Backup = backup
	return outcome
}
