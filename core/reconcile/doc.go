// Package reconcile compares two directory indexes and applies file-level
// reconciliation actions between them.
//
// # Architecture
//
// Reconciliation runs in three steps:
//
// 1. Match: CompareByName classifies every case-folded name as identical,
// size_mismatch, duplicate_group, only_in_a or only_in_b. MatchByTimestamp pairs
// timestamp keys as matched, ambiguous or no_counterpart. Keys with more than one
// record on either side are never paired automatically.
//
// 2. Plan: PlanMoveUnique, PlanMoveWithRename, PlanOverwriteIfBetter and
// PlanDeleteSource turn match results into Actions without touching the filesystem.
//
// 3. Apply: Executor.Apply asks its Confirmer once per stage and then executes each
// action, re-checking the destination immediately before mutating it. Every action
// ends as moved, deleted, skipped or failed; failures never stop the stage.
//
// Overwrites always move the destination into a timestamped backup directory and
// verify it before copying the source over it.
//
// # Usage Example
//
//	cmp := reconcile.CompareByName(srcIdx, dstIdx)
//	plan := reconcile.PlanMoveWithRename(cmp.SizeMismatches(), dstRoot)
//
//	exec := reconcile.NewExecutor(fs, reconcile.AutoConfirmer{}, reconcile.ExecutorOptions{
//	    BackupRoot: backupRoot,
//	}, log)
//	result := exec.Apply(ctx, "rename", plan)
package reconcile
