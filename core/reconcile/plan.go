package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"photo-reconciler/core/index"
	"photo-reconciler/core/metadata"
)

// TagComparison is the metadata analysis of one identical pair.
type TagComparison struct {
	Key        string           `yaml:"key"`
	Source     index.FileRecord `yaml:"source"`
	Target     index.FileRecord `yaml:"target"`
	SourceTags int              `yaml:"source_tags"`
	TargetTags int              `yaml:"target_tags"`
	// SourceKnown and TargetKnown are false when the count fell back to zero.
	SourceKnown bool `yaml:"source_known"`
	TargetKnown bool `yaml:"target_known"`
}

// Better reports whether the source carries strictly more tags than the target.
func (c TagComparison) Better() bool {
	return c.SourceTags > c.TargetTags
}

// PlanMoveUnique plans moving records into dstRoot under their own name.
// With preserveTree the record's relative directory is kept, otherwise the
// destination is flat.
func PlanMoveUnique(records []index.FileRecord, dstRoot string, preserveTree bool) []Action {
	actions := make([]Action, 0, len(records))
	for _, rec := range records {
		dest := filepath.Join(dstRoot, rec.Name)
		if preserveTree {
			dest = filepath.Join(dstRoot, rec.RelPath)
		}
		actions = append(actions, Action{
			Type:        ActionMoveUnique,
			Source:      rec,
			Destination: dest,
			Reason:      "missing in destination",
		})
	}
	return actions
}

// PlanMoveWithRename plans moving the source side of each size mismatch into the
// matching relative directory under dstRoot. The final name is chosen when applied.
func PlanMoveWithRename(mismatches []MatchResult, dstRoot string) []Action {
	actions := make([]Action, 0, len(mismatches))
	for _, r := range mismatches {
		if r.Status != StatusSizeMismatch || len(r.A) != 1 || len(r.B) != 1 {
			continue
		}
		src := r.A[0]
		actions = append(actions, Action{
			Type:        ActionMoveWithRename,
			Source:      src,
			Target:      r.B[0],
			Destination: filepath.Join(dstRoot, src.RelDir()),
			Reason:      fmt.Sprintf("size differs by %d bytes", r.SizeDiff),
		})
	}
	return actions
}

// PlanOverwriteIfBetter counts tags on both sides of each identical pair and plans an
// overwrite where the source has strictly more. Unavailable counts are treated as zero.
// The returned analysis covers every pair, planned or not.
func PlanOverwriteIfBetter(ctx context.Context, identical []MatchResult, ex metadata.Extractor) ([]Action, []TagComparison, error) {
	var pairs []MatchResult
	var paths []string
	for _, r := range identical {
		if r.Status != StatusIdentical || len(r.A) != 1 || len(r.B) != 1 {
			continue
		}
		pairs = append(pairs, r)
		paths = append(paths, r.A[0].Path, r.B[0].Path)
	}
	if len(pairs) == 0 {
		return nil, nil, nil
	}

	counts, err := tagCounts(ctx, ex, paths)
	if err != nil {
		return nil, nil, err
	}

	var actions []Action
	analysis := make([]TagComparison, 0, len(pairs))
	for _, r := range pairs {
		src, dst := r.A[0], r.B[0]
		srcTags, srcKnown := counts[src.Path]
		dstTags, dstKnown := counts[dst.Path]
		src.TagCount = sql.NullInt64{Int64: int64(srcTags), Valid: srcKnown}
		dst.TagCount = sql.NullInt64{Int64: int64(dstTags), Valid: dstKnown}

		cmp := TagComparison{
			Key:         r.Key,
			Source:      src,
			Target:      dst,
			SourceTags:  srcTags,
			TargetTags:  dstTags,
			SourceKnown: srcKnown,
			TargetKnown: dstKnown,
		}
		analysis = append(analysis, cmp)

		if !cmp.Better() {
			continue
		}
		actions = append(actions, Action{
			Type:        ActionOverwriteIfBetter,
			Source:      src,
			Target:      dst,
			Destination: dst.Path,
			Reason:      fmt.Sprintf("source has %d tags, destination has %d", srcTags, dstTags),
			SourceTags:  srcTags,
			TargetTags:  dstTags,
		})
	}

	return actions, analysis, nil
}

// PlanDeleteSource plans removing the source of each one-to-one pair (matched or
// identical). Ambiguous results are never planned.
func PlanDeleteSource(results []MatchResult) []Action {
	var actions []Action
	for _, r := range results {
		if r.Status != StatusMatched && r.Status != StatusIdentical {
			continue
		}
		if len(r.A) != 1 || len(r.B) != 1 {
			continue
		}
		actions = append(actions, Action{
			Type:        ActionDeleteSource,
			Source:      r.A[0],
			Target:      r.B[0],
			Destination: r.B[0].Path,
			Reason:      fmt.Sprintf("%s counterpart present", r.Status),
		})
	}
	return actions
}

// DatedRecord pairs a file with the capture date to write into it.
type DatedRecord struct {
	Record index.FileRecord
	Time   time.Time
}

// PlanWriteCaptureTime plans writing a capture date into each record.
func PlanWriteCaptureTime(items []DatedRecord) []Action {
	actions := make([]Action, 0, len(items))
	for _, it := range items {
		actions = append(actions, Action{
			Type:        ActionWriteCaptureTime,
			Source:      it.Record,
			Destination: it.Record.Path,
			CaptureTime: it.Time,
			Reason:      "capture date missing",
		})
	}
	return actions
}

// PlanRemoveEmptyDirs plans removing dirs, which must already be ordered children
// before parents.
func PlanRemoveEmptyDirs(root string, dirs []string) []Action {
	actions := make([]Action, 0, len(dirs))
	for _, dir := range dirs {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			rel = dir
		}
		actions = append(actions, Action{
			Type:        ActionRemoveEmptyDir,
			Source:      index.FileRecord{Name: filepath.Base(dir), Path: dir, RelPath: rel},
			Destination: dir,
			Reason:      "empty directory",
		})
	}
	return actions
}

// tagCounts reads tag counts for paths, in one batch when the extractor supports it.
// Paths whose count is unavailable are absent from the result.
func tagCounts(ctx context.Context, ex metadata.Extractor, paths []string) (map[string]int, error) {
	if batcher, ok := ex.(metadata.BatchTagCounter); ok {
		counts, err := batcher.TagCounts(ctx, paths)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return map[string]int{}, nil
		}
		return counts, nil
	}

	// Fallback to one-at-a-time
	counts := make(map[string]int, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := ex.TagCount(ctx, p)
		if err != nil {
			continue
		}
		counts[p] = n
	}
	return counts, nil
}
