package reconcile

import (
	"sort"

	"photo-reconciler/core/index"
)

// CompareByName classifies every key in the union of a and b.
// Both indexes are expected to be keyed by case-folded name.
func CompareByName(a, b *index.DirectoryIndex) *Comparison {
	union := buildUnion(a, b)

	cmp := &Comparison{
		RootA:   a.Root,
		RootB:   b.Root,
		Results: make([]MatchResult, 0, len(union)),
	}
	cmp.Summary.FilesA = a.FileCount()
	cmp.Summary.FilesB = b.FileCount()

	for _, key := range union {
		result := compareKey(key, a.Lookup(key), b.Lookup(key))
		cmp.Results = append(cmp.Results, result)

		switch result.Status {
		case StatusIdentical:
			cmp.Summary.Identical++
		case StatusSizeMismatch:
			cmp.Summary.SizeMismatches++
		case StatusDuplicateGroup:
			cmp.Summary.DuplicateGroups++
		case StatusOnlyInA:
			cmp.Summary.OnlyInA++
		case StatusOnlyInB:
			cmp.Summary.OnlyInB++
		}
		if len(result.A) > 0 && len(result.B) > 0 {
			cmp.Summary.CommonKeys++
		}
	}

	return cmp
}

// compareKey classifies a single key. Pairs are compared only when each side holds
// exactly one record.
func compareKey(key string, a, b []index.FileRecord) MatchResult {
	result := MatchResult{Key: key, A: a, B: b}

	switch {
	case len(a) == 0:
		result.Status = StatusOnlyInB
	case len(b) == 0:
		result.Status = StatusOnlyInA
	case len(a) > 1 || len(b) > 1:
		result.Status = StatusDuplicateGroup
	case a[0].Size == b[0].Size:
		result.Status = StatusIdentical
	default:
		result.Status = StatusSizeMismatch
		result.SizeDiff = absDiff(a[0].Size, b[0].Size)
	}

	return result
}

// ByStatus returns the results with the given status, in key order.
func (c *Comparison) ByStatus(status Status) []MatchResult {
	return filterStatus(c.Results, status)
}

// SizeMismatches returns size mismatches ordered by descending size difference.
func (c *Comparison) SizeMismatches() []MatchResult {
	out := c.ByStatus(StatusSizeMismatch)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SizeDiff > out[j].SizeDiff
	})
	return out
}

// OnlyInA returns every record from keys present only in the first index.
func (c *Comparison) OnlyInA() []index.FileRecord {
	var out []index.FileRecord
	for _, r := range c.ByStatus(StatusOnlyInA) {
		out = append(out, r.A...)
	}
	return out
}

// MatchByTimestamp pairs each source key with destination records under the same key.
// src should be keyed by a FilenameTimestampKeyer and dst by a CreatedTimeKeyer.
func MatchByTimestamp(src, dst *index.DirectoryIndex) *TimestampMatch {
	m := &TimestampMatch{
		Summary: TimestampSummary{
			Sources:      src.FileCount(),
			Destinations: dst.FileCount(),
			Unkeyed:      len(src.Unkeyed),
		},
	}

	for _, key := range src.Keys() {
		a := src.Lookup(key)
		b := dst.Lookup(key)
		result := MatchResult{Key: key, A: a, B: b}

		switch {
		case len(b) == 0:
			result.Status = StatusNoCounterpart
			m.Summary.NoCounterpart++
		case len(a) > 1 || len(b) > 1:
			result.Status = StatusAmbiguous
			m.Summary.Ambiguous++
		default:
			result.Status = StatusMatched
			m.Summary.Matched++
		}
		m.Results = append(m.Results, result)
	}

	return m
}

// ByStatus returns the results with the given status, in key order.
func (m *TimestampMatch) ByStatus(status Status) []MatchResult {
	return filterStatus(m.Results, status)
}

// buildUnion returns the sorted union of keys from both indexes.
func buildUnion(a, b *index.DirectoryIndex) []string {
	seen := make(map[string]struct{}, a.Len()+b.Len())
	keys := make([]string, 0, a.Len()+b.Len())
	for _, idx := range []*index.DirectoryIndex{a, b} {
		for _, key := range idx.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func filterStatus(results []MatchResult, status Status) []MatchResult {
	var out []MatchResult
	for _, r := range results {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
