package reconcile

import (
	"path"
	"testing"

	"photo-reconciler/core/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(root, rel string, size int64) index.FileRecord {
	return index.FileRecord{
		Name:    path.Base(rel),
		Path:    path.Join(root, rel),
		RelPath: rel,
		Size:    size,
	}
}

func nameIndex(root string, records ...index.FileRecord) *index.DirectoryIndex {
	idx := index.NewDirectoryIndex(root, "name")
	for _, r := range records {
		key, _ := index.NameKeyer{}.Key(r)
		idx.Add(key, r)
	}
	return idx
}

// TestCompareByName tests per-key classification and the summary counts.
func TestCompareByName(t *testing.T) {
	a := nameIndex("/a",
		rec("/a", "same.jpg", 10),
		rec("/a", "big.jpg", 100),
		rec("/a", "small.jpg", 50),
		rec("/a", "x/photo.jpg", 5),
		rec("/a", "y/photo.jpg", 5),
		rec("/a", "only_a.jpg", 1),
	)
	b := nameIndex("/b",
		rec("/b", "SAME.JPG", 10),
		rec("/b", "big.jpg", 10),
		rec("/b", "small.jpg", 45),
		rec("/b", "photo.jpg", 5),
		rec("/b", "only_b.jpg", 1),
	)

	cmp := CompareByName(a, b)
	require.Len(t, cmp.Results, 6)

	statuses := make(map[string]Status)
	for _, r := range cmp.Results {
		statuses[r.Key] = r.Status
	}
	assert.Equal(t, map[string]Status{
		"same.jpg":   StatusIdentical,
		"big.jpg":    StatusSizeMismatch,
		"small.jpg":  StatusSizeMismatch,
		"photo.jpg":  StatusDuplicateGroup,
		"only_a.jpg": StatusOnlyInA,
		"only_b.jpg": StatusOnlyInB,
	}, statuses)

	assert.Equal(t, Summary{
		FilesA:          6,
		FilesB:          5,
		CommonKeys:      4,
		Identical:       1,
		SizeMismatches:  2,
		DuplicateGroups: 1,
		OnlyInA:         1,
		OnlyInB:         1,
	}, cmp.Summary)

	t.Run("Results sorted by key", func(t *testing.T) {
		for i := 1; i < len(cmp.Results); i++ {
			assert.Less(t, cmp.Results[i-1].Key, cmp.Results[i].Key)
		}
	})

	t.Run("Size mismatches sorted by descending diff", func(t *testing.T) {
		mismatches := cmp.SizeMismatches()
		require.Len(t, mismatches, 2)
		assert.Equal(t, "big.jpg", mismatches[0].Key)
		assert.Equal(t, int64(90), mismatches[0].SizeDiff)
		assert.Equal(t, "small.jpg", mismatches[1].Key)
		assert.Equal(t, int64(5), mismatches[1].SizeDiff)
	})

	t.Run("Duplicate group keeps every record and is never compared", func(t *testing.T) {
		dup := cmp.ByStatus(StatusDuplicateGroup)
		require.Len(t, dup, 1)
		assert.Len(t, dup[0].A, 2)
		assert.Len(t, dup[0].B, 1)
		assert.Zero(t, dup[0].SizeDiff)
		assert.ErrorIs(t, dup[0].Err(), ErrAmbiguousMatch)
	})

	t.Run("Only in A records", func(t *testing.T) {
		only := cmp.OnlyInA()
		require.Len(t, only, 1)
		assert.Equal(t, "only_a.jpg", only[0].Name)
	})
}

// TestCompareKey_SizeProperty tests that single pairs are identical iff sizes match.
func TestCompareKey_SizeProperty(t *testing.T) {
	sizes := []int64{0, 1, 80, 100, 1 << 40}
	for _, sa := range sizes {
		for _, sb := range sizes {
			r := compareKey("k", []index.FileRecord{{Size: sa}}, []index.FileRecord{{Size: sb}})
			if sa == sb {
				assert.Equal(t, StatusIdentical, r.Status)
				assert.Zero(t, r.SizeDiff)
				assert.NoError(t, r.Err())
			} else {
				assert.Equal(t, StatusSizeMismatch, r.Status)
				assert.Equal(t, absDiff(sa, sb), r.SizeDiff)
				assert.Positive(t, r.SizeDiff)
			}
		}
	}
}

// TestMatchByTimestamp tests matched, ambiguous and unmatched timestamp keys.
func TestMatchByTimestamp(t *testing.T) {
	src := index.NewDirectoryIndex("/src", "filename_timestamp")
	src.Add("2023-06-15T12:34:56Z|.mov", rec("/src", "20230615_123456789_iOS.mov", 1))
	src.Add("2023-06-16T00:00:00Z|.mov", rec("/src", "20230616_000000000_iOS.mov", 1))
	src.Add("2023-06-17T00:00:00Z|.mov", rec("/src", "20230617_000000000_iOS.mov", 1))
	src.Unkeyed = append(src.Unkeyed, rec("/src", "IMG_0001.mov", 1))

	dst := index.NewDirectoryIndex("/dst", "created_time")
	dst.Add("2023-06-15T12:34:56Z|.mov", rec("/dst", "IMG_1.MOV", 1))
	dst.Add("2023-06-16T00:00:00Z|.mov", rec("/dst", "IMG_2.MOV", 1))
	dst.Add("2023-06-16T00:00:00Z|.mov", rec("/dst", "IMG_3.MOV", 1))

	m := MatchByTimestamp(src, dst)

	assert.Equal(t, TimestampSummary{
		Sources:       3,
		Destinations:  3,
		Matched:       1,
		Ambiguous:     1,
		NoCounterpart: 1,
		Unkeyed:       1,
	}, m.Summary)

	matched := m.ByStatus(StatusMatched)
	require.Len(t, matched, 1)
	assert.Equal(t, "IMG_1.MOV", matched[0].B[0].Name)

	ambiguous := m.ByStatus(StatusAmbiguous)
	require.Len(t, ambiguous, 1)
	assert.Len(t, ambiguous[0].B, 2)
	assert.ErrorIs(t, ambiguous[0].Err(), ErrAmbiguousMatch)

	assert.Len(t, m.ByStatus(StatusNoCounterpart), 1)
}
