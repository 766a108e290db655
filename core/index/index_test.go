package index_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"photo-reconciler/core/index"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	if !mtime.IsZero() {
		require.NoError(t, fs.Chtimes(path, mtime, mtime))
	}
}

// failingFs fails to open one directory so the walk records a scan error.
type failingFs struct {
	afero.Fs
	failPath string
}

func (f failingFs) Open(name string) (afero.File, error) {
	if name == f.failPath {
		return nil, os.ErrPermission
	}
	return f.Fs.Open(name)
}

// TestIndex_NameKeyer tests indexing by case-folded name, including duplicates.
func TestIndex_NameKeyer(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/IMG_0001.JPG", "aaaa", time.Time{})
	writeFile(t, fs, "/src/2023/img_0001.jpg", "bb", time.Time{})
	writeFile(t, fs, "/src/2023/IMG_0002.HEIC", "ccc", time.Time{})
	writeFile(t, fs, "/src/.hidden", "x", time.Time{})

	idx, err := index.NewIndexer(fs, nil).Index(context.Background(), "/src", index.NameKeyer{})
	require.NoError(t, err)

	assert.Equal(t, "/src", idx.Root)
	assert.Equal(t, "name", idx.Keyer)
	assert.Equal(t, []string{".hidden", "img_0001.jpg", "img_0002.heic"}, idx.Keys())
	assert.Equal(t, 4, idx.FileCount())
	assert.Equal(t, []string{"img_0001.jpg"}, idx.Duplicates())

	t.Run("Filter", func(t *testing.T) {
		top := idx.Filter(func(r index.FileRecord) bool { return r.RelDir() == "." })
		assert.Equal(t, []string{".hidden", "img_0001.jpg"}, top.Keys())
		assert.Empty(t, top.Duplicates())
		assert.Equal(t, "IMG_0001.JPG", top.Lookup("img_0001.jpg")[0].Name)
		assert.Equal(t, 4, idx.FileCount())
	})

	dup := idx.Lookup("img_0001.jpg")
	require.Len(t, dup, 2)
	// Walk visits subdirectories in lexical order, so 2023/ comes before IMG_0001.JPG.
	assert.Equal(t, filepath.Join("2023", "img_0001.jpg"), dup[0].RelPath)
	assert.Equal(t, "IMG_0001.JPG", dup[1].Name)
	assert.Equal(t, int64(4), dup[1].Size)

	rec := idx.Lookup("img_0002.heic")[0]
	assert.Equal(t, "/src/2023/IMG_0002.HEIC", rec.Path)
	assert.Equal(t, ".heic", rec.Ext())
	assert.Equal(t, "IMG_0002", rec.Stem())
	assert.Equal(t, "2023", rec.RelDir())
	assert.True(t, rec.CreatedTime.Valid)
}

// TestIndex_Partition tests that keyed and unkeyed records together cover every file exactly once.
func TestIndex_Partition(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := []string{
		"/src/20230615_123456789_iOS.mov",
		"/src/a/20230615_123456999_iOS.MOV",
		"/src/a/IMG_1234.mov",
		"/src/b/20230101_000000000_iOS.mp4",
		"/src/b/c/notes.txt",
	}
	for _, f := range files {
		writeFile(t, fs, f, "data", time.Time{})
	}

	keyer := index.NewFilenameTimestampKeyer("_iOS", []string{".mov"})
	idx, err := index.NewIndexer(fs, nil).Index(context.Background(), "/src", keyer)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, rec := range idx.Records() {
		seen[rec.Path]++
	}
	for _, rec := range idx.Unkeyed {
		seen[rec.Path]++
	}
	assert.Len(t, seen, len(files))
	for _, f := range files {
		assert.Equal(t, 1, seen[f], f)
	}

	// Both _iOS.mov files fall in the same second.
	assert.Equal(t, 1, idx.Len())
	assert.Len(t, idx.Lookup("2023-06-15T12:34:56Z|.mov"), 2)
	assert.Len(t, idx.Unkeyed, 3)
}

// TestIndex_WithExtensions tests the extension filter.
func TestIndex_WithExtensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/dst/a.MOV", "1", time.Time{})
	writeFile(t, fs, "/dst/b.jpg", "1", time.Time{})
	writeFile(t, fs, "/dst/c.mov", "1", time.Time{})

	idx, err := index.NewIndexer(fs, nil).WithExtensions("mov").Index(context.Background(), "/dst", index.NameKeyer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mov", "c.mov"}, idx.Keys())
}

// TestIndex_RootErrors tests the pre-flight root checks.
func TestIndex_RootErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/file.jpg", "x", time.Time{})
	ix := index.NewIndexer(fs, nil)

	t.Run("Missing root", func(t *testing.T) {
		_, err := ix.Index(context.Background(), "/nope", index.NameKeyer{})
		assert.ErrorIs(t, err, index.ErrRootNotFound)
	})

	t.Run("Root is a file", func(t *testing.T) {
		_, err := ix.Index(context.Background(), "/file.jpg", index.NameKeyer{})
		assert.ErrorIs(t, err, index.ErrRootNotFound)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		writeFile(t, fs, "/src/a.jpg", "x", time.Time{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ix.Index(ctx, "/src", index.NameKeyer{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// TestIndex_ScanErrors tests that an unreadable directory is recorded and the walk continues.
func TestIndex_ScanErrors(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFile(t, base, "/src/ok/a.jpg", "x", time.Time{})
	writeFile(t, base, "/src/locked/b.jpg", "x", time.Time{})
	writeFile(t, base, "/src/z.jpg", "x", time.Time{})

	fs := failingFs{Fs: base, failPath: "/src/locked"}
	idx, err := index.NewIndexer(fs, nil).Index(context.Background(), "/src", index.NameKeyer{})
	require.NoError(t, err)

	require.Len(t, idx.Errors, 1)
	assert.Equal(t, "/src/locked", idx.Errors[0].Path)
	assert.True(t, errors.Is(idx.Errors[0], os.ErrPermission))
	assert.Equal(t, []string{"a.jpg", "z.jpg"}, idx.Keys())
}

// TestFilenameTimestampKeyer_Parse tests parsing of timestamped file names.
func TestFilenameTimestampKeyer_Parse(t *testing.T) {
	keyer := index.NewFilenameTimestampKeyer("_iOS", []string{".mov"})

	tests := []struct {
		name     string
		file     string
		wantOK   bool
		wantTime time.Time
		wantKey  string
	}{
		{
			name:     "Canonical name",
			file:     "20230615_123456789_iOS.mov",
			wantOK:   true,
			wantTime: time.Date(2023, 6, 15, 12, 34, 56, 789_000_000, time.UTC),
			wantKey:  "2023-06-15T12:34:56Z|.mov",
		},
		{
			name:     "Case insensitive",
			file:     "20231231_235959000_ios.MOV",
			wantOK:   true,
			wantTime: time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
			wantKey:  "2023-12-31T23:59:59Z|.mov",
		},
		{name: "Missing suffix", file: "20230615_123456789.mov"},
		{name: "Wrong extension", file: "20230615_123456789_iOS.jpg"},
		{name: "Short time", file: "20230615_1234567_iOS.mov"},
		{name: "Invalid date", file: "20231345_123456789_iOS.mov"},
		{name: "Prefix", file: "x20230615_123456789_iOS.mov"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := keyer.Parse(tt.file)
			assert.Equal(t, tt.wantOK, ok)
			key, keyOK := keyer.Key(index.FileRecord{Name: tt.file})
			assert.Equal(t, tt.wantOK, keyOK)
			if tt.wantOK {
				assert.True(t, tt.wantTime.Equal(got), "got %v", got)
				assert.Equal(t, tt.wantKey, key)
			}
		})
	}
}

// TestCreatedTimeKeyer_Correct tests the scan-time UTC offset correction.
func TestCreatedTimeKeyer_Correct(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	winter := time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Same offset leaves instant unchanged", func(t *testing.T) {
		k := index.CreatedTimeKeyer{Location: ny, ScanTime: winter.AddDate(0, 0, 3)}
		assert.True(t, winter.Equal(k.Correct(winter)))
	})

	t.Run("Different offset shifts by the DST delta", func(t *testing.T) {
		k := index.CreatedTimeKeyer{Location: ny, ScanTime: summer}
		assert.Equal(t, winter.Add(-time.Hour), k.Correct(winter))
	})

	t.Run("Key uses corrected instant and extension", func(t *testing.T) {
		k := index.CreatedTimeKeyer{Location: time.UTC, ScanTime: summer}
		rec := index.FileRecord{Name: "IMG_1.MOV"}
		_, ok := k.Key(rec)
		assert.False(t, ok)

		rec.CreatedTime.Time = time.Date(2023, 6, 15, 12, 34, 56, 900_000_000, time.UTC)
		rec.CreatedTime.Valid = true
		key, ok := k.Key(rec)
		assert.True(t, ok)
		assert.Equal(t, "2023-06-15T12:34:56Z|.mov", key)
	})
}

// TestIndex_CreatedTimeFallback tests that mod time stands in when the filesystem has no creation time.
func TestIndex_CreatedTimeFallback(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Date(2023, 6, 15, 12, 34, 56, 0, time.UTC)
	writeFile(t, fs, "/dst/IMG_1.mov", "x", mtime)

	keyer := index.CreatedTimeKeyer{Location: time.UTC, ScanTime: mtime}
	idx, err := index.NewIndexer(fs, nil).Index(context.Background(), "/dst", keyer)
	require.NoError(t, err)
	assert.True(t, idx.Has("2023-06-15T12:34:56Z|.mov"))
}
