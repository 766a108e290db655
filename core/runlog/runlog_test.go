package runlog_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"photo-reconciler/core/index"
	"photo-reconciler/core/reconcile"
	"photo-reconciler/core/runlog"
	"photo-reconciler/core/utils"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var now = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

func newWriter(fs afero.Fs) *runlog.Writer {
	return runlog.NewWriter(fs, "/logs", utils.FixedClock{T: now}, nil)
}

// TestWriter_Write tests file naming, collision handling and layout.
func TestWriter_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newWriter(fs)

	r := &runlog.Report{
		Title:   "Move Operation Log",
		Header:  []runlog.Field{runlog.F("Source", "/src")},
		Summary: []runlog.Field{runlog.F("Moved", 1)},
	}
	r.AddSection(runlog.Section{Title: "EMPTY"})
	r.AddSection(runlog.Section{Title: "ACTIONS", Blocks: []runlog.Block{{
		Heading: "SUCCESS: a.jpg",
		Fields:  []runlog.Field{runlog.F("From", "/src/a.jpg"), runlog.F("To", "/dst/a.jpg")},
	}}})

	path, err := w.Write("move_log", r)
	require.NoError(t, err)
	assert.Equal(t, "/logs/move_log_20240309_140506.txt", path)

	second, err := w.Write("move_log", r)
	require.NoError(t, err)
	assert.Equal(t, "/logs/move_log_20240309_140506_2.txt", second)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	want := strings.Join([]string{
		"Move Operation Log",
		"Generated: 2024-03-09 14:05:06",
		"Source: /src",
		strings.Repeat("=", 80),
		"",
		"SUMMARY",
		strings.Repeat("-", 40),
		"Moved: 1",
		"",
		"ACTIONS",
		strings.Repeat("-", 40),
		"SUCCESS: a.jpg",
		"From: /src/a.jpg",
		"To: /dst/a.jpg",
		strings.Repeat("-", 40),
		"",
	}, "\n") + "\n"
	assert.Equal(t, want, string(content))
}

// TestStageReport tests outcome labels and summary counts.
func TestStageReport(t *testing.T) {
	a := reconcile.Action{Source: index.FileRecord{Name: "a.jpg", Size: 1234}}
	res := reconcile.StageResult{
		Stage:   "move",
		Planned: 3,
		Outcomes: []reconcile.ActionOutcome{
			{Action: a, Status: reconcile.OutcomeMoved, Source: "/src/a.jpg", Destination: "/dst/a.jpg"},
			{Action: a, Status: reconcile.OutcomeSkipped, Source: "/src/a.jpg", Reason: "destination exists"},
			{Action: a, Status: reconcile.OutcomeFailed, Source: "/src/a.jpg", Reason: "permission denied", Err: errors.New("permission denied")},
		},
	}

	var sb strings.Builder
	require.NoError(t, runlog.Render(&sb, runlog.StageReport("Move Log", nil, res), "now"))
	out := sb.String()

	assert.Contains(t, out, "Stage: move")
	assert.Contains(t, out, "Moved: 1\n")
	assert.Contains(t, out, "Failed: 1\n")
	assert.Contains(t, out, "SUCCESS: a.jpg\nFrom: /src/a.jpg\nTo: /dst/a.jpg\nSize: 1,234 bytes\n")
	assert.Contains(t, out, "SKIPPED: a.jpg\n")
	assert.Contains(t, out, "FAILED: a.jpg\nFrom: /src/a.jpg\nReason: permission denied\n")
}

// TestComparisonReport tests that mismatches, duplicates and source-only files are listed.
func TestComparisonReport(t *testing.T) {
	src := index.NewDirectoryIndex("/src", "name")
	dst := index.NewDirectoryIndex("/dst", "name")
	src.Add("a.jpg", index.FileRecord{Name: "a.jpg", Path: "/src/a.jpg", Size: 100})
	dst.Add("a.jpg", index.FileRecord{Name: "A.JPG", Path: "/dst/A.JPG", Size: 80})
	src.Add("dup.jpg", index.FileRecord{Name: "dup.jpg", Path: "/src/x/dup.jpg", Size: 1})
	src.Add("dup.jpg", index.FileRecord{Name: "dup.jpg", Path: "/src/y/dup.jpg", Size: 1})
	dst.Add("dup.jpg", index.FileRecord{Name: "dup.jpg", Path: "/dst/dup.jpg", Size: 1})
	src.Add("new.jpg", index.FileRecord{Name: "new.jpg", Path: "/src/new.jpg", Size: 2048})

	var sb strings.Builder
	require.NoError(t, runlog.Render(&sb, runlog.ComparisonReport(reconcile.CompareByName(src, dst)), "now"))
	out := sb.String()

	assert.Contains(t, out, "Files with same name but different size: 1\n")
	assert.Contains(t, out, "Size difference: 20 bytes\n")
	assert.Contains(t, out, "FILES WITH DUPLICATE NAMES")
	assert.Contains(t, out, "  dup.jpg - /src/y/dup.jpg (1 bytes)\n")
	assert.Contains(t, out, "FILES ONLY IN SOURCE (1 files)")
	assert.Contains(t, out, "  new.jpg - /src/new.jpg (2,048 bytes)\n")
}

// TestExportYAML tests the YAML export of a comparison.
func TestExportYAML(t *testing.T) {
	src := index.NewDirectoryIndex("/src", "name")
	dst := index.NewDirectoryIndex("/dst", "name")
	src.Add("a.jpg", index.FileRecord{Name: "a.jpg", Path: "/src/a.jpg", Size: 10})
	dst.Add("a.jpg", index.FileRecord{Name: "a.jpg", Path: "/dst/a.jpg", Size: 4})

	fs := afero.NewMemMapFs()
	require.NoError(t, runlog.ExportYAML(fs, "/out/cmp.yaml", reconcile.CompareByName(src, dst)))

	raw, err := afero.ReadFile(fs, "/out/cmp.yaml")
	require.NoError(t, err)

	var doc struct {
		RootA   string `yaml:"root_a"`
		Summary struct {
			SizeMismatches int `yaml:"size_mismatches"`
		} `yaml:"summary"`
		Results []struct {
			Key      string `yaml:"key"`
			Status   string `yaml:"status"`
			SizeDiff int64  `yaml:"size_diff"`
		} `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, "/src", doc.RootA)
	assert.Equal(t, 1, doc.Summary.SizeMismatches)
	require.Len(t, doc.Results, 1)
	assert.Equal(t, "size_mismatch", doc.Results[0].Status)
	assert.Equal(t, int64(6), doc.Results[0].SizeDiff)
}
