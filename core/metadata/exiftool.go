package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"photo-reconciler/core/utils"

	"go.uber.org/zap"
)

const exifDateLayout = "2006:01:02 15:04:05"

// Runner executes a command and returns its standard output.
// A non-nil error may accompany usable output (exiftool exits 1 when some files fail).
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// ExifTool reads and writes metadata through the exiftool command.
type ExifTool struct {
	path      string
	timeout   time.Duration
	batchSize int
	run       Runner
	log       *zap.Logger
}

// NewExifTool creates an ExifTool from cfg.
func NewExifTool(cfg Config, log *zap.Logger) *ExifTool {
	if log == nil {
		log = zap.NewNop()
	}
	path := cfg.ExifToolPath
	if path == "" {
		path = "exiftool"
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 200
	}
	var timeout time.Duration
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &ExifTool{
		path:      path,
		timeout:   timeout,
		batchSize: batch,
		run:       execRunner,
		log:       log,
	}
}

// WithRunner returns a copy of t that executes commands through run.
func (t *ExifTool) WithRunner(run Runner) *ExifTool {
	cp := *t
	cp.run = run
	return &cp
}

// CaptureTime returns DateTimeOriginal, interpreted as UTC.
func (t *ExifTool) CaptureTime(ctx context.Context, path string) (time.Time, error) {
	entries, err := t.query(ctx, "-j", "-DateTimeOriginal", "-d", "%Y:%m:%d %H:%M:%S", path)
	if err != nil {
		return time.Time{}, err
	}
	raw := utils.ToString(entries[0]["DateTimeOriginal"])
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s has no DateTimeOriginal", ErrUnavailable, path)
	}
	ts, err := time.ParseInLocation(exifDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	return ts, nil
}

// TagCount returns the number of tags exiftool reports for path, SourceFile excluded.
func (t *ExifTool) TagCount(ctx context.Context, path string) (int, error) {
	entries, err := t.query(ctx, "-j", path)
	if err != nil {
		return 0, err
	}
	return tagCount(entries[0]), nil
}

// TagCounts counts tags for many files, invoking exiftool once per batch.
// Files exiftool could not read are absent from the result.
func (t *ExifTool) TagCounts(ctx context.Context, paths []string) (map[string]int, error) {
	counts := make(map[string]int, len(paths))
	for start := 0; start < len(paths); start += t.batchSize {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		end := min(start+t.batchSize, len(paths))
		batch := paths[start:end]

		byKey := make(map[string]string, len(batch))
		for _, p := range batch {
			byKey[filepath.ToSlash(p)] = p
		}

		entries, err := t.query(ctx, append([]string{"-j"}, batch...)...)
		if err != nil {
			t.log.Warn("Failed to read tag counts", zap.Int("files", len(batch)), zap.Error(err))
			continue
		}
		for _, entry := range entries {
			source := utils.ToString(entry["SourceFile"])
			if p, ok := byKey[filepath.ToSlash(source)]; ok {
				counts[p] = tagCount(entry)
			}
		}
	}
	return counts, nil
}

// SetCaptureTime writes DateTimeOriginal in place.
func (t *ExifTool) SetCaptureTime(ctx context.Context, path string, ts time.Time) error {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	arg := "-DateTimeOriginal=" + ts.Format(exifDateLayout)
	if _, err := t.run(ctx, t.path, arg, "-overwrite_original", path); err != nil {
		return fmt.Errorf("failed to write capture time to %s: %w", path, err)
	}
	return nil
}

func (t *ExifTool) query(ctx context.Context, args ...string) ([]map[string]any, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	out, runErr := t.run(ctx, t.path, args...)
	if len(out) == 0 {
		if runErr == nil {
			runErr = fmt.Errorf("empty output")
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, runErr)
	}

	var entries []map[string]any
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, fmt.Errorf("%w: decoding exiftool output: %v", ErrUnavailable, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrUnavailable)
	}
	return entries, nil
}

func (t *ExifTool) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func tagCount(entry map[string]any) int {
	n := len(entry)
	if _, ok := entry["SourceFile"]; ok {
		n--
	}
	return n
}
