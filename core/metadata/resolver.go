package metadata

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DateSource says where a resolved capture date came from.
type DateSource string

const (
	SourceMetadata DateSource = "metadata"
	SourceFilename DateSource = "filename"
	SourceFolder   DateSource = "folder"
	SourceUnknown  DateSource = "unknown"
)

// Resolution is the outcome of resolving a capture date.
type Resolution struct {
	Time   time.Time
	Source DateSource
}

// Known reports whether a date was found.
func (r Resolution) Known() bool {
	return r.Source != SourceUnknown
}

type datePattern struct {
	regex  *regexp.Regexp
	layout string
}

// Ordered from most to least specific.
var filenamePatterns = []datePattern{
	{regexp.MustCompile(`(\d{8}_\d{6})`), "20060102_150405"},
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
	{regexp.MustCompile(`(?:IMG|VID|PXL|DJI)_(\d{8})`), "20060102"},
}

var (
	yearDir  = regexp.MustCompile(`^\d{4}$`)
	monthDir = regexp.MustCompile(`^\d{1,2}$`)
)

// Resolver finds a capture date for a file: embedded metadata first, then a date in
// the file name, then a YYYY/MM folder pair in the path.
type Resolver struct {
	extractor   Extractor
	useFilename bool
	log         *zap.Logger
}

// NewResolver creates a Resolver. When useFilename is false the filename step is skipped.
func NewResolver(extractor Extractor, useFilename bool, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{extractor: extractor, useFilename: useFilename, log: log}
}

// Resolve returns the best available capture date for path. Context cancellation is
// the only error returned.
func (r *Resolver) Resolve(ctx context.Context, path string) (Resolution, error) {
	if r.extractor != nil {
		t, err := r.extractor.CaptureTime(ctx, path)
		if err == nil {
			return Resolution{Time: t, Source: SourceMetadata}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Resolution{Source: SourceUnknown}, ctxErr
		}
		r.log.Debug("Capture time unavailable", zap.String("path", path), zap.Error(err))
	}

	if r.useFilename {
		if t, ok := DateFromFilename(filepath.Base(path)); ok {
			return Resolution{Time: t, Source: SourceFilename}, nil
		}
	}

	if t, ok := DateFromFolder(path); ok {
		return Resolution{Time: t, Source: SourceFolder}, nil
	}

	return Resolution{Source: SourceUnknown}, nil
}

// DateFromFilename extracts a date embedded in a file name, interpreted as UTC.
func DateFromFilename(name string) (time.Time, bool) {
	for _, p := range filenamePatterns {
		m := p.regex.FindStringSubmatch(name)
		if len(m) < 2 {
			continue
		}
		if t, err := time.ParseInLocation(p.layout, m[1], time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateFromFolder finds the first YYYY directory followed by a 1-12 month directory
// in path and returns the first day of that month in UTC.
func DateFromFolder(path string) (time.Time, bool) {
	parts := strings.Split(filepath.ToSlash(filepath.Dir(path)), "/")
	for i := 0; i+1 < len(parts); i++ {
		if !yearDir.MatchString(parts[i]) || !monthDir.MatchString(parts[i+1]) {
			continue
		}
		year, _ := strconv.Atoi(parts[i])
		month, _ := strconv.Atoi(parts[i+1])
		if month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
