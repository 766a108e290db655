package index

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Keyer computes the normalized key a file is indexed under.
// Key returns false when the file cannot be keyed by this strategy.
type Keyer interface {
	// Name returns a short identifier for logs (e.g. "name", "filename_timestamp").
	Name() string
	Key(rec FileRecord) (string, bool)
}

// NameKeyer keys files by their case-folded name.
type NameKeyer struct{}

// Name returns "name".
func (NameKeyer) Name() string { return "name" }

// Key returns the lowercased file name.
func (NameKeyer) Key(rec FileRecord) (string, bool) {
	return strings.ToLower(rec.Name), true
}

// TimestampKey formats the composite key shared by the timestamp keyers:
// the instant truncated to whole seconds in UTC, a pipe, and the lowercased extension.
func TimestampKey(t time.Time, ext string) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339) + "|" + strings.ToLower(ext)
}

// FilenameTimestampKeyer keys files named YYYYMMDD_HHMMSSmmm<suffix><ext>.
// The encoded instant is taken to be UTC.
type FilenameTimestampKeyer struct {
	pattern    *regexp.Regexp
	extensions map[string]struct{}
}

// NewFilenameTimestampKeyer builds a keyer for the given suffix marker (e.g. "_iOS")
// and allowed extensions (e.g. ".mov"). Matching is case-insensitive.
// An empty extension list accepts any extension.
func NewFilenameTimestampKeyer(suffix string, extensions []string) *FilenameTimestampKeyer {
	pattern := regexp.MustCompile(`(?i)^(\d{8})_(\d{6})(\d{3})` + regexp.QuoteMeta(suffix) + `(\.[^.]+)$`)
	return &FilenameTimestampKeyer{
		pattern:    pattern,
		extensions: extensionSet(extensions),
	}
}

// Name returns "filename_timestamp".
func (k *FilenameTimestampKeyer) Name() string { return "filename_timestamp" }

// Key parses the capture instant from the file name.
func (k *FilenameTimestampKeyer) Key(rec FileRecord) (string, bool) {
	t, ext, ok := k.Parse(rec.Name)
	if !ok {
		return "", false
	}
	return TimestampKey(t, ext), true
}

// Parse extracts the instant (with millisecond precision) and extension from name.
func (k *FilenameTimestampKeyer) Parse(name string) (time.Time, string, bool) {
	m := k.pattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", false
	}
	ext := strings.ToLower(m[4])
	if !allowed(k.extensions, ext) {
		return time.Time{}, "", false
	}
	t, err := time.ParseInLocation("20060102150405", m[1]+m[2], time.UTC)
	if err != nil {
		return time.Time{}, "", false
	}
	millis, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, "", false
	}
	return t.Add(time.Duration(millis) * time.Millisecond), ext, true
}

// CreatedTimeKeyer keys files by their filesystem creation time.
//
// The local creation instant is shifted to UTC using the UTC offset in effect at
// ScanTime, not the offset in effect when the file was created. Files created on the
// other side of a daylight-saving transition therefore key one hour off.
type CreatedTimeKeyer struct {
	// Location is the local zone the timestamps are interpreted in. Nil means time.Local.
	Location *time.Location
	// ScanTime selects the UTC offset used for the correction.
	ScanTime time.Time
}

// Name returns "created_time".
func (k CreatedTimeKeyer) Name() string { return "created_time" }

// Key returns the corrected creation instant and extension. Files without a creation
// time are not keyed.
func (k CreatedTimeKeyer) Key(rec FileRecord) (string, bool) {
	if !rec.CreatedTime.Valid {
		return "", false
	}
	return TimestampKey(k.Correct(rec.CreatedTime.Time), filepath.Ext(rec.Name)), true
}

// Correct applies the scan-time offset correction to a creation instant.
func (k CreatedTimeKeyer) Correct(created time.Time) time.Time {
	loc := k.Location
	if loc == nil {
		loc = time.Local
	}
	_, fileOffset := created.In(loc).Zone()
	_, scanOffset := k.ScanTime.In(loc).Zone()
	return created.Add(time.Duration(fileOffset-scanOffset) * time.Second).UTC()
}

func extensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

func allowed(set map[string]struct{}, ext string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[strings.ToLower(ext)]
	return ok
}
