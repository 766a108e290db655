package index

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrRootNotFound is returned when the directory to index does not exist or is not a directory.
var ErrRootNotFound = errors.New("root directory not found")

// FileRecord describes one regular file as observed during a scan.
// Records are values and are never updated after the scan that produced them.
type FileRecord struct {
	// Name is the base name as found on disk (case preserved).
	Name string `yaml:"name"`
	// Path is the full path including the scan root.
	Path string `yaml:"path"`
	// RelPath is Path relative to the scan root.
	RelPath string `yaml:"rel_path"`
	// Size in bytes.
	Size int64 `yaml:"size"`
	// ModTime is the last modification time.
	ModTime time.Time `yaml:"mod_time"`
	// CreatedTime is the filesystem creation time, when the platform reports one.
	CreatedTime sql.NullTime `yaml:"-"`
	// CaptureTime is the embedded capture date, filled in by metadata resolution.
	CaptureTime sql.NullTime `yaml:"-"`
	// TagCount is the number of metadata tags, filled in by metadata extraction.
	TagCount sql.NullInt64 `yaml:"-"`
}

// Ext returns the lowercased extension including the leading dot.
func (r FileRecord) Ext() string {
	return strings.ToLower(filepath.Ext(r.Name))
}

// Stem returns the name without its extension.
func (r FileRecord) Stem() string {
	return strings.TrimSuffix(r.Name, filepath.Ext(r.Name))
}

// RelDir returns the directory part of RelPath, "." for files at the root.
func (r FileRecord) RelDir() string {
	return filepath.Dir(r.RelPath)
}

// ScanError records a path that could not be read during a walk.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e ScanError) Unwrap() error {
	return e.Err
}

// DirectoryIndex maps normalized keys to the records found under them.
type DirectoryIndex struct {
	// Root is the directory that was scanned.
	Root string
	// Keyer is the name of the strategy that produced the keys.
	Keyer string
	// Unkeyed holds files that the keyer could not key.
	Unkeyed []FileRecord
	// Errors holds per-entry failures encountered during the walk.
	Errors []ScanError

	entries map[string][]FileRecord
	order   []string
}

// NewDirectoryIndex returns an empty index for root.
func NewDirectoryIndex(root, keyer string) *DirectoryIndex {
	return &DirectoryIndex{
		Root:    root,
		Keyer:   keyer,
		entries: make(map[string][]FileRecord),
	}
}

// Add appends rec under key, keeping records that share a key in insertion order.
func (d *DirectoryIndex) Add(key string, rec FileRecord) {
	if _, exists := d.entries[key]; !exists {
		d.order = append(d.order, key)
	}
	d.entries[key] = append(d.entries[key], rec)
}

// Lookup returns the records stored under key, or nil.
func (d *DirectoryIndex) Lookup(key string) []FileRecord {
	return d.entries[key]
}

// Has reports whether at least one record is stored under key.
func (d *DirectoryIndex) Has(key string) bool {
	return len(d.entries[key]) > 0
}

// Keys returns all keys in sorted order.
func (d *DirectoryIndex) Keys() []string {
	keys := make([]string, len(d.order))
	copy(keys, d.order)
	sort.Strings(keys)
	return keys
}

// Len returns the number of distinct keys.
func (d *DirectoryIndex) Len() int {
	return len(d.entries)
}

// FileCount returns the number of keyed records, duplicates included.
func (d *DirectoryIndex) FileCount() int {
	n := 0
	for _, recs := range d.entries {
		n += len(recs)
	}
	return n
}

// Records returns every keyed record, grouped by key in first-discovery order.
func (d *DirectoryIndex) Records() []FileRecord {
	out := make([]FileRecord, 0, d.FileCount())
	for _, key := range d.order {
		out = append(out, d.entries[key]...)
	}
	return out
}

// Filter returns a new index holding only the keyed records for which keep is true.
// Unkeyed files and scan errors are carried over unchanged.
func (d *DirectoryIndex) Filter(keep func(FileRecord) bool) *DirectoryIndex {
	out := NewDirectoryIndex(d.Root, d.Keyer)
	out.Unkeyed = d.Unkeyed
	out.Errors = d.Errors
	for _, key := range d.order {
		for _, rec := range d.entries[key] {
			if keep(rec) {
				out.Add(key, rec)
			}
		}
	}
	return out
}

// Duplicates returns the keys that hold more than one record, sorted.
func (d *DirectoryIndex) Duplicates() []string {
	var keys []string
	for key, recs := range d.entries {
		if len(recs) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
