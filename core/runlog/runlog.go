package runlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"photo-reconciler/core/utils"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 40)
)

// Field is a single "Key: Value" line.
type Field struct {
	Key   string
	Value string
}

// F builds a Field, formatting value with %v.
func F(key string, value any) Field {
	return Field{Key: key, Value: fmt.Sprint(value)}
}

// Block is one item in a section: an optional heading, fields, then free lines.
type Block struct {
	Heading string
	Fields  []Field
	Lines   []string
}

// Section groups blocks under a title.
type Section struct {
	Title  string
	Blocks []Block
}

// Report is the content of one log file.
type Report struct {
	Title    string
	Header   []Field
	Summary  []Field
	Sections []Section
}

// AddSection appends a section, skipping empty ones.
func (r *Report) AddSection(s Section) {
	if len(s.Blocks) == 0 {
		return
	}
	r.Sections = append(r.Sections, s)
}

// Writer creates run logs in a directory.
type Writer struct {
	fs    afero.Fs
	dir   string
	clock utils.Clock
	log   *zap.Logger
}

// NewWriter creates a Writer for dir. A nil logger disables logging.
func NewWriter(fs afero.Fs, dir string, clock utils.Clock, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	if clock == nil {
		clock = utils.RealClock{}
	}
	return &Writer{fs: fs, dir: dir, clock: clock, log: log}
}

// Write renders r into a new file <prefix>_<stamp>.txt and returns its path.
// An existing file is never overwritten; a numeric suffix is added instead.
func (w *Writer) Write(prefix string, r *Report) (string, error) {
	if err := w.fs.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	now := w.clock.Now()
	base := prefix + "_" + utils.RunStamp(now)

	var (
		f    afero.File
		path string
		err  error
	)
	for n := 1; ; n++ {
		name := base + ".txt"
		if n > 1 {
			name = fmt.Sprintf("%s_%d.txt", base, n)
		}
		path = filepath.Join(w.dir, name)
		f, err = w.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to create log %s: %w", path, err)
		}
	}
	defer f.Close()

	if err := Render(f, r, now.Format("2006-01-02 15:04:05")); err != nil {
		return "", fmt.Errorf("failed to write log %s: %w", path, err)
	}

	w.log.Info("Wrote run log", zap.String("path", path))
	return path, nil
}

// Render writes r to out. generated is printed in the header.
func Render(out io.Writer, r *Report, generated string) error {
	ew := &errWriter{w: out}

	ew.line(r.Title)
	ew.line("Generated: " + generated)
	writeFields(ew, r.Header)
	ew.line(heavyRule)
	ew.line("")

	if len(r.Summary) > 0 {
		ew.line("SUMMARY")
		ew.line(lightRule)
		writeFields(ew, r.Summary)
		ew.line("")
	}

	for _, s := range r.Sections {
		ew.line(s.Title)
		ew.line(lightRule)
		for _, b := range s.Blocks {
			if b.Heading != "" {
				ew.line(b.Heading)
			}
			writeFields(ew, b.Fields)
			for _, l := range b.Lines {
				ew.line("  " + l)
			}
			ew.line(lightRule)
		}
		ew.line("")
	}

	return ew.err
}

// ExportYAML writes v as YAML to path.
func ExportYAML(fs afero.Fs, path string, v any) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return enc.Close()
}

func writeFields(ew *errWriter, fields []Field) {
	for _, f := range fields {
		ew.line(f.Key + ": " + f.Value)
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) line(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s+"\n")
}
