package survey

import (
	"context"
	"fmt"
	"sort"
	"time"

	"photo-reconciler/core/index"
	"photo-reconciler/core/metadata"
	"photo-reconciler/core/runlog"
	"photo-reconciler/core/utils"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ImageExtensions are the extensions counted as images.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif", ".heic", ".heif"}

// Month identifies one calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Result is the outcome of a survey.
type Result struct {
	Root        string
	Images      int
	WithDate    int
	WithoutDate int
	NonImage    int
	TotalBytes  int64
	// ByMonth counts images by capture date, falling back to modification time.
	ByMonth map[Month]int
	// Undated lists images without an embedded capture date.
	Undated []index.FileRecord
	Errors  []index.ScanError
	Log     string
}

// Months returns the keys of ByMonth in chronological order.
func (r *Result) Months() []Month {
	months := make([]Month, 0, len(r.ByMonth))
	for m := range r.ByMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})
	return months
}

// Service runs surveys.
type Service struct {
	indexer   *index.Indexer
	extractor metadata.Extractor
	logs      *runlog.Writer
	logger    *zap.Logger
}

// NewService creates a new survey service.
func NewService(fs afero.Fs, extractor metadata.Extractor, logs *runlog.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		indexer:   index.NewIndexer(fs, logger),
		extractor: extractor,
		logs:      logs,
		logger:    logger,
	}
}

// Run surveys root and writes a run log.
func (s *Service) Run(ctx context.Context, root string) (*Result, error) {
	idx, err := s.indexer.Index(ctx, root, index.NameKeyer{})
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", root, err)
	}

	images := make(map[string]struct{}, len(ImageExtensions))
	for _, ext := range ImageExtensions {
		images[ext] = struct{}{}
	}

	res := &Result{Root: root, ByMonth: make(map[Month]int), Errors: idx.Errors}
	for _, rec := range idx.Records() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := images[rec.Ext()]; !ok {
			res.NonImage++
			continue
		}
		res.Images++
		res.TotalBytes += rec.Size

		when := rec.ModTime
		if t, err := s.extractor.CaptureTime(ctx, rec.Path); err == nil {
			res.WithDate++
			when = t
		} else {
			res.WithoutDate++
			res.Undated = append(res.Undated, rec)
		}
		res.ByMonth[Month{Year: when.Year(), Month: when.Month()}]++
	}

	s.logger.Info("Survey complete",
		zap.String("root", root),
		zap.Int("images", res.Images),
		zap.Int("with_date", res.WithDate),
		zap.Int("without_date", res.WithoutDate),
		zap.Int("non_image", res.NonImage),
		zap.String("size", utils.FormatSize(res.TotalBytes)),
	)

	path, err := s.logs.Write("survey", report(res))
	if err != nil {
		s.logger.Warn("Failed to write run log", zap.String("prefix", "survey"), zap.Error(err))
	} else {
		res.Log = path
	}

	return res, nil
}

func report(res *Result) *runlog.Report {
	r := &runlog.Report{
		Title:  "Image Survey",
		Header: []runlog.Field{runlog.F("Directory", res.Root)},
		Summary: []runlog.Field{
			runlog.F("Images with capture date", res.WithDate),
			runlog.F("Images without capture date", res.WithoutDate),
			runlog.F("Non-image files (skipped)", res.NonImage),
			runlog.F("Total images", res.Images),
			runlog.F("Total image size", utils.FormatSize(res.TotalBytes)),
			runlog.F("Unreadable entries", len(res.Errors)),
		},
	}

	var years []runlog.Block
	var current *runlog.Block
	for _, m := range res.Months() {
		heading := fmt.Sprintf("Year %d", m.Year)
		if current == nil || current.Heading != heading {
			years = append(years, runlog.Block{Heading: heading})
			current = &years[len(years)-1]
		}
		current.Fields = append(current.Fields, runlog.F(m.Month.String(), fmt.Sprintf("%d images", res.ByMonth[m])))
	}
	r.AddSection(runlog.Section{Title: "IMAGES BY MONTH", Blocks: years})

	var undated []runlog.Block
	for _, rec := range res.Undated {
		undated = append(undated, runlog.Block{Fields: []runlog.Field{
			runlog.F("File", rec.Path),
			runlog.F("Size", utils.FormatBytes(rec.Size)),
		}})
	}
	r.AddSection(runlog.Section{Title: "IMAGES WITHOUT CAPTURE DATE", Blocks: undated})

	var errs []runlog.Block
	for _, e := range res.Errors {
		errs = append(errs, runlog.Block{Fields: []runlog.Field{runlog.F("Path", e.Path), runlog.F("Error", e.Err)}})
	}
	r.AddSection(runlog.Section{Title: "UNREADABLE ENTRIES", Blocks: errs})

	return r
}
