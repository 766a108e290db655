package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
	"github.com/spf13/afero"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// ExifReader decodes EXIF data in-process.
type ExifReader struct {
	fs afero.Fs
}

// NewExifReader creates an ExifReader reading files from fs.
func NewExifReader(fs afero.Fs) *ExifReader {
	return &ExifReader{fs: fs}
}

// CaptureTime returns DateTimeOriginal (or DateTime when absent).
func (r *ExifReader) CaptureTime(ctx context.Context, path string) (time.Time, error) {
	x, err := r.decode(ctx, path)
	if err != nil {
		return time.Time{}, err
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	return t, nil
}

// TagCount returns the number of EXIF fields, maker notes included.
func (r *ExifReader) TagCount(ctx context.Context, path string) (int, error) {
	x, err := r.decode(ctx, path)
	if err != nil {
		return 0, err
	}
	var c tagCounter
	if err := x.Walk(&c); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	return c.n, nil
}

func (r *ExifReader) decode(ctx context.Context, path string) (*exif.Exif, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	return x, nil
}

type tagCounter struct {
	n int
}

func (c *tagCounter) Walk(exif.FieldName, *tiff.Tag) error {
	c.n++
	return nil
}
