package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when metadata could not be read for a file.
var ErrUnavailable = errors.New("metadata unavailable")

// Backend names accepted by New.
const (
	BackendExifTool = "exiftool"
	BackendNative   = "native"
	BackendNone     = "none"
)

// Config selects and tunes the metadata backend.
type Config struct {
	// Backend is one of "exiftool", "native" or "none".
	Backend string `mapstructure:"backend" toml:"backend" default:"exiftool"`
	// ExifToolPath is the exiftool binary to invoke.
	ExifToolPath string `mapstructure:"exiftool_path" toml:"exiftool_path" default:"exiftool"`
	// TimeoutSeconds bounds a single exiftool invocation.
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds" default:"60"`
	// BatchSize is the number of paths passed to one exiftool invocation.
	BatchSize int `mapstructure:"batch_size" toml:"batch_size" default:"200"`
}

// Extractor answers metadata questions about a single file.
type Extractor interface {
	// CaptureTime returns the embedded capture date (DateTimeOriginal).
	CaptureTime(ctx context.Context, path string) (time.Time, error)
	// TagCount returns the number of embedded metadata tags.
	TagCount(ctx context.Context, path string) (int, error)
}

// BatchTagCounter is implemented by extractors that can count tags for many files
// in one call. Paths missing from the returned map are unavailable.
type BatchTagCounter interface {
	TagCounts(ctx context.Context, paths []string) (map[string]int, error)
}

// CaptureWriter is implemented by extractors that can write a capture date.
type CaptureWriter interface {
	SetCaptureTime(ctx context.Context, path string, t time.Time) error
}

// New builds the Extractor selected by cfg.Backend.
func New(cfg Config, fs afero.Fs, log *zap.Logger) (Extractor, error) {
	switch cfg.Backend {
	case BackendExifTool, "":
		return NewExifTool(cfg, log), nil
	case BackendNative:
		return NewExifReader(fs), nil
	case BackendNone:
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", cfg.Backend)
	}
}

// Unavailable is an Extractor that never has metadata.
type Unavailable struct{}

// CaptureTime always returns ErrUnavailable.
func (Unavailable) CaptureTime(context.Context, string) (time.Time, error) {
	return time.Time{}, ErrUnavailable
}

// TagCount always returns ErrUnavailable.
func (Unavailable) TagCount(context.Context, string) (int, error) {
	return 0, ErrUnavailable
}
