package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// Extractor is a mock implementation of metadata.Extractor
type Extractor struct {
	mock.Mock
}

func (m *Extractor) CaptureTime(ctx context.Context, path string) (time.Time, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *Extractor) TagCount(ctx context.Context, path string) (int, error) {
	args := m.Called(ctx, path)
	return args.Int(0), args.Error(1)
}

// BatchExtractor is a mock extractor that also implements metadata.BatchTagCounter
// and metadata.CaptureWriter.
type BatchExtractor struct {
	Extractor
}

func (m *BatchExtractor) TagCounts(ctx context.Context, paths []string) (map[string]int, error) {
	args := m.Called(ctx, paths)
	if counts, ok := args.Get(0).(map[string]int); ok {
		return counts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BatchExtractor) SetCaptureTime(ctx context.Context, path string, t time.Time) error {
	args := m.Called(ctx, path, t)
	return args.Error(0)
}
