package logger_test

import (
	"testing"

	"photo-reconciler/core/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     logger.Config
		debugOn bool
	}{
		{"Console Info", logger.Config{Level: "info", Format: "console"}, false},
		{"JSON Warn", logger.Config{Level: "warn", Format: "json"}, false},
		{"Console Debug", logger.Config{Level: "debug", Format: "console"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := logger.New(&tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, l)
			assert.Equal(t, tt.debugOn, l.Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestWithRunID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.WithRunID(zap.New(core), "run-1")
	l.Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "run-1", logs.All()[0].ContextMap()["run_id"])

	same := zap.NewNop()
	assert.Same(t, same, logger.WithRunID(same, ""))
}
