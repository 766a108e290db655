package utils_test

import (
	"testing"
	"time"

	"photo-reconciler/core/utils"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	assert.Equal(t, "", utils.ToString(nil))
	assert.Equal(t, "abc", utils.ToString("abc"))
	assert.Equal(t, "12", utils.ToString(12))
	assert.Equal(t, "2023:06:15 12:34:56", utils.ToString([]byte("2023:06:15 12:34:56")))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "1,234,567 bytes", utils.FormatBytes(1234567))
	assert.Equal(t, "0 bytes", utils.FormatBytes(0))
}

func TestRunStamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 5, 0, time.UTC)
	assert.Equal(t, "20240115_103005", utils.RunStamp(ts))
	assert.Equal(t, ts, utils.FixedClock{T: ts}.Now())
}
