package utils

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ToString converts various types to string.
// Nil becomes the empty string rather than "<nil>".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatBytes renders a byte count with thousands separators, e.g. "1,234 bytes".
func FormatBytes(n int64) string {
	return humanize.Comma(n) + " bytes"
}

// FormatSize renders a byte count in human units, e.g. "1.2 MB".
func FormatSize(n int64) string {
	if n < 0 {
		return "-" + humanize.Bytes(uint64(-n))
	}
	return humanize.Bytes(uint64(n))
}
