//go:build darwin || freebsd || netbsd

package index

import (
	"os"
	"syscall"
	"time"
)

// creationTime returns the file birth time.
func creationTime(info os.FileInfo) (time.Time, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(stat.Birthtimespec.Sec), int64(stat.Birthtimespec.Nsec)), true
}
