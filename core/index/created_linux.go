//go:build linux

package index

import (
	"os"
	"syscall"
	"time"
)

// creationTime returns the inode change time, which is the closest Linux offers
// without statx.
func creationTime(info os.FileInfo) (time.Time, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(stat.Ctim.Sec), int64(stat.Ctim.Nsec)), true
}
