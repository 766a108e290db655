//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package index

import (
	"os"
	"time"
)

func creationTime(os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
