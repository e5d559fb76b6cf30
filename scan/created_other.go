//go:build !linux

package scan

import (
	"io/fs"
	"time"
)

func created(_ string, fi fs.FileInfo) time.Time {
	return fi.ModTime()
}
