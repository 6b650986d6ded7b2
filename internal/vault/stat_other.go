//go:build !linux && !darwin

package vault

import (
	"io/fs"
	"time"
)

func birthTime(fs.FileInfo) (time.Time, bool) { return time.Time{}, false }

func accessTime(fs.FileInfo) (time.Time, bool) { return time.Time{}, false }
