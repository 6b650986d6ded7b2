//go:build linux

package vault

import (
	"io/fs"
	"syscall"
	"time"
)

func birthTime(info fs.FileInfo) (time.Time, bool) {
	// Linux exposes no birth time through os.Stat; ctime is the
	// closest stable stand-in.
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(st.Ctim.Sec, st.Ctim.Nsec), true
}

func accessTime(info fs.FileInfo) (time.Time, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(st.Atim.Sec, st.Atim.Nsec), true
}
