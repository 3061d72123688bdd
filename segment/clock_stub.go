//go:build !linux

package segment

import "time"

// NowMS falls back to the wall clock where no shared monotonic clock is
// available. Segments cannot be attached on these platforms anyway.
func NowMS() int64 {
	return time.Now().UnixMilli()
}
