//go:build linux

package segment

import "golang.org/x/sys/unix"

// NowMS returns the system monotonic clock in milliseconds, rounded to the
// nearest millisecond. CLOCK_MONOTONIC counts from boot, so timestamps are
// comparable across every process attached to the segment.
func NowMS() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}

	return int64(ts.Sec)*1000 + (int64(ts.Nsec)+500_000)/1_000_000
}
