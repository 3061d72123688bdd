//go:build linux

package sem

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Shared futex opcodes. The PRIVATE variants would restrict wake-ups to the
// calling process, which breaks cross-process semaphores.
//
// golang.org/x/sys/unix does not export these Linux futex(2) opcode
// constants, so the raw values from linux/futex.h are used directly.
const (
	futexWaitOp = 0 // FUTEX_WAIT
	futexWakeOp = 1 // FUTEX_WAKE
)

// futexWait blocks until the word at addr no longer holds expected, a wake
// arrives, or the timeout expires. A nil timeout waits indefinitely.
// Spurious returns with EAGAIN (word changed first) and EINTR (signal) are
// surfaced for the caller's retry loop.
func futexWait(addr *uint32, expected uint32, timeout *unix.Timespec) error {
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(futexWaitOp),
		uintptr(expected),
		uintptr(unsafe.Pointer(timeout)),
		0, 0,
	)
	if errno != 0 {
		return errno
	}

	return nil
}

// futexWake wakes up to count processes waiting on the word at addr.
func futexWake(addr *uint32, count int) error {
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(futexWakeOp),
		uintptr(count),
		0, 0, 0,
	)
	if errno != 0 {
		return errno
	}

	return nil
}

// timespecFor converts a remaining duration into a relative Timespec,
// clamping at zero so an expired deadline still issues a non-blocking wait.
func timespecFor(remaining time.Duration) unix.Timespec {
	if remaining < 0 {
		remaining = 0
	}

	return unix.NsecToTimespec(remaining.Nanoseconds())
}

func atomicWord(mem []byte, offset int) *uint32 {
	return (*uint32)(unsafe.Pointer(&mem[offset]))
}
