// Package sem implements named, inter-process counting semaphores backed by
// a small shared-memory object containing a futex word.
//
// Each semaphore lives in a 32-byte /dev/shm object holding the counter and
// a waiter count. Acquire decrements the counter, sleeping in the kernel via
// FUTEX_WAIT while it is zero; Release increments it and wakes one waiter.
// The futex opcodes are the shared (non-private) variants because waiters
// live in other processes.
//
// Open is create-exclusive then reopen: the first process to name the
// semaphore initializes its counter, later processes attach to the existing
// object unchanged.
//
// Only Linux provides the required primitives; on other platforms every
// operation fails with errs.ErrUnsupported.
package sem

import (
	"errors"
	"time"
)

// ErrTimeout reports that a timed acquire expired before the semaphore was
// posted.
var ErrTimeout = errors.New("semaphore wait timed out")

// objectSize is the byte size of the backing shared-memory object.
const objectSize = 32

// Byte offsets inside the object.
const (
	valueOffset   = 0
	waitersOffset = 4
)

// Sem is an open named semaphore. It is safe for concurrent use by multiple
// goroutines and multiple processes.
type Sem struct {
	name string
	semState
}

// Name returns the semaphore's registered name, such as "/snSem_3".
func (s *Sem) Name() string { return s.name }

// Acquire decrements the counter, blocking until it is positive.
func (s *Sem) Acquire() error {
	return s.acquire(-1)
}

// AcquireTimeout decrements the counter, blocking up to d. It returns
// ErrTimeout when the wait expires.
func (s *Sem) AcquireTimeout(d time.Duration) error {
	return s.acquire(d)
}

// TryAcquire decrements the counter only if it is currently positive.
func (s *Sem) TryAcquire() bool {
	return s.tryAcquire()
}

// Release increments the counter and wakes one waiting process.
func (s *Sem) Release() error {
	return s.release()
}

// Close unmaps and closes the semaphore. The named object stays in place
// for other processes; use Unlink to remove it.
func (s *Sem) Close() error {
	return s.close()
}
