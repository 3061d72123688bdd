//go:build linux

package sem

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/snstore/snstore/errs"
)

const shmDir = "/dev/shm/"

type semState struct {
	fd    int
	mem   []byte
	value *uint32
	wait  *uint32
}

// Open attaches to the named semaphore, creating it with the given initial
// counter when it does not exist yet. Creation is exclusive, so exactly one
// of several racing processes initializes the counter.
func Open(name string, initial uint32) (*Sem, error) {
	path := shmPath(name)

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR, 0o666)
	switch {
	case err == nil:
		return initObject(name, fd, initial)
	case err == unix.EEXIST:
		return openExisting(name, path)
	default:
		return nil, fmt.Errorf("sem: create %s: %v: %w", name, err, errs.ErrSemaphore)
	}
}

func initObject(name string, fd int, initial uint32) (*Sem, error) {
	// The umask may have stripped group/other bits; every cooperating
	// process must be able to map the object read-write.
	_ = unix.Fchmod(fd, 0o666)

	if err := unix.Ftruncate(fd, objectSize); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sem: size %s: %v: %w", name, err, errs.ErrSemaphore)
	}

	s, err := mapObject(name, fd)
	if err != nil {
		return nil, err
	}
	atomic.StoreUint32(s.value, initial)
	atomic.StoreUint32(s.wait, 0)

	return s, nil
}

func openExisting(name, path string) (*Sem, error) {
	// The creator sizes the object right after the exclusive create; a
	// racing opener can observe it momentarily empty.
	for attempt := 0; ; attempt++ {
		fd, err := unix.Open(path, unix.O_RDWR, 0o666)
		if err != nil {
			if err == unix.ENOENT && attempt < 100 {
				time.Sleep(time.Millisecond)
				continue
			}

			return nil, fmt.Errorf("sem: open %s: %v: %w", name, err, errs.ErrSemaphore)
		}

		var st unix.Stat_t
		if err := unix.Fstat(fd, &st); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("sem: stat %s: %v: %w", name, err, errs.ErrSemaphore)
		}
		if st.Size < objectSize {
			unix.Close(fd)
			if attempt < 100 {
				time.Sleep(time.Millisecond)
				continue
			}

			return nil, fmt.Errorf("sem: %s never initialized: %w", name, errs.ErrSemaphore)
		}

		return mapObject(name, fd)
	}
}

func mapObject(name string, fd int) (*Sem, error) {
	mem, err := unix.Mmap(fd, 0, objectSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sem: map %s: %v: %w", name, err, errs.ErrSemaphore)
	}

	return &Sem{
		name: name,
		semState: semState{
			fd:    fd,
			mem:   mem,
			value: atomicWord(mem, valueOffset),
			wait:  atomicWord(mem, waitersOffset),
		},
	}, nil
}

// Unlink removes the named semaphore object. Processes that still hold it
// open keep their mapping; new opens will create a fresh semaphore.
func Unlink(name string) error {
	if err := unix.Unlink(shmPath(name)); err != nil {
		return fmt.Errorf("sem: unlink %s: %v: %w", name, err, errs.ErrSemaphore)
	}

	return nil
}

// acquire implements both the untimed (d < 0) and timed wait.
func (s *Sem) acquire(d time.Duration) error {
	var deadline time.Time
	if d >= 0 {
		deadline = time.Now().Add(d)
	}

	for {
		if s.tryAcquire() {
			return nil
		}

		var ts *unix.Timespec
		if d >= 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return fmt.Errorf("sem: %s: %w", s.name, ErrTimeout)
			}
			t := timespecFor(remaining)
			ts = &t
		}

		atomic.AddUint32(s.wait, 1)
		err := futexWait(s.value, 0, ts)
		atomic.AddUint32(s.wait, ^uint32(0))

		switch err {
		case nil, unix.EAGAIN, unix.EINTR:
			// Woken, counter changed before sleeping, or signal: retry.
		case unix.ETIMEDOUT:
			return fmt.Errorf("sem: %s: %w", s.name, ErrTimeout)
		default:
			return fmt.Errorf("sem: wait %s: %v: %w", s.name, err, errs.ErrSemaphore)
		}
	}
}

func (s *Sem) tryAcquire() bool {
	for {
		v := atomic.LoadUint32(s.value)
		if v == 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(s.value, v, v-1) {
			return true
		}
	}
}

func (s *Sem) release() error {
	atomic.AddUint32(s.value, 1)
	if atomic.LoadUint32(s.wait) > 0 {
		if err := futexWake(s.value, 1); err != nil {
			return fmt.Errorf("sem: wake %s: %v: %w", s.name, err, errs.ErrSemaphore)
		}
	}

	return nil
}

func (s *Sem) close() error {
	if s.mem == nil {
		return nil
	}
	err := unix.Munmap(s.mem)
	s.mem = nil
	s.value = nil
	s.wait = nil
	closeErr := unix.Close(s.fd)
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("sem: close %s: %v: %w", s.name, err, errs.ErrSemaphore)
	}

	return nil
}

func shmPath(name string) string {
	return shmDir + strings.TrimPrefix(name, "/")
}
