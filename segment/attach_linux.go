//go:build linux

package segment

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/snstore/snstore/errs"
	"github.com/snstore/snstore/layout"
	"github.com/snstore/snstore/sem"
)

const shmDir = "/dev/shm/"

func shmPath(name string) string {
	return shmDir + strings.TrimPrefix(name, "/")
}

// Attach opens the named shared-memory object sized for the layout and runs
// the initialization handshake.
//
// Exactly one of the processes racing to attach a fresh segment becomes the
// first writer: it moves the header to the in-progress state, zeroes the
// payload, allocates the container semaphores, invokes writeDefaults, writes
// the validity signature and marks the header valid. Everyone else waits on
// the init semaphore, bounded by InitWaitTimeout, then validates the header
// and reopens the semaphores without touching the payload. A header that
// fails validation sends the attacher down the first-writer path instead:
// the corrupt segment is re-initialized and defaults rewritten.
func Attach(name string, l *layout.Layout, cfg Config, writeDefaults func(*Segment) error) (*Segment, error) {
	cfg.fill()

	s := &Segment{
		name:      name,
		logger:    cfg.Logger,
		semPrefix: cfg.SemPrefix,
	}

	created, err := s.openAndMap(l.PayloadSize, cfg.SkipPermissionFix)
	if err != nil {
		return nil, err
	}

	if created {
		if err := s.initialize(l, writeDefaults); err != nil {
			s.Close()
			return nil, err
		}

		return s, nil
	}

	if err := s.awaitValid(l, writeDefaults); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// openAndMap opens the object create-exclusive first so file creation
// decides the first writer, then maps it read-write at the required size.
func (s *Segment) openAndMap(size int, skipPermissionFix bool) (created bool, err error) {
	path := shmPath(s.name)

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR, 0o666)
	switch {
	case err == nil:
		created = true
	case err == unix.EEXIST:
		fd, err = unix.Open(path, unix.O_RDWR, 0o666)
		if err != nil {
			return false, fmt.Errorf("segment: open %s: %v: %w", s.name, err, errs.ErrSegmentOpen)
		}
	default:
		return false, fmt.Errorf("segment: create %s: %v: %w", s.name, err, errs.ErrSegmentOpen)
	}

	if !skipPermissionFix {
		// The umask may strip group/other bits on create; every attaching
		// process needs read-write access to the object.
		_ = unix.Fchmod(fd, 0o666)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return false, fmt.Errorf("segment: stat %s: %v: %w", s.name, err, errs.ErrSegmentOpen)
	}
	if st.Size != int64(size) {
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			unix.Close(fd)
			return false, fmt.Errorf("segment: size %s to %d: %v: %w", s.name, size, err, errs.ErrSegmentOpen)
		}
	}

	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return false, fmt.Errorf("segment: map %s: %v: %w", s.name, err, errs.ErrSegmentOpen)
	}

	s.fd = fd
	s.mem = mem

	return created, nil
}

// initialize performs the first-writer sequence.
func (s *Segment) initialize(l *layout.Layout, writeDefaults func(*Segment) error) error {
	s.logger.Debug("initializing segment", slog.String("segment", s.name),
		slog.Int("size", len(s.mem)), slog.Int("sems", l.SemCount))

	s.mem[0] = StateInProgress
	for i := reservedStart; i < HeaderSize; i++ {
		s.mem[i] = 0
	}
	clear(s.mem[HeaderSize:])

	initSem, err := sem.Open(s.initSemName(), 0)
	if err != nil {
		return fmt.Errorf("segment: init semaphore: %w", err)
	}
	defer initSem.Close()

	if err := s.openSems(l); err != nil {
		return err
	}

	if writeDefaults != nil {
		if err := writeDefaults(s); err != nil {
			return fmt.Errorf("segment: write defaults: %w", err)
		}
	}

	writeSignature(s.mem[:HeaderSize])
	s.mem[0] = StateValid
	s.initialized = true

	if err := initSem.Release(); err != nil {
		return err
	}
	s.logger.Debug("segment initialized", slog.String("segment", s.name))

	return nil
}

// awaitValid attaches to an existing object: wait out any in-progress
// initializer, validate the header, and bind the semaphores. An object that
// never leaves the empty state within the handshake bound, or whose header
// fails validation, is considered abandoned or corrupt and re-initialized
// by this process.
func (s *Segment) awaitValid(l *layout.Layout, writeDefaults func(*Segment) error) error {
	deadline := time.Now().Add(InitWaitTimeout)
	for s.State() == StateEmpty {
		if time.Now().After(deadline) {
			s.logger.Warn("segment stuck empty, taking over initialization",
				slog.String("segment", s.name))
			return s.initialize(l, writeDefaults)
		}
		time.Sleep(initPollDelay)
	}

	if s.State() == StateInProgress {
		// Give the initializer a beat before parking on the semaphore.
		time.Sleep(initPollDelay)

		initSem, err := sem.Open(s.initSemName(), 0)
		if err != nil {
			return fmt.Errorf("segment: init semaphore: %w", err)
		}
		defer initSem.Close()

		s.logger.Debug("waiting for initializer", slog.String("segment", s.name))
		if err := initSem.AcquireTimeout(InitWaitTimeout); err != nil {
			if !errors.Is(err, sem.ErrTimeout) {
				return err
			}
			// The header check below decides what a timed-out wait means.
			s.logger.Warn("init handshake timed out, validating header",
				slog.String("segment", s.name), slog.Any("error", errs.ErrInitTimeout))
		} else {
			// Re-post so every other parked attacher wakes in turn.
			if err := initSem.Release(); err != nil {
				return err
			}
		}
	}

	if err := validateHeader(s.mem[:HeaderSize]); err != nil {
		s.logger.Warn("segment header invalid, taking over initialization",
			slog.String("segment", s.name), slog.Any("error", err))
		return s.initialize(l, writeDefaults)
	}

	if err := s.openSems(l); err != nil {
		return err
	}
	s.logger.Debug("attached to valid segment", slog.String("segment", s.name))

	return nil
}

// Close unmaps the segment and closes the semaphore handles. The object and
// its contents stay in place for other processes.
func (s *Segment) Close() error {
	s.closeSems()
	if s.mem == nil {
		return nil
	}
	err := unix.Munmap(s.mem)
	s.mem = nil
	closeErr := unix.Close(s.fd)
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("segment: close %s: %v: %w", s.name, err, errs.ErrSegmentOpen)
	}

	return nil
}

func unlinkObject(name string) error {
	if err := unix.Unlink(shmPath(name)); err != nil {
		return fmt.Errorf("segment: unlink %s: %v: %w", name, err, errs.ErrSegmentOpen)
	}

	return nil
}
