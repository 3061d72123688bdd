//go:build !linux

package sem

import (
	"time"

	"github.com/snstore/snstore/errs"
)

type semState struct{}

// Open fails on platforms without shared futex support.
func Open(name string, initial uint32) (*Sem, error) {
	return nil, errs.ErrUnsupported
}

// Unlink fails on platforms without shared futex support.
func Unlink(name string) error {
	return errs.ErrUnsupported
}

func (s *Sem) acquire(d time.Duration) error { return errs.ErrUnsupported }
func (s *Sem) tryAcquire() bool              { return false }
func (s *Sem) release() error                { return errs.ErrUnsupported }
func (s *Sem) close() error                  { return errs.ErrUnsupported }
