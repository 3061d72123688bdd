//go:build !linux

package segment

import (
	"github.com/snstore/snstore/errs"
	"github.com/snstore/snstore/layout"
)

// Attach fails on platforms without POSIX shared memory and shared futexes.
func Attach(name string, l *layout.Layout, cfg Config, writeDefaults func(*Segment) error) (*Segment, error) {
	return nil, errs.ErrUnsupported
}

// Close is a no-op on unsupported platforms.
func (s *Segment) Close() error {
	return nil
}

func unlinkObject(name string) error {
	return errs.ErrUnsupported
}
