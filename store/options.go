package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/snstore/snstore/internal/options"
)

type settings struct {
	logger            *slog.Logger
	semPrefix         string
	skipPermissionFix bool
	now               func() int64
	onFirstWriter     func(*Store)
}

// Option configures Open.
type Option = options.Option[*settings]

// WithLogger sets the logger for handshake milestones, coercion failures
// and semaphore trouble. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(s *settings) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		s.logger = logger

		return nil
	})
}

// WithSemaphorePrefix overrides the name prefix for the container
// semaphores. Deployments running several stores side by side pick distinct
// prefixes so their semaphores never collide.
func WithSemaphorePrefix(prefix string) Option {
	return options.New(func(s *settings) error {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("semaphore prefix %q must start with '/'", prefix)
		}
		s.semPrefix = prefix

		return nil
	})
}

// WithoutPermissionFix skips the chmod that widens the segment to 0666
// after creation. Single-user deployments that run under a restrictive
// umask on purpose use this.
func WithoutPermissionFix() Option {
	return options.NoError(func(s *settings) {
		s.skipPermissionFix = true
	})
}

// WithClock replaces the monotonic millisecond clock used for update-time
// stamps. Tests use it to make timestamps deterministic.
func WithClock(now func() int64) Option {
	return options.New(func(s *settings) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		s.now = now

		return nil
	})
}

// WithFirstWriter registers a callback invoked after Open iff this process
// performed the first-writer initialization, with defaults already in
// place. Processes that attach to an existing segment never see it.
func WithFirstWriter(fn func(*Store)) Option {
	return options.NoError(func(s *settings) {
		s.onFirstWriter = fn
	})
}
