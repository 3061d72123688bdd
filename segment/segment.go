package segment

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/snstore/snstore/internal/hash"
	"github.com/snstore/snstore/layout"
	"github.com/snstore/snstore/sem"
)

// DefaultSemPrefix is the name prefix for container semaphores. Semaphore N
// of a segment is named "<prefix><N>"; deployments running several stores
// side by side pick distinct prefixes.
const DefaultSemPrefix = "/snSem_"

// InitWaitTimeout bounds how long a late attacher waits for an in-progress
// initializer to finish.
const InitWaitTimeout = 400 * time.Millisecond

// initPollDelay is the pause between state-byte polls while another process
// holds the segment in the empty or in-progress state.
const initPollDelay = time.Millisecond

// Config carries the knobs the store layer resolves from its functional
// options.
type Config struct {
	Logger            *slog.Logger
	SemPrefix         string
	SkipPermissionFix bool
}

func (c *Config) fill() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.SemPrefix == "" {
		c.SemPrefix = DefaultSemPrefix
	}
}

// Segment is an attached shared-memory object. One process may share a
// Segment between goroutines; the container semaphores carry the
// cross-process discipline.
type Segment struct {
	name        string
	mem         []byte
	fd          int
	sems        []*sem.Sem
	initialized bool
	logger      *slog.Logger
	semPrefix   string
}

// semName returns the name of container semaphore id.
func (s *Segment) semName(id int) string {
	return fmt.Sprintf("%s%d", s.semPrefix, id)
}

// initSemName derives the initialization semaphore's name from the segment
// name, so every attacher of one segment meets on the same semaphore.
func (s *Segment) initSemName() string {
	return fmt.Sprintf("%sInit_%08x", s.semPrefix, uint32(hash.ID(s.name)))
}

// openSems binds every container semaphore of the plan, in layout order.
// The first writer passes initial 1 so each container starts unlocked;
// late attachers reopen whatever exists.
func (s *Segment) openSems(l *layout.Layout) error {
	s.sems = make([]*sem.Sem, l.SemCount)
	for id := range l.SemCount {
		handle, err := sem.Open(s.semName(id), 1)
		if err != nil {
			s.closeSems()
			return fmt.Errorf("segment: semaphore %d: %w", id, err)
		}
		s.sems[id] = handle
	}

	return nil
}

func (s *Segment) closeSems() {
	for _, h := range s.sems {
		if h != nil {
			_ = h.Close()
		}
	}
	s.sems = nil
}

// Unlink removes the named shared-memory object and the semaphores a layout
// of the given shape would have allocated. The library itself never calls
// this; segment teardown is an operator action.
func Unlink(name string, semCount int, semPrefix string) error {
	if semPrefix == "" {
		semPrefix = DefaultSemPrefix
	}
	err := unlinkObject(name)
	for id := range semCount {
		_ = sem.Unlink(fmt.Sprintf("%s%d", semPrefix, id))
	}
	_ = sem.Unlink(fmt.Sprintf("%sInit_%08x", semPrefix, uint32(hash.ID(name))))

	return err
}
