// Package store is the typed access layer over a shared-memory segment.
//
// A Store compiles a schema into a layout, attaches the named segment and
// exposes path-addressed reads and writes with cross-type coercion. Paths
// use '.' or '/' interchangeably. Every operation takes a protect flag:
// when true the scalar's container semaphore is held around the memory
// access; when false the caller already holds it (for example inside a
// WaitSem/PostSem pair spanning several fields of one container).
//
// Reads on a mismatched kind coerce rather than fail: an int field reads
// back as a double, a bool reads back as "True", a string field parses into
// a number. Only container nodes refuse scalar access. Every successful
// write stamps the scalar's update-time slot with the monotonic
// millisecond clock, which WaitForUpdate polls.
package store

import (
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"

	"github.com/snstore/snstore/internal/options"
	"github.com/snstore/snstore/layout"
	"github.com/snstore/snstore/schema"
	"github.com/snstore/snstore/segment"
)

// Store is an attached, schema-typed shared-memory object. A Store is safe
// for concurrent use by multiple goroutines as long as callers follow the
// semaphore discipline: protected operations never nest, and a caller holds
// at most one container semaphore at a time.
type Store struct {
	seg    *segment.Segment
	lay    *layout.Layout
	root   *schema.Node
	logger *slog.Logger
	now    func() int64
}

// Open compiles the schema, attaches the named shared-memory segment and
// returns the store. The first process to attach writes every scalar's
// schema default into the fresh payload; later processes find the segment
// valid and leave its contents alone.
func Open(name string, root *schema.Node, opts ...Option) (*Store, error) {
	set := &settings{
		logger: slog.Default(),
		now:    segment.NowMS,
	}
	if err := options.Apply(set, opts...); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	s := &Store{
		lay:    layout.Compile(root),
		root:   root,
		logger: set.logger,
		now:    set.now,
	}

	cfg := segment.Config{
		Logger:            set.logger,
		SemPrefix:         set.semPrefix,
		SkipPermissionFix: set.skipPermissionFix,
	}
	seg, err := segment.Attach(name, s.lay, cfg, func(sg *segment.Segment) error {
		s.seg = sg
		s.writeDefaults()

		return nil
	})
	if err != nil {
		return nil, err
	}
	s.seg = seg

	if seg.Initialized() && set.onFirstWriter != nil {
		set.onFirstWriter(s)
	}

	return s, nil
}

// OpenFile reads the schema from a JSON file and opens the store.
func OpenFile(name, schemaPath string, opts ...Option) (*Store, error) {
	root, err := schema.FromFile(schemaPath)
	if err != nil {
		return nil, err
	}

	return Open(name, root, opts...)
}

// writeDefaults runs as the first-writer callback: the header is still in
// progress, so no other process reads the payload and no semaphores are
// needed. Update-time slots stay zero so UpdateTime reports "never written"
// until a real write lands.
func (s *Store) writeDefaults() {
	s.lay.Walk(func(n *layout.Node) {
		if !n.IsScalar() || n.Schema.Default == nil {
			return
		}
		if !s.storeValue(n, n.Schema.Default, false) {
			s.logger.Warn("default value does not fit field",
				slog.String("field", n.Name), slog.String("kind", n.Kind.String()))
		}
	})
}

// Close detaches from the segment. The segment and its contents remain for
// other processes; removal is Unlink's job.
func (s *Store) Close() error {
	return s.seg.Close()
}

// Name returns the shared-memory object name.
func (s *Store) Name() string {
	return s.seg.Name()
}

// Layout exposes the compiled layout, mainly for diagnostics.
func (s *Store) Layout() *layout.Layout {
	return s.lay
}

// Initialized reports whether this process performed the first-writer
// initialization of the segment.
func (s *Store) Initialized() bool {
	return s.seg.Initialized()
}

// Fingerprint hashes the entire payload, update-time slots included. Two
// attachments of one segment always agree on the fingerprint at a quiet
// moment.
func (s *Store) Fingerprint() uint64 {
	return xxhash.Sum64(s.seg.Payload())
}

// Root returns a handle on the top-level container.
func (s *Store) Root() Ref {
	return Ref{st: s, node: s.lay.Root}
}

// Handle wraps an already-resolved layout node of this store's layout in a
// Ref. Walkers that traverse the layout directly use it to skip path
// resolution.
func (s *Store) Handle(n *layout.Node) Ref {
	return Ref{st: s, node: n}
}

// At resolves a path from the root and returns a handle for it.
func (s *Store) At(path string) (Ref, error) {
	n, err := s.lay.Resolve(path)
	if err != nil {
		return Ref{}, err
	}

	return Ref{st: s, node: n}, nil
}

// at resolves for the value-returning convenience methods, logging instead
// of propagating the error.
func (s *Store) at(path string) (Ref, bool) {
	r, err := s.At(path)
	if err != nil {
		s.logger.Warn("path not found", slog.String("path", path))
		return Ref{}, false
	}

	return r, true
}
