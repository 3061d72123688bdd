// Package snstore provides a schema-driven object store in POSIX shared
// memory, shared by any number of cooperating processes on one host.
//
// A store is described by a JSON schema: a tree of units (named fields),
// arrays (indexed elements) and scalars (float, int, bool, string). The
// schema compiles into a fixed segment layout with type-segregated pools,
// per-field update timestamps and one semaphore per container. The first
// process to create the segment writes the schema defaults; later processes
// attach to the same bytes and see live values immediately.
//
// # Basic Usage
//
// Opening a store from a schema file:
//
//	import "github.com/snstore/snstore"
//
//	st, err := snstore.Open("/flight", "flight.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	st.SetFloat64("gps.lat", 48.137154, true)
//	lat, ok := st.Float64("gps.lat", true)
//
// Reads and writes go through dotted paths. The trailing bool selects
// protected access: the field's container semaphore is held for the
// duration of the operation. Values coerce between scalar types on both
// reads and writes, so a float field can be read as its formatted string
// and a string field holding "0x2A" can be read as 42.
//
// Watching fields for movement:
//
//	m, err := snstore.NewMirror(st)
//	...
//	delta := dynval.NewMap()
//	if changed, _ := m.Changes(delta); changed {
//	    // delta holds only the fields that moved past their hysteresis
//	}
//
// Archiving a store:
//
//	blob, err := snstore.Capture(st, compress.TypeZstd)
//	snap, err := snstore.Restore(blob)
//
// The subpackages carry the full API: store for typed access, schema and
// layout for the declaration pipeline, mirror for change detection,
// snapshot for export/import, and segment for the shared-memory lifecycle.
package snstore

import (
	"github.com/snstore/snstore/compress"
	"github.com/snstore/snstore/mirror"
	"github.com/snstore/snstore/schema"
	"github.com/snstore/snstore/segment"
	"github.com/snstore/snstore/snapshot"
	"github.com/snstore/snstore/store"
)

// Open attaches to the named segment, creating and initializing it from
// the JSON schema file if this process is the first writer.
//
// The name follows shm_open conventions: a single path component with a
// leading slash, such as "/flight".
func Open(name, schemaPath string, opts ...store.Option) (*store.Store, error) {
	return store.OpenFile(name, schemaPath, opts...)
}

// OpenSchema is Open for an already-parsed schema tree.
func OpenSchema(name string, root *schema.Node, opts ...store.Option) (*store.Store, error) {
	return store.Open(name, root, opts...)
}

// NewMirror returns a change detector seeded with the store's current
// values. Successive Changes calls report fields that moved past their
// declared hysteresis since the mirror last saw them.
func NewMirror(st *store.Store, opts ...mirror.Option) (*mirror.Mirror, error) {
	return mirror.New(st, opts...)
}

// Capture exports the store as a self-describing snapshot blob.
func Capture(st *store.Store, codec compress.Type) ([]byte, error) {
	return snapshot.Capture(st, codec)
}

// CaptureFile exports the store as a snapshot file.
func CaptureFile(st *store.Store, codec compress.Type, path string) error {
	return snapshot.CaptureFile(st, codec, path)
}

// Restore decodes and verifies a snapshot blob.
func Restore(blob []byte) (*snapshot.Snapshot, error) {
	return snapshot.Decode(blob)
}

// Unlink removes the named segment and its semaphores from the system.
//
// Attached processes keep their mappings until they close; new opens
// after Unlink create a fresh segment. The store library itself never
// unlinks, so cleanup is an explicit operator action.
func Unlink(name string, semCount int, semPrefix string) error {
	return segment.Unlink(name, semCount, semPrefix)
}
