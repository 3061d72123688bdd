// Package mirror maintains a private copy of a store's payload and reports
// which fields moved since the last synchronization.
//
// A Mirror allocates a buffer with the same size and offsets as the shared
// payload and fills it from the live segment. Changes walks the directory,
// compares each live scalar against the mirrored one and collects fields
// whose difference exceeds the schema's hysteresis band into a dynval map
// or sequence, refreshing the mirror for every reported field. Fields that
// drift inside the band stay unreported and unrefreshed, so small movements
// accumulate until they cross the band. This is the poll-and-diff primitive
// behind change feeds.
package mirror

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/endian"
	"github.com/snstore/snstore/errs"
	"github.com/snstore/snstore/internal/options"
	"github.com/snstore/snstore/layout"
	"github.com/snstore/snstore/schema"
	"github.com/snstore/snstore/store"
)

type settings struct {
	logger *slog.Logger
}

// Option configures New.
type Option = options.Option[*settings]

// WithLogger sets the mirror's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(s *settings) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		s.logger = logger

		return nil
	})
}

// Mirror is a private, single-process copy of one store's payload. A Mirror
// is not safe for concurrent use; each consumer keeps its own.
type Mirror struct {
	st     *store.Store
	lay    *layout.Layout
	buf    []byte
	eng    endian.EndianEngine
	logger *slog.Logger
}

// New builds a mirror of the store and synchronizes it with the live
// payload, so the first Changes call reports only movement after New.
func New(st *store.Store, opts ...Option) (*Mirror, error) {
	set := &settings{logger: slog.Default()}
	if err := options.Apply(set, opts...); err != nil {
		return nil, fmt.Errorf("mirror: %w", err)
	}

	m := &Mirror{
		st:     st,
		lay:    st.Layout(),
		buf:    make([]byte, st.Layout().PayloadSize),
		eng:    nativeEngine(),
		logger: set.logger,
	}
	m.refresh(m.lay.Root)
	m.logger.Debug("mirror synchronized",
		slog.String("segment", st.Name()), slog.Int("bytes", len(m.buf)))

	return m, nil
}

// Payload scalars live in host order, so the mirror buffer does too.
func nativeEngine() endian.EndianEngine {
	if endian.IsNativeLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

// Update refreshes the whole mirror from the segment without computing a
// delta.
func (m *Mirror) Update() {
	m.refresh(m.lay.Root)
}

// UpdateAt refreshes the subtree at path.
func (m *Mirror) UpdateAt(path string) error {
	n, err := m.lay.Resolve(path)
	if err != nil {
		return err
	}
	m.refresh(n)

	return nil
}

// Changes compares the live payload against the mirror from the root.
// Result must be a dynval map or sequence; changed fields are attached as
// named entries or appended positionally, containers only when non-empty.
// Returns whether anything was recorded.
func (m *Mirror) Changes(result *dynval.Value) (bool, error) {
	return m.changesFrom(m.lay.Root, result)
}

// ChangesAt runs the delta walk on the subtree at path.
func (m *Mirror) ChangesAt(result *dynval.Value, path string) (bool, error) {
	n, err := m.lay.Resolve(path)
	if err != nil {
		return false, err
	}

	return m.changesFrom(n, result)
}

func (m *Mirror) changesFrom(n *layout.Node, result *dynval.Value) (bool, error) {
	if result == nil || (!result.IsMap() && !result.IsSequence()) {
		return false, fmt.Errorf("mirror: result must be a map or sequence: %w",
			errs.ErrTypeMismatch)
	}
	if n == m.lay.Root {
		// The root's fields land directly in result, not under the root's
		// empty name.
		changed := false
		for _, c := range n.Children {
			if m.check(c, result) {
				changed = true
			}
		}

		return changed, nil
	}

	return m.check(n, result), nil
}

func (m *Mirror) check(n *layout.Node, result *dynval.Value) bool {
	if n.IsScalar() {
		return m.checkScalar(n, result)
	}

	sub := dynval.NewMap()
	if n.Kind == schema.KindArray {
		sub = dynval.NewSequence()
	}
	changed := false
	for _, c := range n.Children {
		if m.check(c, sub) {
			changed = true
		}
	}
	if changed {
		attach(result, n.Name, sub)
	}

	return changed
}

func (m *Mirror) checkScalar(n *layout.Node, result *dynval.Value) bool {
	h := m.st.Handle(n)

	switch n.Kind {
	case schema.KindFloat:
		live, _ := h.Float64(true)
		hyst := float64(n.Schema.Hysteresis) / 100
		saved := m.getFloat(n)
		if live > saved+hyst || live < saved-hyst {
			m.setFloat(n, live)
			attach(result, n.Name, dynval.NewFloat(live))

			return true
		}
	case schema.KindInt:
		live, _ := h.Int64(true)
		hyst := n.Schema.Hysteresis
		saved := m.getInt(n)
		if live > saved+hyst || live < saved-hyst {
			m.setInt(n, live)
			attach(result, n.Name, dynval.NewInt(live))

			return true
		}
	case schema.KindBool:
		live, _ := h.Bool(true)
		if live != m.getBool(n) {
			m.setBool(n, live)
			attach(result, n.Name, dynval.NewBool(live))

			return true
		}
	case schema.KindString:
		live, _ := h.String(true)
		if live != m.getString(n) {
			m.setString(n, live)
			attach(result, n.Name, dynval.NewString(live))

			return true
		}
	}

	return false
}

// refresh copies live values into the mirror without reporting.
func (m *Mirror) refresh(n *layout.Node) {
	if !n.IsScalar() {
		for _, c := range n.Children {
			m.refresh(c)
		}

		return
	}

	h := m.st.Handle(n)
	switch n.Kind {
	case schema.KindFloat:
		v, _ := h.Float64(true)
		m.setFloat(n, v)
	case schema.KindInt:
		v, _ := h.Int64(true)
		m.setInt(n, v)
	case schema.KindBool:
		v, _ := h.Bool(true)
		m.setBool(n, v)
	case schema.KindString:
		v, _ := h.String(true)
		m.setString(n, v)
	}
}

func attach(result *dynval.Value, name string, v *dynval.Value) {
	if result.IsMap() {
		result.Set(name, v)
		return
	}
	result.Append(v)
}

func (m *Mirror) getFloat(n *layout.Node) float64 {
	return math.Float64frombits(m.eng.Uint64(m.buf[n.Offset:]))
}

func (m *Mirror) setFloat(n *layout.Node, v float64) {
	m.eng.PutUint64(m.buf[n.Offset:], math.Float64bits(v))
}

func (m *Mirror) getInt(n *layout.Node) int64 {
	switch n.Size {
	case 8:
		return int64(m.eng.Uint64(m.buf[n.Offset:]))
	case 2:
		return int64(int16(m.eng.Uint16(m.buf[n.Offset:])))
	case 1:
		return int64(int8(m.buf[n.Offset]))
	default:
		return int64(int32(m.eng.Uint32(m.buf[n.Offset:])))
	}
}

func (m *Mirror) setInt(n *layout.Node, v int64) {
	switch n.Size {
	case 8:
		m.eng.PutUint64(m.buf[n.Offset:], uint64(v))
	case 2:
		m.eng.PutUint16(m.buf[n.Offset:], uint16(v))
	case 1:
		m.buf[n.Offset] = byte(v)
	default:
		m.eng.PutUint32(m.buf[n.Offset:], uint32(v))
	}
}

func (m *Mirror) getBool(n *layout.Node) bool {
	return m.buf[n.Offset] != 0
}

func (m *Mirror) setBool(n *layout.Node, v bool) {
	if v {
		m.buf[n.Offset] = 0xFF
		return
	}
	m.buf[n.Offset] = 0
}

func (m *Mirror) getString(n *layout.Node) string {
	b := m.buf[n.Offset : n.Offset+n.Size]
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}

	return string(b)
}

func (m *Mirror) setString(n *layout.Node, v string) {
	b := m.buf[n.Offset : n.Offset+n.Size]
	if len(v) > len(b)-1 {
		v = v[:len(b)-1]
	}
	copy(b, v)
	clear(b[len(v):])
}
