package store

import (
	"fmt"
	"log/slog"

	"github.com/snstore/snstore/layout"
	"github.com/snstore/snstore/schema"
)

// Ref is a resolved handle on one layout node. Pre-resolving a container
// once and addressing fields relative to it skips the per-operation path
// walk on hot paths.
type Ref struct {
	st   *Store
	node *layout.Node
}

// Node exposes the underlying layout node.
func (r Ref) Node() *layout.Node {
	return r.node
}

// At resolves a path relative to this node.
func (r Ref) At(path string) (Ref, error) {
	n, err := r.node.Resolve(path)
	if err != nil {
		return Ref{}, err
	}

	return Ref{st: r.st, node: n}, nil
}

// WaitSem acquires the node's container semaphore. Callers pair it with
// PostSem to make a multi-field group atomic, passing protect=false to the
// operations in between. Never hold two container semaphores at once.
func (r Ref) WaitSem() error {
	return r.st.seg.Sem(r.node.SemID).Acquire()
}

// PostSem releases the node's container semaphore.
func (r Ref) PostSem() error {
	return r.st.seg.Sem(r.node.SemID).Release()
}

// protect runs fn under the node's container semaphore when asked. A failed
// acquire is treated as a stuck semaphore: the access proceeds and the
// release still runs, so the count recovers.
func (s *Store) protect(n *layout.Node, protected bool, fn func()) {
	if !protected {
		fn()
		return
	}

	h := s.seg.Sem(n.SemID)
	if err := h.Acquire(); err != nil {
		s.logger.Warn("semaphore acquire failed, assuming stuck",
			slog.Int("sem", n.SemID), slog.Any("error", err))
	}
	fn()
	if err := h.Release(); err != nil {
		s.logger.Warn("semaphore release failed",
			slog.Int("sem", n.SemID), slog.Any("error", err))
	}
}

// rawInt reads an int field's bits with signed interpretation at its
// declared width.
func (s *Store) rawInt(n *layout.Node) int64 {
	switch n.Size {
	case 8:
		return int64(s.seg.Uint64At(n.Offset))
	case 2:
		return int64(int16(s.seg.Uint16At(n.Offset)))
	case 1:
		return int64(int8(s.seg.ByteAt(n.Offset)))
	default:
		return int64(int32(s.seg.Uint32At(n.Offset)))
	}
}

func (s *Store) rawSetInt(n *layout.Node, v int64) {
	switch n.Size {
	case 8:
		s.seg.SetUint64At(n.Offset, uint64(v))
	case 2:
		s.seg.SetUint16At(n.Offset, uint16(v))
	case 1:
		s.seg.SetByteAt(n.Offset, byte(v))
	default:
		s.seg.SetUint32At(n.Offset, uint32(v))
	}
}

// rawString reads the field's bytes up to the first NUL.
func (s *Store) rawString(n *layout.Node) string {
	b := s.seg.BytesAt(n.Offset, n.Size)
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}

	return string(b)
}

// rawSetString copies at most size-1 bytes and NUL-fills the rest, so the
// field always terminates.
func (s *Store) rawSetString(n *layout.Node, v string) {
	b := s.seg.BytesAt(n.Offset, n.Size)
	limit := n.Size - 1
	if len(v) > limit {
		v = v[:limit]
	}
	copy(b, v)
	clear(b[len(v):])
}

func (s *Store) rawSetBool(n *layout.Node, v bool) {
	if v {
		s.seg.SetByteAt(n.Offset, 0xFF)
		return
	}
	s.seg.SetByteAt(n.Offset, 0x00)
}

func (s *Store) stamp(n *layout.Node) {
	s.seg.SetUint64At(n.TimeOffset, uint64(s.now()))
}

// readFloat decodes the stored kind and coerces to float64. The unprotected
// core of Float64.
func (s *Store) readFloat(n *layout.Node) (float64, bool) {
	switch n.Kind {
	case schema.KindFloat:
		return s.seg.Float64At(n.Offset), true
	case schema.KindInt:
		return float64(s.rawInt(n)), true
	case schema.KindBool:
		return float64(boolToInt(s.seg.ByteAt(n.Offset) != 0)), true
	case schema.KindString:
		return parseFloat(s.rawString(n)), true
	default:
		return 0, false
	}
}

func (s *Store) readInt(n *layout.Node) (int64, bool) {
	switch n.Kind {
	case schema.KindFloat:
		return roundToInt(s.seg.Float64At(n.Offset)), true
	case schema.KindInt:
		return s.rawInt(n), true
	case schema.KindBool:
		return boolToInt(s.seg.ByteAt(n.Offset) != 0), true
	case schema.KindString:
		return parseInt(s.rawString(n)), true
	default:
		return 0, false
	}
}

func (s *Store) readBool(n *layout.Node) (bool, bool) {
	switch n.Kind {
	case schema.KindFloat:
		return s.seg.Float64At(n.Offset) != 0, true
	case schema.KindInt:
		return s.rawInt(n) != 0, true
	case schema.KindBool:
		return s.seg.ByteAt(n.Offset) != 0, true
	case schema.KindString:
		return parseBool(s.rawString(n)), true
	default:
		return false, false
	}
}

func (s *Store) readString(n *layout.Node) (string, bool) {
	switch n.Kind {
	case schema.KindFloat:
		return formatFloat(s.seg.Float64At(n.Offset), precisionOf(n)), true
	case schema.KindInt:
		return formatInt(s.rawInt(n), n.Size, precisionOf(n)), true
	case schema.KindBool:
		return formatBool(s.seg.ByteAt(n.Offset) != 0), true
	case schema.KindString:
		return s.rawString(n), true
	default:
		return "", false
	}
}

func (s *Store) writeFloat(n *layout.Node, v float64, stamp bool) bool {
	switch n.Kind {
	case schema.KindFloat:
		s.seg.SetFloat64At(n.Offset, v)
	case schema.KindInt:
		s.rawSetInt(n, roundToInt(v))
	case schema.KindBool:
		s.rawSetBool(n, v != 0)
	case schema.KindString:
		s.rawSetString(n, formatFloat(v, precisionOf(n)))
	default:
		return false
	}
	if stamp {
		s.stamp(n)
	}

	return true
}

func (s *Store) writeInt(n *layout.Node, v int64, stamp bool) bool {
	switch n.Kind {
	case schema.KindFloat:
		s.seg.SetFloat64At(n.Offset, float64(v))
	case schema.KindInt:
		s.rawSetInt(n, v)
	case schema.KindBool:
		s.rawSetBool(n, v != 0)
	case schema.KindString:
		// Int-to-string writes use bare hex; only reads pad to the
		// field width.
		s.rawSetString(n, fmt.Sprintf("0x%X", uint64(v)))
	default:
		return false
	}
	if stamp {
		s.stamp(n)
	}

	return true
}

func (s *Store) writeBool(n *layout.Node, v bool, stamp bool) bool {
	switch n.Kind {
	case schema.KindFloat:
		s.seg.SetFloat64At(n.Offset, float64(boolToInt(v)))
	case schema.KindInt:
		s.rawSetInt(n, boolToInt(v))
	case schema.KindBool:
		s.rawSetBool(n, v)
	case schema.KindString:
		s.rawSetString(n, formatBool(v))
	default:
		return false
	}
	if stamp {
		s.stamp(n)
	}

	return true
}

func (s *Store) writeString(n *layout.Node, v string, stamp bool) bool {
	switch n.Kind {
	case schema.KindFloat:
		s.seg.SetFloat64At(n.Offset, parseFloat(v))
	case schema.KindInt:
		s.rawSetInt(n, parseInt(v))
	case schema.KindBool:
		s.rawSetBool(n, parseBool(v))
	case schema.KindString:
		s.rawSetString(n, v)
	default:
		return false
	}
	if stamp {
		s.stamp(n)
	}

	return true
}

// Float64 reads the field coerced to float64. The second result is false
// only for containers.
func (r Ref) Float64(protect bool) (v float64, ok bool) {
	r.st.protect(r.node, protect, func() {
		v, ok = r.st.readFloat(r.node)
	})

	return v, ok
}

// Int64 reads the field coerced to int64. Doubles round to nearest, strings
// parse with base-0 rules.
func (r Ref) Int64(protect bool) (v int64, ok bool) {
	r.st.protect(r.node, protect, func() {
		v, ok = r.st.readInt(r.node)
	})

	return v, ok
}

// Int32 reads the field coerced to int32.
func (r Ref) Int32(protect bool) (int32, bool) {
	v, ok := r.Int64(protect)

	return int32(v), ok
}

// Bool reads the field coerced to bool: numbers are true when non-zero,
// strings when they equal "true" ignoring case.
func (r Ref) Bool(protect bool) (v bool, ok bool) {
	r.st.protect(r.node, protect, func() {
		v, ok = r.st.readBool(r.node)
	})

	return v, ok
}

// String reads the field coerced to its textual form.
func (r Ref) String(protect bool) (v string, ok bool) {
	r.st.protect(r.node, protect, func() {
		v, ok = r.st.readString(r.node)
	})

	return v, ok
}

// SetFloat64 writes the field from a float64, coercing to the stored kind,
// and stamps the update time.
func (r Ref) SetFloat64(v float64, protect bool) (ok bool) {
	r.st.protect(r.node, protect, func() {
		ok = r.st.writeFloat(r.node, v, true)
	})
	if !ok {
		r.st.warnMismatch(r.node, "float")
	}

	return ok
}

// SetInt64 writes the field from an int64 and stamps the update time.
func (r Ref) SetInt64(v int64, protect bool) (ok bool) {
	r.st.protect(r.node, protect, func() {
		ok = r.st.writeInt(r.node, v, true)
	})
	if !ok {
		r.st.warnMismatch(r.node, "int")
	}

	return ok
}

// SetBool writes the field from a bool and stamps the update time.
func (r Ref) SetBool(v bool, protect bool) (ok bool) {
	r.st.protect(r.node, protect, func() {
		ok = r.st.writeBool(r.node, v, true)
	})
	if !ok {
		r.st.warnMismatch(r.node, "bool")
	}

	return ok
}

// SetString writes the field from a string and stamps the update time.
// String fields truncate to size-1 bytes and stay NUL-terminated.
func (r Ref) SetString(v string, protect bool) (ok bool) {
	r.st.protect(r.node, protect, func() {
		ok = r.st.writeString(r.node, v, true)
	})
	if !ok {
		r.st.warnMismatch(r.node, "string")
	}

	return ok
}

func (s *Store) warnMismatch(n *layout.Node, requested string) {
	s.logger.Warn("type mismatch",
		slog.String("field", n.Name),
		slog.String("kind", n.Kind.String()),
		slog.String("requested", requested))
}
