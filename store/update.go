package store

import (
	"log/slog"
	"strconv"

	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/layout"
)

// Set applies a dynval value to this node. Scalars take a scalar value
// through the coercion matrix. A map applies to a unit child-by-child,
// matched by name; a sequence applies to an array, matched by index.
// Entries without a matching child are skipped silently; a leaf whose value
// cannot land is skipped with a logged warning. Returns true iff every
// entry that matched a child was applied.
func (r Ref) Set(v *dynval.Value, protect bool) bool {
	return r.st.apply(r.node, v, protect)
}

func (s *Store) apply(n *layout.Node, v *dynval.Value, protect bool) bool {
	switch {
	case v.IsMap():
		return s.applyMap(n, v, protect)
	case v.IsSequence():
		return s.applySequence(n, v, protect)
	default:
		return s.applyScalar(n, v, protect)
	}
}

func (s *Store) applyMap(n *layout.Node, v *dynval.Value, protect bool) bool {
	if !n.IsContainer() {
		s.warnMismatch(n, "map")
		return false
	}

	ok := true
	for i := range v.Len() {
		key, entry := v.Entry(i)
		child := n.Find(key)
		if child == nil {
			continue
		}
		if !s.apply(child, entry, protect) {
			ok = false
		}
	}

	return ok
}

func (s *Store) applySequence(n *layout.Node, v *dynval.Value, protect bool) bool {
	if !n.IsContainer() {
		s.warnMismatch(n, "sequence")
		return false
	}

	ok := true
	for i := range v.Len() {
		child := n.Find(strconv.Itoa(i))
		if child == nil {
			continue
		}
		if !s.apply(child, v.Index(i), protect) {
			ok = false
		}
	}

	return ok
}

func (s *Store) applyScalar(n *layout.Node, v *dynval.Value, protect bool) (ok bool) {
	if !n.IsScalar() {
		s.logger.Warn("scalar value against container",
			slog.String("field", n.Name))
		return false
	}

	s.protect(n, protect, func() {
		ok = s.storeValue(n, v, true)
	})
	if !ok {
		s.warnMismatch(n, v.Kind().String())
	}

	return ok
}

// storeValue writes one dynval scalar into one layout scalar, dispatching
// on the value's kind so that, say, a string default lands on an int field
// through the string-to-int rules. Caller holds the semaphore if needed.
func (s *Store) storeValue(n *layout.Node, v *dynval.Value, stamp bool) bool {
	switch v.Kind() {
	case dynval.TypeDouble:
		f, _ := v.AsFloat()
		return s.writeFloat(n, f, stamp)
	case dynval.TypeInteger:
		i, _ := v.AsInt()
		return s.writeInt(n, i, stamp)
	case dynval.TypeBool:
		b, _ := v.AsBool()
		return s.writeBool(n, b, stamp)
	case dynval.TypeString:
		str, _ := v.AsString()
		return s.writeString(n, str, stamp)
	default:
		return false
	}
}
