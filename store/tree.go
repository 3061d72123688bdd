package store

import (
	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/layout"
	"github.com/snstore/snstore/schema"
)

// Tree renders the subtree under this node as a dynval value: units become
// maps, arrays become sequences, scalars read in their stored kind. With
// protect, each scalar reads under its container semaphore.
func (r Ref) Tree(protect bool) *dynval.Value {
	return r.st.toTree(r.node, protect)
}

// Tree renders the whole store as a dynval map with protected reads.
func (s *Store) Tree() *dynval.Value {
	return s.toTree(s.lay.Root, true)
}

func (s *Store) toTree(n *layout.Node, protect bool) *dynval.Value {
	switch n.Kind {
	case schema.KindUnit:
		m := dynval.NewMap()
		for _, c := range n.Children {
			m.Set(c.Name, s.toTree(c, protect))
		}

		return m
	case schema.KindArray:
		seq := dynval.NewSequence()
		for _, c := range n.Children {
			seq.Append(s.toTree(c, protect))
		}

		return seq
	default:
		return s.scalarValue(n, protect)
	}
}

func (s *Store) scalarValue(n *layout.Node, protect bool) (v *dynval.Value) {
	s.protect(n, protect, func() {
		switch n.Kind {
		case schema.KindFloat:
			v = dynval.NewFloat(s.seg.Float64At(n.Offset))
		case schema.KindInt:
			v = dynval.NewInt(s.rawInt(n))
		case schema.KindBool:
			v = dynval.NewBool(s.seg.ByteAt(n.Offset) != 0)
		default:
			v = dynval.NewString(s.rawString(n))
		}
	})

	return v
}

// Equals deep-compares a dynval value against the live subtree. A map
// matches a unit when every entry names a child and equals it; a sequence
// matches an array of the same length element-wise; scalars compare in the
// stored kind after coercing the value.
func (r Ref) Equals(v *dynval.Value, protect bool) bool {
	return r.st.equals(r.node, v, protect)
}

func (s *Store) equals(n *layout.Node, v *dynval.Value, protect bool) bool {
	if v == nil {
		return false
	}
	switch {
	case v.IsMap():
		if n.Kind != schema.KindUnit {
			return false
		}
		for i := range v.Len() {
			key, entry := v.Entry(i)
			child := n.Find(key)
			if child == nil || !s.equals(child, entry, protect) {
				return false
			}
		}

		return true
	case v.IsSequence():
		if n.Kind != schema.KindArray || v.Len() != len(n.Children) {
			return false
		}
		for i := range v.Len() {
			if !s.equals(n.Children[i], v.Index(i), protect) {
				return false
			}
		}

		return true
	default:
		return s.scalarEquals(n, v, protect)
	}
}

func (s *Store) scalarEquals(n *layout.Node, v *dynval.Value, protect bool) (eq bool) {
	if !n.IsScalar() {
		return false
	}

	s.protect(n, protect, func() {
		switch n.Kind {
		case schema.KindFloat:
			f, ok := v.AsFloat()
			eq = ok && f == s.seg.Float64At(n.Offset)
		case schema.KindInt:
			i, ok := v.AsInt()
			eq = ok && i == s.rawInt(n)
		case schema.KindBool:
			b, ok := v.AsBool()
			eq = ok && b == (s.seg.ByteAt(n.Offset) != 0)
		default:
			str, ok := v.AsString()
			eq = ok && str == s.rawString(n)
		}
	})

	return eq
}
