// Package layout compiles a validated schema into the fixed binary layout of
// a shared segment: per-scalar byte offsets inside six type-segregated pools,
// per-scalar timestamp slots, per-container semaphore identifiers, and a
// prefix index for path resolution.
//
// Offsets are assigned in a single depth-first traversal using pool-relative
// running offsets, then rebased to absolute segment offsets once the pool
// sizes are known. Unit children are visited alphabetically, array children
// in numeric index order. All offsets are final at compile time and never
// move.
package layout

import (
	"github.com/snstore/snstore/schema"
)

// HeaderSize is the number of bytes reserved ahead of the payload: the state
// byte, the validity signature, the checksum and the init-handshake block.
const HeaderSize = 0x30

// TimeSlotSize is the width of one per-scalar timestamp slot.
const TimeSlotSize = 8

// PoolSizes holds the byte width of each payload pool, in segment order.
type PoolSizes struct {
	Doubles  int
	Int64    int
	Int32    int
	Int16    int
	EightBit int
	Char     int
}

// Total returns the summed width of all pools.
func (p PoolSizes) Total() int {
	return p.Doubles + p.Int64 + p.Int32 + p.Int16 + p.EightBit + p.Char
}

// Node is the compiled form of one schema node.
//
// Scalars carry Offset and TimeOffset, both absolute segment offsets.
// Containers carry SemID, their children and the prefix table used for
// component lookup. Size is the payload width: the scalar's own width, or
// the sum of descendant widths for a container.
type Node struct {
	Kind       schema.Kind
	Name       string
	Size       int
	Offset     int
	TimeOffset int
	SemID      int
	Children   []*Node
	Schema     *schema.Node

	prefix []prefixEntry
}

// IsContainer reports whether the node is a unit or array.
func (n *Node) IsContainer() bool { return n.Kind.IsContainer() }

// IsScalar reports whether the node is a scalar.
func (n *Node) IsScalar() bool { return n.Kind.IsScalar() }

// Layout is the compiled segment plan.
type Layout struct {
	Root        *Node
	Pools       PoolSizes
	ScalarCount int
	SemCount    int
	PayloadSize int
}

type compiler struct {
	doubles  int
	int64s   int
	int32s   int
	int16s   int
	eightBit int
	chars    int

	timeIndex int
	semCount  int
}

// Compile walks the schema once and produces the segment layout.
func Compile(root *schema.Node) *Layout {
	c := &compiler{}
	node := c.build(root)

	pools := PoolSizes{
		Doubles:  c.doubles,
		Int64:    c.int64s,
		Int32:    c.int32s,
		Int16:    c.int16s,
		EightBit: c.eightBit,
		Char:     c.chars,
	}

	l := &Layout{
		Root:        node,
		Pools:       pools,
		ScalarCount: c.timeIndex,
		SemCount:    c.semCount,
		PayloadSize: HeaderSize + TimeSlotSize*c.timeIndex + pools.Total(),
	}
	l.rebase(node)

	return l
}

// build assigns pool-relative offsets and semaphore IDs in traversal order.
func (c *compiler) build(sn *schema.Node) *Node {
	node := &Node{
		Kind:   sn.Kind,
		Name:   sn.Name,
		Schema: sn,
	}

	if sn.IsScalar() {
		node.Size = sn.Size
		node.TimeOffset = c.timeIndex
		c.timeIndex++
		switch sn.Kind {
		case schema.KindFloat:
			node.Offset = c.doubles
			c.doubles += 8
		case schema.KindBool:
			node.Offset = c.eightBit
			c.eightBit++
		case schema.KindString:
			node.Offset = c.chars
			c.chars += sn.Size
		case schema.KindInt:
			switch sn.Size {
			case 8:
				node.Offset = c.int64s
				c.int64s += 8
			case 2:
				node.Offset = c.int16s
				c.int16s += 2
			case 1:
				node.Offset = c.eightBit
				c.eightBit++
			default:
				node.Offset = c.int32s
				c.int32s += 4
			}
		}

		return node
	}

	node.SemID = c.semCount
	c.semCount++

	total := 0
	for _, child := range sn.Children {
		cn := c.build(child)
		if cn.IsScalar() {
			// Scalars share their enclosing container's semaphore.
			cn.SemID = node.SemID
		}
		node.Children = append(node.Children, cn)
		total += cn.Size
	}
	node.Size = total
	node.buildPrefix()

	return node
}

// rebase converts pool-relative offsets into absolute segment offsets now
// that every pool's width is known.
func (l *Layout) rebase(n *Node) {
	if n.IsScalar() {
		n.TimeOffset = HeaderSize + TimeSlotSize*n.TimeOffset
		n.Offset += l.poolBase(n)
		return
	}
	for _, c := range n.Children {
		l.rebase(c)
	}
}

func (l *Layout) poolBase(n *Node) int {
	base := HeaderSize + TimeSlotSize*l.ScalarCount
	switch n.Kind {
	case schema.KindFloat:
		return base
	case schema.KindBool:
		return base + l.Pools.Doubles + l.Pools.Int64 + l.Pools.Int32 + l.Pools.Int16
	case schema.KindString:
		return base + l.Pools.Doubles + l.Pools.Int64 + l.Pools.Int32 + l.Pools.Int16 + l.Pools.EightBit
	case schema.KindInt:
		switch n.Size {
		case 8:
			return base + l.Pools.Doubles
		case 2:
			return base + l.Pools.Doubles + l.Pools.Int64 + l.Pools.Int32
		case 1:
			return base + l.Pools.Doubles + l.Pools.Int64 + l.Pools.Int32 + l.Pools.Int16
		default:
			return base + l.Pools.Doubles + l.Pools.Int64
		}
	default:
		return base
	}
}

// Walk visits every node of the directory in traversal order, parents before
// children.
func (l *Layout) Walk(fn func(*Node)) {
	walk(l.Root, fn)
}

func walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		walk(c, fn)
	}
}
