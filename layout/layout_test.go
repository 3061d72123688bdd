package layout

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/errs"
	"github.com/snstore/snstore/schema"
)

func compile(t *testing.T, doc string) *Layout {
	t.Helper()
	v, err := dynval.Parse([]byte(doc))
	require.NoError(t, err)
	root, err := schema.FromValue(v)
	require.NoError(t, err)

	return Compile(root)
}

const mixedSchema = `{
	"type": "unit",
	"speed": {"type": "float", "defaultValue": 0.0},
	"count": {"type": "int", "size": 8, "defaultValue": 0},
	"mode": {"type": "int", "size": 4, "defaultValue": 1},
	"port": {"type": "int", "size": 2, "defaultValue": 0},
	"level": {"type": "int", "size": 1, "defaultValue": 0},
	"armed": {"type": "bool", "defaultValue": false},
	"label": {"type": "string", "size": 8, "defaultValue": "hi"},
	"sub": {
		"type": "unit",
		"ratio": {"type": "float", "defaultValue": 1.5}
	}
}`

func TestPayloadSizeInvariant(t *testing.T) {
	l := compile(t, mixedSchema)

	// 8 scalars: speed, count, mode, port, level, armed, label, sub.ratio
	require.Equal(t, 8, l.ScalarCount)
	require.Equal(t, PoolSizes{
		Doubles:  16, // speed, ratio
		Int64:    8,  // count
		Int32:    4,  // mode
		Int16:    2,  // port
		EightBit: 2,  // level, armed
		Char:     8,  // label
	}, l.Pools)
	require.Equal(t, HeaderSize+8*8+l.Pools.Total(), l.PayloadSize)
}

func TestOffsetsAreDisjoint(t *testing.T) {
	l := compile(t, mixedSchema)

	type interval struct{ lo, hi int }
	var scalars []interval
	var times []int
	l.Walk(func(n *Node) {
		if n.IsScalar() {
			scalars = append(scalars, interval{n.Offset, n.Offset + n.Size})
			times = append(times, n.TimeOffset)
		}
	})

	sort.Slice(scalars, func(i, j int) bool { return scalars[i].lo < scalars[j].lo })
	for i := 1; i < len(scalars); i++ {
		require.GreaterOrEqual(t, scalars[i].lo, scalars[i-1].hi,
			"scalar intervals must not overlap")
	}
	for _, iv := range scalars {
		require.GreaterOrEqual(t, iv.lo, HeaderSize+8*l.ScalarCount)
		require.LessOrEqual(t, iv.hi, l.PayloadSize)
	}

	// Timestamp slots are 8 bytes each, starting right after the header.
	sort.Ints(times)
	for i, ts := range times {
		require.Equal(t, HeaderSize+8*i, ts)
	}
}

func TestPoolOrder(t *testing.T) {
	l := compile(t, mixedSchema)

	offset := func(path string) int {
		n, err := l.Resolve(path)
		require.NoError(t, err)
		return n.Offset
	}

	base := HeaderSize + 8*l.ScalarCount
	// Doubles pool first, in traversal order (alphabetical units, depth-first).
	require.Equal(t, base, offset("speed"))
	require.Equal(t, base+8, offset("sub.ratio"))
	// Then i64, i32, i16, eight-bit, chars.
	require.Equal(t, base+16, offset("count"))
	require.Equal(t, base+24, offset("mode"))
	require.Equal(t, base+28, offset("port"))
	require.Equal(t, base+30, offset("armed")) // armed sorts before level
	require.Equal(t, base+31, offset("level"))
	require.Equal(t, base+32, offset("label"))
}

func TestSemaphoreAssignment(t *testing.T) {
	l := compile(t, `{
		"type": "unit",
		"a": {"type": "unit", "x": {"type": "int", "defaultValue": 0}},
		"b": {
			"type": "array",
			"0": {"type": "int", "defaultValue": 0},
			"1": {"type": "unit", "y": {"type": "int", "defaultValue": 0}}
		}
	}`)

	require.Equal(t, 4, l.SemCount)
	require.Equal(t, 0, l.Root.SemID)

	a, err := l.Resolve("a")
	require.NoError(t, err)
	require.Equal(t, 1, a.SemID)

	b, err := l.Resolve("b")
	require.NoError(t, err)
	require.Equal(t, 2, b.SemID)

	b1, err := l.Resolve("b.1")
	require.NoError(t, err)
	require.Equal(t, 3, b1.SemID)

	// Scalars inherit the semaphore of their enclosing container.
	ax, err := l.Resolve("a.x")
	require.NoError(t, err)
	require.Equal(t, 1, ax.SemID)

	b0, err := l.Resolve("b.0")
	require.NoError(t, err)
	require.Equal(t, 2, b0.SemID)

	y, err := l.Resolve("b/1/y")
	require.NoError(t, err)
	require.Equal(t, 3, y.SemID)
}

func TestShortestUniquePrefix(t *testing.T) {
	l := compile(t, `{
		"type": "unit",
		"alpha": {"type": "int", "defaultValue": 0},
		"alphabet": {"type": "int", "defaultValue": 0},
		"beta": {"type": "int", "defaultValue": 0}
	}`)

	root := l.Root
	require.Len(t, root.prefix, 3)
	require.Equal(t, "alpha", root.prefix[0].prefix) // whole name shared with alphabet
	require.Equal(t, "alphab", root.prefix[1].prefix)
	require.Equal(t, "b", root.prefix[2].prefix)

	require.NotNil(t, root.Find("alpha"))
	require.NotNil(t, root.Find("alphabet"))
	require.Nil(t, root.Find("alphax"))
	require.Nil(t, root.Find("al"))
}

func TestResolvePathForms(t *testing.T) {
	l := compile(t, mixedSchema)

	dot, err := l.Resolve("sub.ratio")
	require.NoError(t, err)
	slash, err := l.Resolve("sub/ratio")
	require.NoError(t, err)
	mixed, err := l.Resolve("/sub/ratio")
	require.NoError(t, err)
	require.Same(t, dot, slash)
	require.Same(t, dot, mixed)

	self, err := l.Resolve("")
	require.NoError(t, err)
	require.Same(t, l.Root, self)

	_, err = l.Resolve("sub.missing")
	require.ErrorIs(t, err, errs.ErrPathNotFound)
	_, err = l.Resolve("speed.deeper")
	require.ErrorIs(t, err, errs.ErrPathNotFound)
}

func TestArrayIndexResolution(t *testing.T) {
	doc := `{"type": "unit", "data": {"type": "array"`
	for i := range 12 {
		doc += `,"` + itoa(i) + `": {"type": "int", "defaultValue": 0}`
	}
	doc += `}}`

	l := compile(t, doc)
	arr, err := l.Resolve("data")
	require.NoError(t, err)
	require.Len(t, arr.Children, 12)

	// Two-digit indices must resolve despite alphabetical table order.
	for i := range 12 {
		n, err := l.Resolve("data." + itoa(i))
		require.NoError(t, err)
		require.Equal(t, itoa(i), n.Name)
	}
	_, err = l.Resolve("data.12")
	require.ErrorIs(t, err, errs.ErrPathNotFound)
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}

	return string(rune('0'+i/10)) + string(rune('0'+i%10))
}

func TestContainerSizes(t *testing.T) {
	l := compile(t, mixedSchema)

	sub, err := l.Resolve("sub")
	require.NoError(t, err)
	require.Equal(t, 8, sub.Size)

	// Root size is the sum of all scalar widths.
	require.Equal(t, l.Pools.Total(), l.Root.Size)
}
