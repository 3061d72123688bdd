package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/snstore/snstore/errs"
	"github.com/snstore/snstore/schema"
)

// prefixEntry pairs a child's shortest-unique-prefix with its full name.
// Entries are kept sorted by full name so component lookup can stop as soon
// as an entry's prefix exceeds the component.
type prefixEntry struct {
	prefix string
	full   string
	child  *Node
}

// buildPrefix fills the container's prefix table. For a unit, each entry's
// prefix is the shortest leading substring unique among its siblings. For an
// array the table degenerates to (index, index) entries.
func (n *Node) buildPrefix() {
	n.prefix = make([]prefixEntry, len(n.Children))
	for i, c := range n.Children {
		n.prefix[i] = prefixEntry{prefix: c.Name, full: c.Name, child: c}
	}
	sort.Slice(n.prefix, func(i, j int) bool {
		return n.prefix[i].full < n.prefix[j].full
	})

	if len(n.prefix) == 0 || n.Kind == schema.KindArray {
		return
	}

	for i := range n.prefix {
		name := n.prefix[i].full
		common := 0
		if i > 0 {
			common = max(common, commonPrefixLen(name, n.prefix[i-1].full))
		}
		if i < len(n.prefix)-1 {
			common = max(common, commonPrefixLen(name, n.prefix[i+1].full))
		}
		cut := common + 1
		if cut > len(name) {
			cut = len(name)
		}
		n.prefix[i].prefix = name[:cut]
	}
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}

	return n
}

// Find returns the child whose name equals the path component, or nil. The
// table is scanned in sorted order; the scan stops early once an entry's
// prefix alphabetically exceeds the component, at which point no later entry
// can match.
func (n *Node) Find(component string) *Node {
	for i := range n.prefix {
		e := &n.prefix[i]
		if e.prefix > component {
			return nil
		}
		if len(component) >= len(e.prefix) && component[:len(e.prefix)] == e.prefix && e.full == component {
			return e.child
		}
	}

	return nil
}

// Resolve walks a dot- or slash-delimited path relative to this node. An
// empty path resolves to the node itself.
func (n *Node) Resolve(path string) (*Node, error) {
	cur := n
	for _, comp := range splitPath(path) {
		if !cur.IsContainer() {
			return nil, fmt.Errorf("layout: %q is a scalar, cannot descend to %q: %w",
				cur.Name, comp, errs.ErrPathNotFound)
		}
		next := cur.Find(comp)
		if next == nil {
			return nil, fmt.Errorf("layout: no element %q under %q: %w", comp, cur.Name, errs.ErrPathNotFound)
		}
		cur = next
	}

	return cur, nil
}

// Resolve walks a path from the directory root.
func (l *Layout) Resolve(path string) (*Node, error) {
	return l.Root.Resolve(path)
}

// splitPath splits on both '.' and '/', dropping empty components so that
// "a.b", "a/b" and "/a/b" are equivalent.
func splitPath(path string) []string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '/'
	})

	return parts
}
