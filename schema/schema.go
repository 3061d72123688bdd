// Package schema models the declarative description the layout planner
// compiles: a nested tree of typed nodes with sizes, defaults and optional
// rendering hints.
//
// Attribute keys (type, size, defaultValue, precision, hysteresis) are
// matched case-insensitively. Every other map-valued entry of a container
// declares a child node. A child named "update" is reserved metadata and is
// skipped during enumeration.
package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/errs"
)

// Kind identifies the declared type of a schema node.
type Kind uint8

const (
	// KindInvalid is the zero Kind; no valid node carries it.
	KindInvalid Kind = iota
	// KindUnit is a container with named fields.
	KindUnit
	// KindArray is a container with children keyed "0", "1", ...
	KindArray
	// KindInt is a signed integer of 1, 2, 4 or 8 bytes.
	KindInt
	// KindFloat is an 8-byte IEEE 754 double.
	KindFloat
	// KindBool is a single byte holding 0x00 or 0xFF.
	KindBool
	// KindString is a fixed-width NUL-terminated byte field.
	KindString
)

// String returns the declared type name.
func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindArray:
		return "array"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// IsContainer reports whether the kind is unit or array.
func (k Kind) IsContainer() bool {
	return k == KindUnit || k == KindArray
}

// IsScalar reports whether the kind is one of the four scalar kinds.
func (k Kind) IsScalar() bool {
	switch k {
	case KindInt, KindFloat, KindBool, KindString:
		return true
	default:
		return false
	}
}

const (
	defaultIntSize    = 4
	defaultStringSize = 16
)

// Node is one validated schema declaration.
//
// For containers, Children holds the child nodes in traversal order: units
// alphabetically by name, arrays by numeric index. Size is the byte width a
// scalar occupies in the payload; for containers it stays zero (the layout
// planner records the sum of descendant widths on its own layout.Node).
type Node struct {
	Name       string
	Kind       Kind
	Size       int
	Default    *dynval.Value
	Precision  int // -1 when not declared
	Hysteresis int64
	Children   []*Node
	Def        *dynval.Value // original schema map for late queries
}

// IsContainer reports whether the node is a unit or array.
func (n *Node) IsContainer() bool { return n.Kind.IsContainer() }

// IsScalar reports whether the node is a scalar.
func (n *Node) IsScalar() bool { return n.Kind.IsScalar() }

// Child returns the child with the exact name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// FromFile parses a JSON schema file and validates it into a node tree.
func FromFile(path string) (*Node, error) {
	root, err := dynval.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	return FromValue(root)
}

// FromValue validates an already-built description tree. The root must be a
// map declaring a unit.
func FromValue(root *dynval.Value) (*Node, error) {
	if !root.IsMap() {
		return nil, fmt.Errorf("schema: root is %s, want map: %w", root.Kind(), errs.ErrSchemaInvalid)
	}

	node, err := buildNode("", root)
	if err != nil {
		return nil, err
	}
	if node.Kind != KindUnit {
		return nil, fmt.Errorf("schema: root declares %s, want unit: %w", node.Kind, errs.ErrSchemaInvalid)
	}

	return node, nil
}

var attrKeys = []string{"type", "size", "defaultValue", "precision", "hysteresis"}

func isAttrKey(key string) bool {
	for _, a := range attrKeys {
		if strings.EqualFold(key, a) {
			return true
		}
	}

	return false
}

func buildNode(name string, def *dynval.Value) (*Node, error) {
	typ := def.FindCase("type")
	if typ == nil {
		return nil, fmt.Errorf("schema: node %q has no type: %w", name, errs.ErrSchemaInvalid)
	}
	typName, _ := typ.AsString()
	kind := parseKind(typName)
	if kind == KindInvalid {
		return nil, fmt.Errorf("schema: node %q has unknown type %q: %w", name, typName, errs.ErrSchemaInvalid)
	}

	node := &Node{
		Name:      name,
		Kind:      kind,
		Precision: -1,
		Def:       def,
	}

	if p := def.FindCase("precision"); p != nil {
		if pv, ok := p.AsInt(); ok && pv >= 0 {
			node.Precision = int(pv)
		}
	}
	if h := def.FindCase("hysteresis"); h != nil {
		if hv, ok := h.AsInt(); ok && hv > 0 {
			node.Hysteresis = hv
		}
	}

	if kind.IsScalar() {
		if err := fillScalar(node, def); err != nil {
			return nil, err
		}

		return node, nil
	}

	if err := fillChildren(node, def); err != nil {
		return nil, err
	}

	return node, nil
}

func fillScalar(node *Node, def *dynval.Value) error {
	node.Default = def.FindCase("defaultValue")
	if node.Default == nil {
		return fmt.Errorf("schema: scalar %q has no defaultValue: %w", node.Name, errs.ErrSchemaInvalid)
	}

	switch node.Kind {
	case KindFloat:
		node.Size = 8
	case KindBool:
		node.Size = 1
	case KindInt:
		node.Size = defaultIntSize
		if s := def.FindCase("size"); s != nil {
			if sv, ok := s.AsInt(); ok {
				switch sv {
				case 1, 2, 4, 8:
					node.Size = int(sv)
				}
			}
		}
	case KindString:
		node.Size = defaultStringSize
		if s := def.FindCase("size"); s != nil {
			if sv, ok := s.AsInt(); ok && sv > 0 {
				node.Size = int(sv)
			}
		}
	}

	return nil
}

func fillChildren(node *Node, def *dynval.Value) error {
	for i := range def.Len() {
		key, val := def.Entry(i)
		if isAttrKey(key) || key == "update" {
			continue
		}
		if !val.IsMap() {
			return fmt.Errorf("schema: child %q of %q is %s, want map: %w",
				key, node.Name, val.Kind(), errs.ErrSchemaInvalid)
		}
		child, err := buildNode(key, val)
		if err != nil {
			return err
		}
		node.Children = append(node.Children, child)
	}

	switch node.Kind {
	case KindUnit:
		sort.Slice(node.Children, func(i, j int) bool {
			return node.Children[i].Name < node.Children[j].Name
		})
	case KindArray:
		if err := orderArrayChildren(node); err != nil {
			return err
		}
	}

	return nil
}

// orderArrayChildren checks that array children are keyed "0", "1", ... in
// unbroken sequence and sorts them by index.
func orderArrayChildren(node *Node) error {
	indexed := make([]*Node, len(node.Children))
	for _, c := range node.Children {
		idx, err := strconv.Atoi(c.Name)
		if err != nil || strconv.Itoa(idx) != c.Name {
			return fmt.Errorf("schema: array %q child %q is not a decimal index: %w",
				node.Name, c.Name, errs.ErrSchemaInvalid)
		}
		if idx < 0 || idx >= len(indexed) {
			return fmt.Errorf("schema: array %q index %d out of sequence 0..%d: %w",
				node.Name, idx, len(indexed)-1, errs.ErrSchemaInvalid)
		}
		if indexed[idx] != nil {
			return fmt.Errorf("schema: array %q duplicates index %d: %w",
				node.Name, idx, errs.ErrSchemaInvalid)
		}
		indexed[idx] = c
	}
	node.Children = indexed

	return nil
}

func parseKind(name string) Kind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "unit":
		return KindUnit
	case "array":
		return KindArray
	case "int":
		return KindInt
	case "float":
		return KindFloat
	case "bool":
		return KindBool
	case "string":
		return KindString
	default:
		return KindInvalid
	}
}
