package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/errs"
)

func mustParse(t *testing.T, doc string) *dynval.Value {
	t.Helper()
	v, err := dynval.Parse([]byte(doc))
	require.NoError(t, err)

	return v
}

func TestFromValueBasic(t *testing.T) {
	root := mustParse(t, `{
		"type": "unit",
		"speed": {"type": "float", "defaultValue": 0.0, "hysteresis": 50},
		"count": {"type": "int", "size": 2, "defaultValue": 7},
		"label": {"type": "string", "size": 8, "defaultValue": "hi"},
		"armed": {"type": "bool", "defaultValue": false}
	}`)

	node, err := FromValue(root)
	require.NoError(t, err)
	require.Equal(t, KindUnit, node.Kind)
	require.Len(t, node.Children, 4)

	// Unit children are ordered alphabetically.
	names := make([]string, 0, 4)
	for _, c := range node.Children {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"armed", "count", "label", "speed"}, names)

	speed := node.Child("speed")
	require.Equal(t, KindFloat, speed.Kind)
	require.Equal(t, 8, speed.Size)
	require.Equal(t, int64(50), speed.Hysteresis)
	require.Equal(t, -1, speed.Precision)

	count := node.Child("count")
	require.Equal(t, 2, count.Size)
	dv, ok := count.Default.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(7), dv)

	require.Equal(t, 8, node.Child("label").Size)
	require.Equal(t, 1, node.Child("armed").Size)
}

func TestAttributeKeysCaseInsensitive(t *testing.T) {
	root := mustParse(t, `{
		"Type": "unit",
		"x": {"TYPE": "Int", "SIZE": 8, "DefaultValue": 1, "PRECISION": 6, "Hysteresis": 2}
	}`)

	node, err := FromValue(root)
	require.NoError(t, err)

	x := node.Child("x")
	require.Equal(t, KindInt, x.Kind)
	require.Equal(t, 8, x.Size)
	require.Equal(t, 6, x.Precision)
	require.Equal(t, int64(2), x.Hysteresis)
}

func TestSizeDefaults(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		size int
	}{
		{"int no size", `{"type":"unit","v":{"type":"int","defaultValue":0}}`, 4},
		{"int bad size", `{"type":"unit","v":{"type":"int","size":3,"defaultValue":0}}`, 4},
		{"int size 1", `{"type":"unit","v":{"type":"int","size":1,"defaultValue":0}}`, 1},
		{"string no size", `{"type":"unit","v":{"type":"string","defaultValue":""}}`, 16},
		{"string zero size", `{"type":"unit","v":{"type":"string","size":0,"defaultValue":""}}`, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := FromValue(mustParse(t, tt.doc))
			require.NoError(t, err)
			require.Equal(t, tt.size, node.Child("v").Size)
		})
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing type", `{"type":"unit","v":{"defaultValue":0}}`},
		{"unknown type", `{"type":"unit","v":{"type":"quad","defaultValue":0}}`},
		{"missing default", `{"type":"unit","v":{"type":"int"}}`},
		{"non-map child", `{"type":"unit","v":7}`},
		{"root not unit", `{"type":"int","defaultValue":0}`},
		{"array gap", `{"type":"unit","a":{"type":"array",
			"0":{"type":"int","defaultValue":0},
			"2":{"type":"int","defaultValue":0}}}`},
		{"array non-index", `{"type":"unit","a":{"type":"array",
			"x":{"type":"int","defaultValue":0}}}`},
		{"array padded index", `{"type":"unit","a":{"type":"array",
			"00":{"type":"int","defaultValue":0}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromValue(mustParse(t, tt.doc))
			require.ErrorIs(t, err, errs.ErrSchemaInvalid)
		})
	}
}

func TestArrayOrdering(t *testing.T) {
	// Declared out of order but indices are unbroken.
	root := mustParse(t, `{"type":"unit","a":{"type":"array",
		"2":{"type":"int","defaultValue":2},
		"0":{"type":"int","defaultValue":0},
		"1":{"type":"int","defaultValue":1},
		"10":{"type":"int","defaultValue":10},
		"3":{"type":"int","defaultValue":3},
		"4":{"type":"int","defaultValue":4},
		"5":{"type":"int","defaultValue":5},
		"6":{"type":"int","defaultValue":6},
		"7":{"type":"int","defaultValue":7},
		"8":{"type":"int","defaultValue":8},
		"9":{"type":"int","defaultValue":9}}}`)

	node, err := FromValue(root)
	require.NoError(t, err)

	arr := node.Child("a")
	require.Equal(t, KindArray, arr.Kind)
	require.Len(t, arr.Children, 11)
	for i, c := range arr.Children {
		dv, ok := c.Default.AsInt()
		require.True(t, ok)
		require.Equal(t, int64(i), dv, "child %d must sort numerically", i)
	}
}

func TestUpdateChildReserved(t *testing.T) {
	root := mustParse(t, `{"type":"unit",
		"update": {"type":"int","defaultValue":0},
		"x": {"type":"int","defaultValue":1}}`)

	node, err := FromValue(root)
	require.NoError(t, err)
	require.Len(t, node.Children, 1)
	require.Nil(t, node.Child("update"))
	require.NotNil(t, node.Child("x"))
}

func TestNestedContainers(t *testing.T) {
	root := mustParse(t, `{"type":"unit",
		"engine": {"type":"unit",
			"rpm": {"type":"float","defaultValue":0.0},
			"gears": {"type":"array",
				"0": {"type":"int","defaultValue":0},
				"1": {"type":"int","defaultValue":0}}}}`)

	node, err := FromValue(root)
	require.NoError(t, err)

	engine := node.Child("engine")
	require.NotNil(t, engine)
	require.True(t, engine.IsContainer())

	gears := engine.Child("gears")
	require.Equal(t, KindArray, gears.Kind)
	require.Len(t, gears.Children, 2)
	require.Equal(t, "0", gears.Children[0].Name)
}
