package dynval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("zulu", NewInt(1))
	m.Set("alpha", NewInt(2))
	m.Set("mike", NewInt(3))

	require.Equal(t, []string{"zulu", "alpha", "mike"}, m.Keys())

	// Replacing an existing key must not move it.
	m.Set("alpha", NewInt(42))
	require.Equal(t, []string{"zulu", "alpha", "mike"}, m.Keys())

	got, ok := m.Find("alpha").AsInt()
	require.True(t, ok)
	require.Equal(t, int64(42), got)
}

func TestFindCase(t *testing.T) {
	m := NewMap()
	m.Set("Speed", NewFloat(10.5))
	m.Set("speed", NewFloat(20.5))

	// Exact match wins over case-folded match.
	exact, ok := m.FindCase("speed").AsFloat()
	require.True(t, ok)
	require.Equal(t, 20.5, exact)

	folded, ok := m.FindCase("SPEED").AsFloat()
	require.True(t, ok)
	require.Equal(t, 10.5, folded)

	require.Nil(t, m.FindCase("missing"))
	require.Nil(t, m.Find("SPEED"))
}

func TestSequence(t *testing.T) {
	s := NewSequence()
	s.Append(NewInt(1))
	s.Append(NewString("two"))

	require.Equal(t, 2, s.Len())
	require.Equal(t, TypeInteger, s.Index(0).Kind())
	require.Equal(t, TypeString, s.Index(1).Kind())
	require.Nil(t, s.Index(2))
	require.Nil(t, s.Index(-1))
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name string
		val  *Value
		want int64
		ok   bool
	}{
		{"integer", NewInt(-7), -7, true},
		{"double rounds up", NewFloat(2.5), 3, true},
		{"double rounds down", NewFloat(2.4), 2, true},
		{"negative double rounds", NewFloat(-2.5), -3, true},
		{"bool true", NewBool(true), 1, true},
		{"bool false", NewBool(false), 0, true},
		{"decimal string", NewString("42"), 42, true},
		{"hex string", NewString("0x20"), 32, true},
		{"float string rounds", NewString("3.7"), 4, true},
		{"bad string", NewString("axle"), 0, false},
		{"map", NewMap(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.val.AsInt()
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		name string
		val  *Value
		want float64
		ok   bool
	}{
		{"double", NewFloat(88.5), 88.5, true},
		{"integer", NewInt(4), 4.0, true},
		{"string", NewString("1.25"), 1.25, true},
		{"hex string", NewString("0x10"), 16.0, true},
		{"bool", NewBool(true), 1.0, true},
		{"bad string", NewString("nope"), 0, false},
		{"sequence", NewSequence(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.val.AsFloat()
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		name string
		val  *Value
		want bool
		ok   bool
	}{
		{"bool", NewBool(true), true, true},
		{"nonzero int", NewInt(-1), true, true},
		{"zero int", NewInt(0), false, true},
		{"nonzero double", NewFloat(0.1), true, true},
		{"string true", NewString("true"), true, true},
		{"string TRUE", NewString("TRUE"), true, true},
		{"string false", NewString("false"), false, true},
		{"string other", NewString("1"), false, true},
		{"map", NewMap(), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.val.AsBool()
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAsString(t *testing.T) {
	tests := []struct {
		name string
		val  *Value
		want string
		ok   bool
	}{
		{"string", NewString("axle"), "axle", true},
		{"integer", NewInt(42), "42", true},
		{"double", NewFloat(2.5), "2.5", true},
		{"bool true", NewBool(true), "True", true},
		{"bool false", NewBool(false), "False", true},
		{"sequence", NewSequence(), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.val.AsString()
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEqual(t *testing.T) {
	mk := func() *Value {
		m := NewMap()
		m.Set("a", NewInt(1))
		s := NewSequence()
		s.Append(NewFloat(1.5))
		s.Append(NewBool(true))
		m.Set("list", s)

		return m
	}

	require.True(t, Equal(mk(), mk()))

	other := mk()
	other.Find("list").Index(1).boolv = false
	require.False(t, Equal(mk(), other))

	// Key order matters.
	reordered := NewMap()
	reordered.Set("list", mk().Find("list"))
	reordered.Set("a", NewInt(1))
	require.False(t, Equal(mk(), reordered))

	require.False(t, Equal(NewInt(1), NewFloat(1)))
	require.True(t, Equal(nil, nil))
	require.False(t, Equal(nil, NewInt(0)))
}

func TestMustKindPanics(t *testing.T) {
	require.Panics(t, func() { NewInt(1).Set("k", NewInt(2)) })
	require.Panics(t, func() { NewMap().Append(NewInt(2)) })
}
