package sft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ldclabs/ic-sft/cbor"
)

func Test_Value_Kinds(t *testing.T) {
	v := TextValue("hello")
	s, ok := v.AsText()
	require.True(t, ok)
	require.Equal(t, "hello", s)
	_, ok = v.AsNat()
	require.False(t, ok)

	n, ok := NatValue(42).AsNat()
	require.True(t, ok)
	require.EqualValues(t, 42, n)

	i, ok := IntValue(-7).AsInt()
	require.True(t, ok)
	require.EqualValues(t, -7, i)

	b, ok := BlobValue([]byte{1, 2}).AsBlob()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2}, b)
}

func Test_Value_CBORRoundTrip(t *testing.T) {
	src := MapValue(Map{
		"name":   TextValue("gold"),
		"supply": NatValue(100),
		"delta":  IntValue(-1),
		"icon":   BlobValue([]byte{0xCA, 0xFE}),
		"tags":   ArrayValue([]Value{TextValue("a"), TextValue("b")}),
	})
	data, err := cbor.Marshal(src)
	require.NoError(t, err)

	var got Value
	require.NoError(t, cbor.Unmarshal(data, &got))
	m, ok := got.AsMap()
	require.True(t, ok)

	name, ok := m["name"].AsText()
	require.True(t, ok)
	require.Equal(t, "gold", name)
	delta, ok := m["delta"].AsInt()
	require.True(t, ok)
	require.EqualValues(t, -1, delta)
	tags, ok := m["tags"].AsArray()
	require.True(t, ok)
	require.Len(t, tags, 2)
}

func Test_Map_Clone(t *testing.T) {
	m := Map{"a": NatValue(1)}
	c := m.Clone()
	c["b"] = NatValue(2)
	require.Len(t, m, 1)
	require.Len(t, c, 2)
}
