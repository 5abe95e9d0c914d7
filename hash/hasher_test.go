package hash

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ldclabs/ic-sft/cbor"
)

type sample struct {
	_    struct{} `cbor:",toarray"`
	ID   uint64
	Data []byte
}

func Test_Hasher(t *testing.T) {
	v := sample{ID: 292987, Data: []byte{2, 6, 7, 99, 12}}

	h := New()
	require.NoError(t, h.Write(v))
	d1 := h.Sum()
	require.Len(t, d1, Size)

	// the digest covers exactly the canonical encoding
	buf, err := cbor.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, Sum256(buf), d1)

	v.ID++
	h2 := New()
	require.NoError(t, h2.Write(v))
	require.NotEqual(t, d1, h2.Sum())
}

func Test_Hasher_OrderMatters(t *testing.T) {
	a := New()
	require.NoError(t, a.Write("x"))
	require.NoError(t, a.Write("y"))

	b := New()
	require.NoError(t, b.Write("y"))
	require.NoError(t, b.Write("x"))

	require.NotEqual(t, a.Sum(), b.Sum())
}
