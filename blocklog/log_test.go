package blocklog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ldclabs/ic-sft/cbor"
	"github.com/ldclabs/ic-sft/hash"
	"github.com/ldclabs/ic-sft/sft"
	"github.com/ldclabs/ic-sft/storage"
)

func testBlock(i int) *Block {
	from := sft.AccountOf(sft.Principal{1})
	to := sft.AccountOf(sft.Principal{2})
	return &Block{
		Kind:      KindTransfer,
		Timestamp: uint64(1000 + i),
		Tx: Transaction{
			TokenID: uint64(sft.NewTokenID(1, uint32(i+1))),
			From:    &from,
			To:      &to,
		},
	}
}

func appendN(t *testing.T, l *Log, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		idx, err := l.Append(testBlock(i))
		require.NoError(t, err)
		require.EqualValues(t, l.Length()-1, idx)
	}
}

func Test_Log_ChainIntegrity(t *testing.T) {
	store := storage.NewMemory()
	l, err := OpenLog(store)
	require.NoError(t, err)
	require.Nil(t, l.TipCertificate())

	appendN(t, l, 5)

	// recompute the chain from genesis and compare against the tip
	digest := hash.Zero256[:]
	for i := uint64(0); i < l.Length(); i++ {
		b, err := l.Get(i)
		require.NoError(t, err)
		if i == 0 {
			require.Nil(t, b.ParentHash)
		} else {
			require.Equal(t, digest, b.ParentHash)
		}
		raw, err := cbor.Marshal(b)
		require.NoError(t, err)
		next := hash.Chain(digest, raw)
		digest = next[:]
	}

	cert := l.TipCertificate()
	require.NotNil(t, cert)
	require.EqualValues(t, 4, cert.LastBlockIndex)
	require.Equal(t, digest, cert.LastBlockHash)
}

func Test_Log_AppendBatch(t *testing.T) {
	store := storage.NewMemory()
	l, err := OpenLog(store)
	require.NoError(t, err)
	appendN(t, l, 2)

	extra := storage.NewBatch()
	extra.Put([]byte("M:state"), []byte("snapshot"))
	start, err := l.AppendBatch([]*Block{testBlock(2), testBlock(3)}, extra)
	require.NoError(t, err)
	require.EqualValues(t, 2, start)
	require.EqualValues(t, 4, l.Length())

	// blocks and the extra write land in the same commit
	val, err := store.Get([]byte("M:state"))
	require.NoError(t, err)
	require.Equal(t, []byte("snapshot"), val)

	b, err := l.Get(3)
	require.NoError(t, err)
	require.Equal(t, KindTransfer, b.Kind)

	// no blocks, extra only
	extra = storage.NewBatch()
	extra.Put([]byte("M:state"), []byte("snapshot2"))
	start, err = l.AppendBatch(nil, extra)
	require.NoError(t, err)
	require.EqualValues(t, 4, start)
	require.EqualValues(t, 4, l.Length())
}

func Test_Log_Reload(t *testing.T) {
	store := storage.NewMemory()
	l, err := OpenLog(store)
	require.NoError(t, err)
	appendN(t, l, 3)
	tip := l.TipCertificate()

	reloaded, err := OpenLog(store)
	require.NoError(t, err)
	require.Equal(t, l.Length(), reloaded.Length())
	require.Equal(t, tip, reloaded.TipCertificate())

	b, err := reloaded.Get(1)
	require.NoError(t, err)
	require.Equal(t, KindTransfer, b.Kind)
}

func Test_Log_GetRange(t *testing.T) {
	store := storage.NewMemory()
	l, err := OpenLog(store)
	require.NoError(t, err)
	appendN(t, l, 10)

	records, redirect, err := l.GetRange(2, 4)
	require.NoError(t, err)
	require.Nil(t, redirect)
	require.Len(t, records, 4)
	for i, r := range records {
		require.EqualValues(t, 2+i, r.Index)
	}

	// past the end is clamped, not an error
	records, _, err = l.GetRange(8, 100)
	require.NoError(t, err)
	require.Len(t, records, 2)

	records, _, err = l.GetRange(100, 10)
	require.NoError(t, err)
	require.Empty(t, records)
}

type fakeArchive struct {
	id    string
	got   map[uint64][][]byte
	fail  error
	calls int
}

func (a *fakeArchive) HandOff(start uint64, blocks [][]byte) (string, error) {
	a.calls++
	if a.fail != nil {
		return "", a.fail
	}
	if a.got == nil {
		a.got = map[uint64][][]byte{}
	}
	a.got[start] = blocks
	return a.id, nil
}

func Test_Manager_ArchiveOldest(t *testing.T) {
	store := storage.NewMemory()
	l, err := OpenLog(store)
	require.NoError(t, err)
	appendN(t, l, 10)

	arch := &fakeArchive{id: "arch-1"}
	m := NewManager(l, arch, 4, 3, nil)
	require.True(t, m.ShouldArchive())
	require.NoError(t, m.Run())
	require.False(t, m.ShouldArchive())

	// 10 blocks, threshold 4, chunks of 3: two hand offs drop blocks 0..5
	require.EqualValues(t, 6, l.FirstRetained())
	require.EqualValues(t, 10, l.Length())
	require.Len(t, arch.got[0], 3)
	require.Len(t, arch.got[3], 3)

	// contiguous ranges in the same archive merge into one pointer
	archives := l.Archives(0)
	require.Len(t, archives, 1)
	require.Equal(t, ArchivePointer{ArchiveID: "arch-1", Start: 0, End: 5}, archives[0])

	// a range with an archived prefix returns the suffix plus a redirect
	records, redirect, err := l.GetRange(4, 4)
	require.NoError(t, err)
	require.NotNil(t, redirect)
	require.Equal(t, "arch-1", redirect.ArchiveID)
	require.Len(t, records, 2)
	require.EqualValues(t, 6, records[0].Index)

	// a range lying wholly inside the archived prefix yields only the
	// redirect
	records, redirect, err = l.GetRange(0, 3)
	require.NoError(t, err)
	require.NotNil(t, redirect)
	require.Equal(t, "arch-1", redirect.ArchiveID)
	require.Empty(t, records)

	_, err = l.Get(0)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func Test_Manager_StagedHandOff(t *testing.T) {
	store := storage.NewMemory()
	l, err := OpenLog(store)
	require.NoError(t, err)
	appendN(t, l, 5)

	arch := &fakeArchive{id: "arch-1"}
	m := NewManager(l, arch, 2, 2, nil)

	chunk, err := m.NextChunk()
	require.NoError(t, err)
	require.EqualValues(t, 0, chunk.Start)
	require.Len(t, chunk.Blocks, 2)
	// capturing the chunk touches no log state
	require.EqualValues(t, 0, l.FirstRetained())

	id, err := m.HandOff(chunk)
	require.NoError(t, err)
	require.EqualValues(t, 0, l.FirstRetained())

	require.NoError(t, m.Commit(chunk, id))
	require.EqualValues(t, 2, l.FirstRetained())

	// a chunk that is no longer the retained head must not commit
	require.Error(t, m.Commit(chunk, id))
	require.EqualValues(t, 2, l.FirstRetained())
}

func Test_Manager_HandOffFailureKeepsBlocks(t *testing.T) {
	store := storage.NewMemory()
	l, err := OpenLog(store)
	require.NoError(t, err)
	appendN(t, l, 6)

	arch := &fakeArchive{id: "arch-1", fail: errors.New("archive unreachable")}
	m := NewManager(l, arch, 2, 4, nil)
	err = m.ArchiveOldest()
	require.ErrorContains(t, err, "archive unreachable")

	// nothing was deleted and every block is still readable
	require.EqualValues(t, 0, l.FirstRetained())
	for i := uint64(0); i < 6; i++ {
		_, err := l.Get(i)
		require.NoError(t, err, fmt.Sprintf("block %d", i))
	}
	require.Empty(t, l.Archives(0))
}

func Test_Manager_DistinctArchives(t *testing.T) {
	store := storage.NewMemory()
	l, err := OpenLog(store)
	require.NoError(t, err)
	appendN(t, l, 6)

	first := &fakeArchive{id: "arch-1"}
	require.NoError(t, NewManager(l, first, 0, 2, nil).ArchiveOldest())
	second := &fakeArchive{id: "arch-2"}
	require.NoError(t, NewManager(l, second, 0, 2, nil).ArchiveOldest())

	archives := l.Archives(0)
	require.Len(t, archives, 2)
	require.Equal(t, ArchivePointer{ArchiveID: "arch-1", Start: 0, End: 1}, archives[0])
	require.Equal(t, ArchivePointer{ArchiveID: "arch-2", Start: 2, End: 3}, archives[1])

	// the from filter skips fully passed pointers
	require.Len(t, l.Archives(2), 1)
	require.Empty(t, l.Archives(4))
}
