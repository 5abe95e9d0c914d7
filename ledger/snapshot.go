package ledger

import (
	"fmt"
	"sort"

	"github.com/ldclabs/ic-sft/cbor"
	"github.com/ldclabs/ic-sft/sft"
	"github.com/ldclabs/ic-sft/storage"
)

const stateVersion cbor.Version = 1

var stateKey = []byte("M:ledger")

// snapshot is the single persisted record covering every state component.
// Writing it in the same batch as the blocks it accompanies keeps the whole
// ledger reconstructable from one consistent point after a restart.
type snapshot struct {
	_            struct{} `cbor:",toarray"`
	Collection   *Collection
	Classes      []*TokenClass
	NextClass    sft.ClassID
	Owners       map[uint64]sft.Account
	Approvals    []*Approval
	NextApproval sft.ApprovalID
	Salt         []byte
	Commitments  []*Commitment
	Dedup        []DedupEntry
}

func (l *Ledger) snapshot() *snapshot {
	classes := make([]*TokenClass, 0, len(l.registry.classes))
	for _, c := range l.registry.classes {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })

	owners := make(map[uint64]sft.Account, len(l.ownership.owners))
	for id, acc := range l.ownership.owners {
		owners[uint64(id)] = acc
	}

	commitments := l.challenges.Pending()
	sort.Slice(commitments, func(i, j int) bool { return string(commitments[i].Token) < string(commitments[j].Token) })

	return &snapshot{
		Collection:   l.col,
		Classes:      classes,
		NextClass:    l.registry.next,
		Owners:       owners,
		Approvals:    l.approvals.All(),
		NextApproval: l.approvals.next,
		Salt:         l.challenges.salt,
		Commitments:  commitments,
		Dedup:        l.dedup.All(),
	}
}

// stateBatch encodes the full state into a write batch, to be committed
// together with any blocks produced by the same call.
func (l *Ledger) stateBatch() (*storage.Batch, error) {
	data, err := cbor.MarshalVersioned(stateVersion, l.snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode ledger state: %w", err)
	}
	batch := storage.NewBatch()
	batch.Put(stateKey, data)
	return batch, nil
}

// loadState rebuilds the in memory components from the persisted snapshot.
// It reports whether a snapshot existed.
func (l *Ledger) loadState() (bool, error) {
	data, err := l.store.Get(stateKey)
	if err == storage.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load ledger state: %w", err)
	}
	var snap snapshot
	ver, err := cbor.UnmarshalVersioned(data, &snap)
	if err != nil {
		return false, fmt.Errorf("decode ledger state: %w", err)
	}
	if ver != stateVersion {
		return false, fmt.Errorf("unsupported ledger state version %d", ver)
	}

	l.col = snap.Collection

	l.registry = NewRegistry()
	for _, c := range snap.Classes {
		l.registry.classes[c.ID] = c
		l.registry.byAsset[string(c.AssetHash)] = c.ID
	}
	l.registry.next = snap.NextClass

	l.ownership = NewOwnership()
	for id, acc := range snap.Owners {
		if err = l.ownership.SetOwner(sft.TokenID(id), acc); err != nil {
			return false, fmt.Errorf("restore ownership of %s: %w", sft.TokenID(id), err)
		}
	}

	l.approvals = NewApprovals()
	for _, a := range snap.Approvals {
		l.approvals.restore(a)
	}
	l.approvals.next = snap.NextApproval

	l.challenges = NewChallenges(snap.Salt)
	for _, cm := range snap.Commitments {
		l.challenges.restore(cm)
	}

	l.dedup = NewDedup()
	for _, e := range snap.Dedup {
		l.dedup.restore(e)
	}
	return true, nil
}
