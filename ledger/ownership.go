package ledger

import (
	"fmt"
	"sort"

	"github.com/ldclabs/ic-sft/sft"
)

// Ownership maps token instances to their holding accounts. It performs no
// authorization; callers decide who may reassign what.
type Ownership struct {
	owners  map[sft.TokenID]sft.Account
	byOwner map[string]map[sft.TokenID]struct{}
}

func NewOwnership() *Ownership {
	return &Ownership{
		owners:  make(map[sft.TokenID]sft.Account),
		byOwner: make(map[string]map[sft.TokenID]struct{}),
	}
}

// OwnerOf returns the holding account, or false when the instance has never
// been assigned.
func (o *Ownership) OwnerOf(id sft.TokenID) (sft.Account, bool) {
	acc, ok := o.owners[id]
	return acc, ok
}

// SetOwner assigns the instance, removing it from the previous holder's
// index when reassigning.
func (o *Ownership) SetOwner(id sft.TokenID, acc sft.Account) error {
	if !id.IsValid() {
		return fmt.Errorf("%w: token id %s", ErrInvalidArgument, id)
	}
	if !acc.IsValid() {
		return fmt.Errorf("%w: account %s", ErrInvalidArgument, acc)
	}
	if prev, ok := o.owners[id]; ok {
		prevKey := prev.Key()
		delete(o.byOwner[prevKey], id)
		if len(o.byOwner[prevKey]) == 0 {
			delete(o.byOwner, prevKey)
		}
	}
	o.owners[id] = acc
	key := acc.Key()
	if o.byOwner[key] == nil {
		o.byOwner[key] = make(map[sft.TokenID]struct{})
	}
	o.byOwner[key][id] = struct{}{}
	return nil
}

// BalanceOf counts the instances held by the account.
func (o *Ownership) BalanceOf(acc sft.Account) uint64 {
	return uint64(len(o.byOwner[acc.Key()]))
}

// InstancesOf pages over the account's instances in ascending token id
// order. The cursor is the last seen id, exclusive; zero starts from the
// beginning.
func (o *Ownership) InstancesOf(acc sft.Account, cursor sft.TokenID, take int) []sft.TokenID {
	held := o.byOwner[acc.Key()]
	if len(held) == 0 || take <= 0 {
		return nil
	}
	ids := make([]sft.TokenID, 0, len(held))
	for id := range held {
		if id > cursor {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > take {
		ids = ids[:take]
	}
	return ids
}

// Len is the number of assigned instances.
func (o *Ownership) Len() int {
	return len(o.owners)
}
