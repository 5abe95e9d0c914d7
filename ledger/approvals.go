package ledger

import (
	"fmt"
	"sort"

	"github.com/ldclabs/ic-sft/sft"
)

// Approval is one grant of transfer rights. TokenID zero means the grant
// covers every token the grantor owns at spend time (collection scope).
type Approval struct {
	_         struct{} `cbor:",toarray"`
	ID        sft.ApprovalID
	Grantor   sft.Account
	Spender   sft.Account
	TokenID   sft.TokenID
	ExpiresAt uint64 // 0 = never
	CreatedAt uint64
	Memo      []byte
}

// Active reports whether the approval has not expired at now.
func (a *Approval) Active(now uint64) bool {
	return a.ExpiresAt == 0 || a.ExpiresAt > now
}

// Approvals holds the token and collection scoped grants. At most one
// active approval exists per (grantor, spender, scope) tuple; a new grant
// for the same tuple replaces the old one while still issuing a fresh id.
// Expired entries are removed lazily when their tuple is next touched,
// never swept in the background.
type Approvals struct {
	next       sft.ApprovalID
	token      map[sft.TokenID]map[string]*Approval // token id -> spender key
	collection map[string]map[string]*Approval      // grantor key -> spender key
}

func NewApprovals() *Approvals {
	return &Approvals{
		next:       1,
		token:      make(map[sft.TokenID]map[string]*Approval),
		collection: make(map[string]map[string]*Approval),
	}
}

func (s *Approvals) purgeToken(id sft.TokenID, now uint64) {
	for key, a := range s.token[id] {
		if !a.Active(now) {
			delete(s.token[id], key)
		}
	}
	if len(s.token[id]) == 0 {
		delete(s.token, id)
	}
}

func (s *Approvals) purgeCollection(grantorKey string, now uint64) {
	for key, a := range s.collection[grantorKey] {
		if !a.Active(now) {
			delete(s.collection[grantorKey], key)
		}
	}
	if len(s.collection[grantorKey]) == 0 {
		delete(s.collection, grantorKey)
	}
}

// CountActiveToken counts the grantor's active token scoped approvals.
func (s *Approvals) CountActiveToken(grantor sft.Account, now uint64) int {
	n := 0
	for _, spenders := range s.token {
		for _, a := range spenders {
			if a.Grantor.Eq(grantor) && a.Active(now) {
				n++
			}
		}
	}
	return n
}

// CountActiveCollection counts the grantor's active collection scoped
// approvals.
func (s *Approvals) CountActiveCollection(grantor sft.Account, now uint64) int {
	n := 0
	for _, a := range s.collection[grantor.Key()] {
		if a.Active(now) {
			n++
		}
	}
	return n
}

// CanApproveToken checks the approval limit without mutating: replacing an
// existing grant for the same (spender, token) tuple is always allowed.
func (s *Approvals) CanApproveToken(grantor sft.Account, id sft.TokenID, spender sft.Account, now uint64, max int) error {
	if a, ok := s.token[id][spender.Key()]; ok && a.Active(now) {
		return nil
	}
	if s.CountActiveToken(grantor, now) >= max {
		return fmt.Errorf("%w: at most %d active token approvals", ErrExceedsApprovalLimit, max)
	}
	return nil
}

// CanApproveCollection is the collection scope analog of CanApproveToken.
func (s *Approvals) CanApproveCollection(grantor sft.Account, spender sft.Account, now uint64, max int) error {
	if a, ok := s.collection[grantor.Key()][spender.Key()]; ok && a.Active(now) {
		return nil
	}
	if s.CountActiveCollection(grantor, now) >= max {
		return fmt.Errorf("%w: at most %d active collection approvals", ErrExceedsApprovalLimit, max)
	}
	return nil
}

// ApproveToken grants or replaces a token scoped approval.
func (s *Approvals) ApproveToken(grantor sft.Account, id sft.TokenID, info *sft.ApprovalInfo, now uint64, max int) (sft.ApprovalID, error) {
	s.purgeToken(id, now)
	if err := s.CanApproveToken(grantor, id, info.Spender, now, max); err != nil {
		return 0, err
	}
	spenderKey := info.Spender.Key()

	a := &Approval{
		ID:        s.next,
		Grantor:   grantor,
		Spender:   info.Spender,
		TokenID:   id,
		ExpiresAt: info.ExpiresAt,
		CreatedAt: now,
		Memo:      info.Memo,
	}
	if s.token[id] == nil {
		s.token[id] = make(map[string]*Approval)
	}
	s.token[id][spenderKey] = a
	s.next++
	return a.ID, nil
}

// ApproveCollection grants or replaces a collection scoped approval.
func (s *Approvals) ApproveCollection(grantor sft.Account, info *sft.ApprovalInfo, now uint64, max int) (sft.ApprovalID, error) {
	grantorKey := grantor.Key()
	s.purgeCollection(grantorKey, now)
	if err := s.CanApproveCollection(grantor, info.Spender, now, max); err != nil {
		return 0, err
	}
	spenderKey := info.Spender.Key()

	a := &Approval{
		ID:        s.next,
		Grantor:   grantor,
		Spender:   info.Spender,
		ExpiresAt: info.ExpiresAt,
		CreatedAt: now,
		Memo:      info.Memo,
	}
	if s.collection[grantorKey] == nil {
		s.collection[grantorKey] = make(map[string]*Approval)
	}
	s.collection[grantorKey][spenderKey] = a
	s.next++
	return a.ID, nil
}

func (s *Approvals) matchToken(grantor sft.Account, id sft.TokenID, spender *sft.Account, now uint64) []*Approval {
	var matched []*Approval
	for _, a := range s.token[id] {
		if !a.Active(now) || !a.Grantor.Eq(grantor) {
			continue
		}
		if spender != nil && !a.Spender.Eq(*spender) {
			continue
		}
		matched = append(matched, a)
	}
	return matched
}

func (s *Approvals) matchCollection(grantor sft.Account, spender *sft.Account, now uint64) []*Approval {
	var matched []*Approval
	for _, a := range s.collection[grantor.Key()] {
		if !a.Active(now) {
			continue
		}
		if spender != nil && !a.Spender.Eq(*spender) {
			continue
		}
		matched = append(matched, a)
	}
	return matched
}

func checkRevoke(matched []*Approval, max int) error {
	if len(matched) == 0 {
		return ErrApprovalDoesNotExist
	}
	if len(matched) > max {
		return fmt.Errorf("%w: %d approvals match, limit %d", ErrTooManyRevocations, len(matched), max)
	}
	return nil
}

// CheckRevokeToken validates a token scope revocation without mutating.
func (s *Approvals) CheckRevokeToken(grantor sft.Account, id sft.TokenID, spender *sft.Account, now uint64, max int) error {
	return checkRevoke(s.matchToken(grantor, id, spender, now), max)
}

// CheckRevokeCollection validates a collection scope revocation without
// mutating.
func (s *Approvals) CheckRevokeCollection(grantor sft.Account, spender *sft.Account, now uint64, max int) error {
	return checkRevoke(s.matchCollection(grantor, spender, now), max)
}

// RevokeToken withdraws the grantor's token scoped approvals for one
// spender, or for all spenders when spender is nil. The whole call is
// rejected when more than max approvals would be revoked.
func (s *Approvals) RevokeToken(grantor sft.Account, id sft.TokenID, spender *sft.Account, now uint64, max int) ([]*Approval, error) {
	s.purgeToken(id, now)
	return s.revoke(s.matchToken(grantor, id, spender, now), max)
}

// RevokeCollection withdraws the grantor's collection scoped approvals for
// one spender, or for all spenders when spender is nil.
func (s *Approvals) RevokeCollection(grantor sft.Account, spender *sft.Account, now uint64, max int) ([]*Approval, error) {
	s.purgeCollection(grantor.Key(), now)
	return s.revoke(s.matchCollection(grantor, spender, now), max)
}

func (s *Approvals) revoke(matched []*Approval, max int) ([]*Approval, error) {
	if err := checkRevoke(matched, max); err != nil {
		return nil, err
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	for _, a := range matched {
		if a.TokenID != 0 {
			delete(s.token[a.TokenID], a.Spender.Key())
			if len(s.token[a.TokenID]) == 0 {
				delete(s.token, a.TokenID)
			}
		} else {
			grantorKey := a.Grantor.Key()
			delete(s.collection[grantorKey], a.Spender.Key())
			if len(s.collection[grantorKey]) == 0 {
				delete(s.collection, grantorKey)
			}
		}
	}
	return matched, nil
}

// IsActive reports whether spender may move the owner's token right now.
// A token scoped approval is consulted first, a collection scoped one is
// the fallback.
func (s *Approvals) IsActive(owner, spender sft.Account, id sft.TokenID, now uint64) bool {
	if a, ok := s.token[id][spender.Key()]; ok && a.Grantor.Eq(owner) && a.Active(now) {
		return true
	}
	if a, ok := s.collection[owner.Key()][spender.Key()]; ok && a.Active(now) {
		return true
	}
	return false
}

// ClearToken drops every token scoped approval for the instance. Called on
// ownership change, since grants from the previous owner must not survive
// the transfer.
func (s *Approvals) ClearToken(id sft.TokenID) {
	delete(s.token, id)
}

// TokenApprovalsOf lists the active token scoped approvals for the
// instance, ascending by approval id.
func (s *Approvals) TokenApprovalsOf(id sft.TokenID, now uint64) []*Approval {
	var out []*Approval
	for _, a := range s.token[id] {
		if a.Active(now) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CollectionApprovalsOf lists the grantor's active collection scoped
// approvals, ascending by approval id.
func (s *Approvals) CollectionApprovalsOf(grantor sft.Account, now uint64) []*Approval {
	var out []*Approval
	for _, a := range s.collection[grantor.Key()] {
		if a.Active(now) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All returns every stored approval, ascending by id, for snapshotting.
func (s *Approvals) All() []*Approval {
	var out []*Approval
	for _, spenders := range s.token {
		for _, a := range spenders {
			out = append(out, a)
		}
	}
	for _, spenders := range s.collection {
		for _, a := range spenders {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// restore reinserts a snapshotted approval.
func (s *Approvals) restore(a *Approval) {
	if a.TokenID != 0 {
		if s.token[a.TokenID] == nil {
			s.token[a.TokenID] = make(map[string]*Approval)
		}
		s.token[a.TokenID][a.Spender.Key()] = a
	} else {
		grantorKey := a.Grantor.Key()
		if s.collection[grantorKey] == nil {
			s.collection[grantorKey] = make(map[string]*Approval)
		}
		s.collection[grantorKey][a.Spender.Key()] = a
	}
	if a.ID >= s.next {
		s.next = a.ID + 1
	}
}
