package ledger

import (
	"fmt"
	"sort"

	"github.com/ldclabs/ic-sft/hash"
	"github.com/ldclabs/ic-sft/sft"
)

// TokenClass is one semi fungible class: shared asset content plus the
// count of instances minted against it. Serials 1..Minted exist.
type TokenClass struct {
	_                struct{} `cbor:",toarray"`
	ID               sft.ClassID
	Name             string
	Description      string
	AssetName        string
	AssetContentType string
	AssetContent     []byte
	AssetHash        []byte
	Metadata         sft.Map
	SupplyCap        *uint32 // nil = unlimited
	Author           sft.Principal
	Minted           uint32
	CreatedAt        uint64
	UpdatedAt        uint64
}

// TokenMetadata projects the class into the per token key value form; every
// instance of a class shares it.
func (c *TokenClass) TokenMetadata() sft.Map {
	m := sft.Map{
		"name":               sft.TextValue(c.Name),
		"asset_name":         sft.TextValue(c.AssetName),
		"asset_content_type": sft.TextValue(c.AssetContentType),
		"asset_hash":         sft.BlobValue(append([]byte(nil), c.AssetHash...)),
		"author":             sft.BlobValue(append([]byte(nil), c.Author...)),
		"minted":             sft.NatValue(uint64(c.Minted)),
	}
	if c.Description != "" {
		m["description"] = sft.TextValue(c.Description)
	}
	if c.SupplyCap != nil {
		m["supply_cap"] = sft.NatValue(uint64(*c.SupplyCap))
	}
	for k, v := range c.Metadata {
		m[k] = v
	}
	return m
}

// Registry owns the token classes and allocates class ids and instance
// serials. Class ids start at 1 and never repeat.
type Registry struct {
	classes map[sft.ClassID]*TokenClass
	byAsset map[string]sft.ClassID
	next    sft.ClassID
}

func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[sft.ClassID]*TokenClass),
		byAsset: make(map[string]sft.ClassID),
		next:    1,
	}
}

// Get returns the class, or ErrNotFound.
func (r *Registry) Get(id sft.ClassID) (*TokenClass, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, fmt.Errorf("%w: token class %d", ErrNotFound, id)
	}
	return c, nil
}

// ClassByAsset returns the class holding the given asset hash, if any.
func (r *Registry) ClassByAsset(assetHash []byte) (*TokenClass, bool) {
	id, ok := r.byAsset[string(assetHash)]
	if !ok {
		return nil, false
	}
	return r.classes[id], true
}

// CheckCreate validates class creation arguments without mutating, so
// callers can fail before consuming a challenge commitment.
func (r *Registry) CheckCreate(arg *sft.CreateClassArg) error {
	if arg.Name == "" {
		return fmt.Errorf("%w: class name is empty", ErrInvalidArgument)
	}
	if len(arg.AssetContent) == 0 {
		return fmt.Errorf("%w: asset content is empty", ErrInvalidArgument)
	}
	if arg.Author.IsZero() || arg.Author.IsAnonymous() {
		return fmt.Errorf("%w: invalid author", ErrInvalidArgument)
	}
	assetHash := hash.Sum256(arg.AssetContent)
	if id, ok := r.byAsset[string(assetHash[:])]; ok {
		return fmt.Errorf("%w: asset already used by class %d", ErrDuplicateAsset, id)
	}
	return nil
}

// Create registers a new class. The asset content must be unique across the
// collection; its hash is the duplicate detection key.
func (r *Registry) Create(arg *sft.CreateClassArg, now uint64) (*TokenClass, error) {
	if err := r.CheckCreate(arg); err != nil {
		return nil, err
	}
	assetHash := hash.Sum256(arg.AssetContent)

	c := &TokenClass{
		ID:               r.next,
		Name:             arg.Name,
		Description:      arg.Description,
		AssetName:        arg.AssetName,
		AssetContentType: arg.AssetContentType,
		AssetContent:     arg.AssetContent,
		AssetHash:        assetHash[:],
		Metadata:         arg.Metadata.Clone(),
		Author:           arg.Author,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if arg.SupplyCap != nil {
		cap := *arg.SupplyCap
		c.SupplyCap = &cap
	}
	r.classes[c.ID] = c
	r.byAsset[string(c.AssetHash)] = c.ID
	r.next++
	return c, nil
}

// Update applies a partial patch. Only the class author or a collection
// manager may update; the supply cap may only be tightened and never below
// the minted count.
func (r *Registry) Update(arg *sft.UpdateClassArg, caller sft.Principal, isManager bool, now uint64) error {
	c, err := r.Get(arg.ID)
	if err != nil {
		return err
	}
	if !isManager && !c.Author.Eq(caller) {
		return fmt.Errorf("%w: caller is not the class author", ErrUnauthorized)
	}
	if arg.SupplyCap != nil {
		cap := *arg.SupplyCap
		if c.SupplyCap != nil && cap > *c.SupplyCap {
			return fmt.Errorf("%w: supply cap can only be tightened", ErrInvalidArgument)
		}
		if cap < c.Minted {
			return fmt.Errorf("%w: supply cap %d below minted count %d", ErrInvalidArgument, cap, c.Minted)
		}
		c.SupplyCap = &cap
	}
	if arg.AssetContent != nil {
		assetHash := hash.Sum256(arg.AssetContent)
		if id, ok := r.byAsset[string(assetHash[:])]; ok && id != c.ID {
			return fmt.Errorf("%w: asset already used by class %d", ErrDuplicateAsset, id)
		}
		delete(r.byAsset, string(c.AssetHash))
		c.AssetContent = arg.AssetContent
		c.AssetHash = assetHash[:]
		r.byAsset[string(c.AssetHash)] = c.ID
	}
	if arg.Name != nil {
		c.Name = *arg.Name
	}
	if arg.Description != nil {
		c.Description = *arg.Description
	}
	if arg.AssetName != nil {
		c.AssetName = *arg.AssetName
	}
	if arg.AssetContentType != nil {
		c.AssetContentType = *arg.AssetContentType
	}
	if arg.Metadata != nil {
		c.Metadata = arg.Metadata.Clone()
	}
	if arg.Author != nil {
		if arg.Author.IsZero() || arg.Author.IsAnonymous() {
			return fmt.Errorf("%w: invalid author", ErrInvalidArgument)
		}
		c.Author = *arg.Author
	}
	c.UpdatedAt = now
	return nil
}

// MintInstances allocates count fresh serials against the class, rejecting
// the whole request when it would exceed the supply cap.
func (r *Registry) MintInstances(id sft.ClassID, count int, now uint64) ([]sft.TokenID, error) {
	c, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: nothing to mint", ErrInvalidArgument)
	}
	minted := uint64(c.Minted) + uint64(count)
	if minted > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: serial space exhausted for class %d", ErrSupplyCapReached, id)
	}
	if c.SupplyCap != nil && minted > uint64(*c.SupplyCap) {
		return nil, fmt.Errorf("%w: class %d cap %d, minted %d, requested %d",
			ErrSupplyCapReached, id, *c.SupplyCap, c.Minted, count)
	}

	ids := make([]sft.TokenID, 0, count)
	for i := 0; i < count; i++ {
		c.Minted++
		ids = append(ids, sft.NewTokenID(c.ID, c.Minted))
	}
	c.UpdatedAt = now
	return ids, nil
}

// Exists reports whether the token id refers to an allocated instance.
func (r *Registry) Exists(id sft.TokenID) bool {
	if !id.IsValid() {
		return false
	}
	c, ok := r.classes[id.Class()]
	return ok && id.Serial() <= c.Minted
}

// TotalSupply is the number of instances minted across all classes.
func (r *Registry) TotalSupply() uint64 {
	var total uint64
	for _, c := range r.classes {
		total += uint64(c.Minted)
	}
	return total
}

// ClassIDs returns every class id in ascending order.
func (r *Registry) ClassIDs() []sft.ClassID {
	ids := make([]sft.ClassID, 0, len(r.classes))
	for id := range r.classes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Tokens pages over every existing token id in ascending order. The cursor
// is the last seen id, exclusive; zero starts from the beginning.
func (r *Registry) Tokens(cursor sft.TokenID, take int) []sft.TokenID {
	out := make([]sft.TokenID, 0, take)
	for _, classID := range r.ClassIDs() {
		c := r.classes[classID]
		for serial := uint32(1); serial <= c.Minted; serial++ {
			id := sft.NewTokenID(classID, serial)
			if id <= cursor {
				continue
			}
			out = append(out, id)
			if len(out) >= take {
				return out
			}
		}
	}
	return out
}
