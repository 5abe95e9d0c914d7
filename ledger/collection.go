package ledger

import (
	"fmt"

	"github.com/ldclabs/ic-sft/sft"
	"github.com/ldclabs/ic-sft/util"
)

// Collection holds the collection wide configuration: display metadata, the
// authorization sets and the tunable limits. It is mutated only through
// UpdateConfig, SetManagers and SetMinters.
type Collection struct {
	_            struct{} `cbor:",toarray"`
	Symbol       string
	Name         string
	Description  string
	Logo         string
	AssetsOrigin string
	SupplyCap    uint64 // total instances across all classes, 0 = unlimited
	Author       sft.Principal
	Managers     []sft.Principal
	Minters      []sft.Principal
	Settings     sft.Settings
	CreatedAt    uint64
	UpdatedAt    uint64
}

// NewCollection builds the initial collection state from the install
// argument. The author is also the first manager and minter.
func NewCollection(arg *sft.InitArg, author sft.Principal, now uint64) *Collection {
	return &Collection{
		Symbol:       arg.Symbol,
		Name:         arg.Name,
		Description:  arg.Description,
		Logo:         arg.Logo,
		AssetsOrigin: arg.AssetsOrigin,
		SupplyCap:    arg.SupplyCap,
		Author:       author,
		Settings:     arg.Settings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsManager reports whether p is the collection author or a listed manager.
func (c *Collection) IsManager(p sft.Principal) bool {
	return c.Author.Eq(p) || util.ContainsFunc(c.Managers, p.Eq)
}

// IsMinter reports whether p may mint: managers always may, plus any listed
// minter.
func (c *Collection) IsMinter(p sft.Principal) bool {
	return c.IsManager(p) || util.ContainsFunc(c.Minters, p.Eq)
}

// UpdateConfig applies a partial patch. The collection supply cap may only
// be tightened, and never below the already minted total.
func (c *Collection) UpdateConfig(arg *sft.UpdateCollectionArg, minted uint64, now uint64) error {
	if arg.SupplyCap != nil {
		cap := *arg.SupplyCap
		if c.SupplyCap != 0 && cap > c.SupplyCap {
			return fmt.Errorf("%w: supply cap can only be tightened", ErrInvalidArgument)
		}
		if cap < minted {
			return fmt.Errorf("%w: supply cap %d below minted total %d", ErrInvalidArgument, cap, minted)
		}
		c.SupplyCap = cap
	}
	if arg.Name != nil {
		c.Name = *arg.Name
	}
	if arg.Description != nil {
		c.Description = *arg.Description
	}
	if arg.Logo != nil {
		c.Logo = *arg.Logo
	}
	if arg.AssetsOrigin != nil {
		c.AssetsOrigin = *arg.AssetsOrigin
	}
	s := &c.Settings
	if arg.MaxQueryBatchSize != nil {
		s.MaxQueryBatchSize = *arg.MaxQueryBatchSize
	}
	if arg.MaxUpdateBatchSize != nil {
		s.MaxUpdateBatchSize = *arg.MaxUpdateBatchSize
	}
	if arg.DefaultTakeValue != nil {
		s.DefaultTakeValue = *arg.DefaultTakeValue
	}
	if arg.MaxTakeValue != nil {
		s.MaxTakeValue = *arg.MaxTakeValue
	}
	if s.DefaultTakeValue > s.MaxTakeValue {
		return fmt.Errorf("%w: default take %d exceeds max take %d",
			ErrInvalidArgument, s.DefaultTakeValue, s.MaxTakeValue)
	}
	if arg.MaxMemoSize != nil {
		s.MaxMemoSize = *arg.MaxMemoSize
	}
	if arg.AtomicBatchTransfers != nil {
		s.AtomicBatchTransfers = *arg.AtomicBatchTransfers
	}
	if arg.TxWindow != nil {
		s.TxWindow = *arg.TxWindow
	}
	if arg.PermittedDrift != nil {
		s.PermittedDrift = *arg.PermittedDrift
	}
	if arg.MaxApprovalsPerTokenOrCollection != nil {
		s.MaxApprovalsPerTokenOrCollection = *arg.MaxApprovalsPerTokenOrCollection
	}
	if arg.MaxRevokeApprovals != nil {
		s.MaxRevokeApprovals = *arg.MaxRevokeApprovals
	}
	c.UpdatedAt = now
	return nil
}

// SetManagers replaces the manager set.
func (c *Collection) SetManagers(managers []sft.Principal, now uint64) {
	c.Managers = append([]sft.Principal(nil), managers...)
	c.UpdatedAt = now
}

// SetMinters replaces the minter set.
func (c *Collection) SetMinters(minters []sft.Principal, now uint64) {
	c.Minters = append([]sft.Principal(nil), minters...)
	c.UpdatedAt = now
}

// Metadata projects the collection configuration into the key value form
// served at the query boundary.
func (c *Collection) Metadata(totalSupply uint64) sft.Map {
	atomic := uint64(0)
	if c.Settings.AtomicBatchTransfers {
		atomic = 1
	}
	m := sft.Map{
		"symbol":       sft.TextValue(c.Symbol),
		"name":         sft.TextValue(c.Name),
		"total_supply": sft.NatValue(totalSupply),

		"max_query_batch_size":   sft.NatValue(uint64(c.Settings.MaxQueryBatchSize)),
		"max_update_batch_size":  sft.NatValue(uint64(c.Settings.MaxUpdateBatchSize)),
		"default_take_value":     sft.NatValue(uint64(c.Settings.DefaultTakeValue)),
		"max_take_value":         sft.NatValue(uint64(c.Settings.MaxTakeValue)),
		"max_memo_size":          sft.NatValue(uint64(c.Settings.MaxMemoSize)),
		"atomic_batch_transfers": sft.NatValue(atomic),
		"tx_window":              sft.NatValue(c.Settings.TxWindow),
		"permitted_drift":        sft.NatValue(c.Settings.PermittedDrift),

		"max_approvals_per_token_or_collection": sft.NatValue(uint64(c.Settings.MaxApprovalsPerTokenOrCollection)),
		"max_revoke_approvals":                  sft.NatValue(uint64(c.Settings.MaxRevokeApprovals)),
	}
	if c.Description != "" {
		m["description"] = sft.TextValue(c.Description)
	}
	if c.Logo != "" {
		m["logo"] = sft.TextValue(c.Logo)
	}
	if c.SupplyCap != 0 {
		m["supply_cap"] = sft.NatValue(c.SupplyCap)
	}
	return m
}
