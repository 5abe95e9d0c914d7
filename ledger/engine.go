package ledger

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ldclabs/ic-sft/blocklog"
	"github.com/ldclabs/ic-sft/sft"
	"github.com/ldclabs/ic-sft/util"
)

// evaluate runs a batch in two passes: a dry run validating every item
// against the current state, then an apply pass over the items that
// validated. With atomic set, any dry run failure aborts the whole batch
// before anything is applied; the untouched items report the batch error.
// The apply pass re-checks each item, so state seen by item i+1 reflects
// item i's already applied effects; an apply pass failure can therefore
// still surface from a conflict between items. In atomic mode it marks
// every result with the batch error and reports aborted, and the caller
// must discard the staged blocks and restore the pre batch state.
func evaluate[A any, E interface {
	comparable
	error
}](items []A, atomic bool, apply func(item A, dryRun bool) (uint64, E), batchErr func() E) (results []sft.Result[E], aborted bool) {
	var zero E
	results = make([]sft.Result[E], len(items))
	failed := false
	for i, item := range items {
		if _, e := apply(item, true); e != zero {
			results[i].Err = e
			failed = true
		}
	}
	if atomic && failed {
		for i := range results {
			if results[i].Err == zero {
				results[i].Err = batchErr()
			}
		}
		return results, false
	}
	for i, item := range items {
		if results[i].Err != zero {
			continue
		}
		index, e := apply(item, false)
		if e != zero {
			if atomic {
				for j := range results {
					results[j].Err = batchErr()
					results[j].BlockIndex = 0
				}
				return results, true
			}
			results[i].Err = e
			continue
		}
		results[i].BlockIndex = index
	}
	return results, false
}

func (l *Ledger) horizon() uint64 {
	s := l.settings()
	return s.WindowNanos() + s.DriftNanos()
}

// Transfer moves owned instances to new holders, one result per item.
func (l *Ledger) Transfer(caller sft.Principal, args []*sft.TransferArg) ([]sft.TransferResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.settings()
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) > int(s.MaxUpdateBatchSize) {
		return nil, &sft.TransferError{Code: sft.TransferErrGenericBatch,
			Message: fmt.Sprintf("batch size %d over limit %d", len(args), s.MaxUpdateBatchSize)}
	}
	now := l.now()
	var staged []*blocklog.Block
	results, aborted := evaluate(args, s.AtomicBatchTransfers,
		func(a *sft.TransferArg, dry bool) (uint64, *sft.TransferError) {
			return l.applyTransfer(caller, a, now, dry, &staged)
		},
		func() *sft.TransferError {
			return &sft.TransferError{Code: sft.TransferErrGenericBatch, Message: "atomic batch aborted"}
		})
	if aborted {
		l.restore()
		return results, nil
	}
	if len(staged) > 0 {
		if err := l.commit(staged); err != nil {
			return nil, &sft.TransferError{Code: sft.TransferErrGenericBatch, Message: err.Error()}
		}
	}
	l.logger.WithFields(logrus.Fields{"op": "transfer", "items": len(args), "blocks": len(staged)}).Debug("batch applied")
	return results, nil
}

func (l *Ledger) applyTransfer(caller sft.Principal, a *sft.TransferArg, now uint64, dry bool, staged *[]*blocklog.Block) (uint64, *sft.TransferError) {
	s := l.settings()
	if e := a.ValidateTiming(now, s); e != nil {
		return 0, e
	}
	var key []byte
	if a.CreatedAtTime != 0 {
		k, err := DedupKey(caller, blocklog.KindTransfer, a)
		if err != nil {
			return 0, &sft.TransferError{Code: sft.TransferErrGeneric, Message: err.Error()}
		}
		if index, ok := l.dedup.Check(k); ok {
			return 0, &sft.TransferError{Code: sft.TransferErrDuplicate, DuplicateOf: index}
		}
		key = k
	}
	owner, ok := l.ownership.OwnerOf(a.TokenID)
	if !ok {
		return 0, &sft.TransferError{Code: sft.TransferErrNonExistingTokenID}
	}
	from := a.From(caller)
	if !owner.Eq(from) {
		return 0, &sft.TransferError{Code: sft.TransferErrUnauthorized}
	}
	if e := a.ValidateSanity(caller, s); e != nil {
		return 0, e
	}
	if dry {
		return 0, nil
	}

	if err := l.ownership.SetOwner(a.TokenID, a.To); err != nil {
		return 0, &sft.TransferError{Code: sft.TransferErrGeneric, Message: err.Error()}
	}
	l.approvals.ClearToken(a.TokenID)
	to := a.To
	index := stage(l, staged, &blocklog.Block{Kind: blocklog.KindTransfer, Timestamp: now, Tx: blocklog.Transaction{
		TokenID:   uint64(a.TokenID),
		From:      &from,
		To:        &to,
		Memo:      a.Memo,
		Timestamp: a.CreatedAtTime,
	}})
	if key != nil {
		l.dedup.Record(key, index, a.CreatedAtTime, now, l.horizon())
	}
	return index, nil
}

// TransferFrom moves instances on behalf of their owners, under active
// approvals.
func (l *Ledger) TransferFrom(caller sft.Principal, args []*sft.TransferFromArg) ([]sft.TransferFromResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.settings()
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) > int(s.MaxUpdateBatchSize) {
		return nil, &sft.TransferFromError{Code: sft.TransferFromErrGenericBatch,
			Message: fmt.Sprintf("batch size %d over limit %d", len(args), s.MaxUpdateBatchSize)}
	}
	now := l.now()
	var staged []*blocklog.Block
	results, aborted := evaluate(args, s.AtomicBatchTransfers,
		func(a *sft.TransferFromArg, dry bool) (uint64, *sft.TransferFromError) {
			return l.applyTransferFrom(caller, a, now, dry, &staged)
		},
		func() *sft.TransferFromError {
			return &sft.TransferFromError{Code: sft.TransferFromErrGenericBatch, Message: "atomic batch aborted"}
		})
	if aborted {
		l.restore()
		return results, nil
	}
	if len(staged) > 0 {
		if err := l.commit(staged); err != nil {
			return nil, &sft.TransferFromError{Code: sft.TransferFromErrGenericBatch, Message: err.Error()}
		}
	}
	l.logger.WithFields(logrus.Fields{"op": "transfer_from", "items": len(args), "blocks": len(staged)}).Debug("batch applied")
	return results, nil
}

func (l *Ledger) applyTransferFrom(caller sft.Principal, a *sft.TransferFromArg, now uint64, dry bool, staged *[]*blocklog.Block) (uint64, *sft.TransferFromError) {
	s := l.settings()
	if e := a.ValidateTiming(now, s); e != nil {
		return 0, e
	}
	var key []byte
	if a.CreatedAtTime != 0 {
		k, err := DedupKey(caller, blocklog.KindTransferFrom, a)
		if err != nil {
			return 0, &sft.TransferFromError{Code: sft.TransferFromErrGeneric, Message: err.Error()}
		}
		if index, ok := l.dedup.Check(k); ok {
			return 0, &sft.TransferFromError{Code: sft.TransferFromErrDuplicate, DuplicateOf: index}
		}
		key = k
	}
	owner, ok := l.ownership.OwnerOf(a.TokenID)
	if !ok {
		return 0, &sft.TransferFromError{Code: sft.TransferFromErrNonExistingTokenID}
	}
	spender := a.Spender(caller)
	if !owner.Eq(a.From) || !l.approvals.IsActive(owner, spender, a.TokenID, now) {
		return 0, &sft.TransferFromError{Code: sft.TransferFromErrUnauthorized}
	}
	if e := a.ValidateSanity(caller, s); e != nil {
		return 0, e
	}
	if dry {
		return 0, nil
	}

	if err := l.ownership.SetOwner(a.TokenID, a.To); err != nil {
		return 0, &sft.TransferFromError{Code: sft.TransferFromErrGeneric, Message: err.Error()}
	}
	l.approvals.ClearToken(a.TokenID)
	from := a.From
	to := a.To
	index := stage(l, staged, &blocklog.Block{Kind: blocklog.KindTransferFrom, Timestamp: now, Tx: blocklog.Transaction{
		TokenID:   uint64(a.TokenID),
		From:      &from,
		To:        &to,
		Spender:   &spender,
		Memo:      a.Memo,
		Timestamp: a.CreatedAtTime,
	}})
	if key != nil {
		l.dedup.Record(key, index, a.CreatedAtTime, now, l.horizon())
	}
	return index, nil
}

// Mint creates one instance of the class for every holder, in holder
// order. The whole call is rejected when it would exceed the class or
// collection supply cap.
func (l *Ledger) Mint(caller sft.Principal, arg *sft.MintArg) ([]sft.TokenID, *sft.MintError) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.settings()
	if len(arg.Holders) == 0 {
		return nil, &sft.MintError{Code: sft.MintErrGenericBatch, Message: "no holders"}
	}
	if len(arg.Holders) > int(s.MaxUpdateBatchSize) {
		return nil, &sft.MintError{Code: sft.MintErrGenericBatch,
			Message: fmt.Sprintf("batch size %d over limit %d", len(arg.Holders), s.MaxUpdateBatchSize)}
	}
	if len(arg.Memo) > int(s.MaxMemoSize) {
		return nil, &sft.MintError{Code: sft.MintErrGenericBatch, Message: "memo size is too large"}
	}
	if !l.col.IsMinter(caller) {
		return nil, &sft.MintError{Code: sft.MintErrUnauthorized}
	}
	for _, h := range arg.Holders {
		if !h.IsValid() {
			return nil, &sft.MintError{Code: sft.MintErrInvalidRecipient}
		}
	}
	c, err := l.registry.Get(arg.ClassID)
	if err != nil {
		return nil, &sft.MintError{Code: sft.MintErrNonExistingTokenID}
	}
	if l.col.SupplyCap != 0 {
		total, ok := util.SafeAdd(l.registry.TotalSupply(), uint64(len(arg.Holders)))
		if !ok || total > l.col.SupplyCap {
			return nil, &sft.MintError{Code: sft.MintErrSupplyCapReached}
		}
	}

	now := l.now()
	ids, err := l.registry.MintInstances(arg.ClassID, len(arg.Holders), now)
	if err != nil {
		switch {
		case errors.Is(err, ErrSupplyCapReached):
			return nil, &sft.MintError{Code: sft.MintErrSupplyCapReached}
		default:
			return nil, &sft.MintError{Code: sft.MintErrGenericBatch, Message: err.Error()}
		}
	}
	meta := c.TokenMetadata()
	var staged []*blocklog.Block
	for i, id := range ids {
		holder := arg.Holders[i]
		if err = l.ownership.SetOwner(id, holder); err != nil {
			l.restore()
			return nil, &sft.MintError{Code: sft.MintErrGenericBatch, Message: err.Error()}
		}
		stage(l, &staged, &blocklog.Block{Kind: blocklog.KindMint, Timestamp: now, Tx: blocklog.Transaction{
			TokenID:  uint64(id),
			To:       &holder,
			Metadata: meta,
			Memo:     arg.Memo,
		}})
	}
	if err = l.commit(staged); err != nil {
		return nil, &sft.MintError{Code: sft.MintErrGenericBatch, Message: err.Error()}
	}
	l.logger.WithFields(logrus.Fields{"op": "mint", "class": arg.ClassID, "minted": len(ids)}).Info("instances minted")
	return ids, nil
}

// ApproveToken grants token scoped approvals, one result per item.
func (l *Ledger) ApproveToken(caller sft.Principal, args []*sft.ApproveTokenArg) ([]sft.ApproveTokenResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.settings()
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) > int(s.MaxUpdateBatchSize) {
		return nil, &sft.ApproveTokenError{Code: sft.ApproveTokenErrGenericBatch,
			Message: fmt.Sprintf("batch size %d over limit %d", len(args), s.MaxUpdateBatchSize)}
	}
	now := l.now()
	var staged []*blocklog.Block
	results, aborted := evaluate(args, s.AtomicBatchTransfers,
		func(a *sft.ApproveTokenArg, dry bool) (uint64, *sft.ApproveTokenError) {
			return l.applyApproveToken(caller, a, now, dry, &staged)
		},
		func() *sft.ApproveTokenError {
			return &sft.ApproveTokenError{Code: sft.ApproveTokenErrGenericBatch, Message: "atomic batch aborted"}
		})
	if aborted {
		l.restore()
		return results, nil
	}
	if len(staged) > 0 {
		if err := l.commit(staged); err != nil {
			return nil, &sft.ApproveTokenError{Code: sft.ApproveTokenErrGenericBatch, Message: err.Error()}
		}
	}
	return results, nil
}

func (l *Ledger) applyApproveToken(caller sft.Principal, a *sft.ApproveTokenArg, now uint64, dry bool, staged *[]*blocklog.Block) (uint64, *sft.ApproveTokenError) {
	s := l.settings()
	if e := a.ValidateTiming(now, s); e != nil {
		return 0, e
	}
	var key []byte
	if a.Info.CreatedAtTime != 0 {
		k, err := DedupKey(caller, blocklog.KindApproveToken, a)
		if err != nil {
			return 0, &sft.ApproveTokenError{Code: sft.ApproveTokenErrGeneric, Message: err.Error()}
		}
		if index, ok := l.dedup.Check(k); ok {
			return 0, &sft.ApproveTokenError{Code: sft.ApproveTokenErrDuplicate, DuplicateOf: index}
		}
		key = k
	}
	owner, ok := l.ownership.OwnerOf(a.TokenID)
	if !ok {
		return 0, &sft.ApproveTokenError{Code: sft.ApproveTokenErrNonExistingTokenID}
	}
	grantor := a.Info.Grantor(caller)
	if !owner.Eq(grantor) {
		return 0, &sft.ApproveTokenError{Code: sft.ApproveTokenErrUnauthorized}
	}
	if e := a.ValidateSanity(caller, now, s); e != nil {
		return 0, e
	}
	max := int(s.MaxApprovalsPerTokenOrCollection)
	if dry {
		if err := l.approvals.CanApproveToken(grantor, a.TokenID, a.Info.Spender, now, max); err != nil {
			return 0, &sft.ApproveTokenError{Code: sft.ApproveTokenErrExceedsApprovalLimit, Message: err.Error()}
		}
		return 0, nil
	}

	if _, err := l.approvals.ApproveToken(grantor, a.TokenID, &a.Info, now, max); err != nil {
		return 0, &sft.ApproveTokenError{Code: sft.ApproveTokenErrExceedsApprovalLimit, Message: err.Error()}
	}
	spender := a.Info.Spender
	index := stage(l, staged, &blocklog.Block{Kind: blocklog.KindApproveToken, Timestamp: now, Tx: blocklog.Transaction{
		TokenID:   uint64(a.TokenID),
		From:      &grantor,
		Spender:   &spender,
		ExpiresAt: a.Info.ExpiresAt,
		Memo:      a.Info.Memo,
		Timestamp: a.Info.CreatedAtTime,
	}})
	if key != nil {
		l.dedup.Record(key, index, a.Info.CreatedAtTime, now, l.horizon())
	}
	return index, nil
}

// ApproveCollection grants collection scoped approvals covering every token
// the grantor owns at spend time.
func (l *Ledger) ApproveCollection(caller sft.Principal, args []*sft.ApproveCollectionArg) ([]sft.ApproveCollectionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.settings()
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) > int(s.MaxUpdateBatchSize) {
		return nil, &sft.ApproveCollectionError{Code: sft.ApproveCollectionErrGenericBatch,
			Message: fmt.Sprintf("batch size %d over limit %d", len(args), s.MaxUpdateBatchSize)}
	}
	now := l.now()
	var staged []*blocklog.Block
	results, aborted := evaluate(args, s.AtomicBatchTransfers,
		func(a *sft.ApproveCollectionArg, dry bool) (uint64, *sft.ApproveCollectionError) {
			return l.applyApproveCollection(caller, a, now, dry, &staged)
		},
		func() *sft.ApproveCollectionError {
			return &sft.ApproveCollectionError{Code: sft.ApproveCollectionErrGenericBatch, Message: "atomic batch aborted"}
		})
	if aborted {
		l.restore()
		return results, nil
	}
	if len(staged) > 0 {
		if err := l.commit(staged); err != nil {
			return nil, &sft.ApproveCollectionError{Code: sft.ApproveCollectionErrGenericBatch, Message: err.Error()}
		}
	}
	return results, nil
}

func (l *Ledger) applyApproveCollection(caller sft.Principal, a *sft.ApproveCollectionArg, now uint64, dry bool, staged *[]*blocklog.Block) (uint64, *sft.ApproveCollectionError) {
	s := l.settings()
	if e := a.ValidateTiming(now, s); e != nil {
		return 0, e
	}
	var key []byte
	if a.Info.CreatedAtTime != 0 {
		k, err := DedupKey(caller, blocklog.KindApproveCollection, a)
		if err != nil {
			return 0, &sft.ApproveCollectionError{Code: sft.ApproveCollectionErrGeneric, Message: err.Error()}
		}
		if index, ok := l.dedup.Check(k); ok {
			return 0, &sft.ApproveCollectionError{Code: sft.ApproveCollectionErrDuplicate, DuplicateOf: index}
		}
		key = k
	}
	if e := a.ValidateSanity(caller, now, s); e != nil {
		return 0, e
	}
	grantor := a.Info.Grantor(caller)
	max := int(s.MaxApprovalsPerTokenOrCollection)
	if dry {
		if err := l.approvals.CanApproveCollection(grantor, a.Info.Spender, now, max); err != nil {
			return 0, &sft.ApproveCollectionError{Code: sft.ApproveCollectionErrExceedsApprovalLimit, Message: err.Error()}
		}
		return 0, nil
	}

	if _, err := l.approvals.ApproveCollection(grantor, &a.Info, now, max); err != nil {
		return 0, &sft.ApproveCollectionError{Code: sft.ApproveCollectionErrExceedsApprovalLimit, Message: err.Error()}
	}
	spender := a.Info.Spender
	index := stage(l, staged, &blocklog.Block{Kind: blocklog.KindApproveCollection, Timestamp: now, Tx: blocklog.Transaction{
		From:      &grantor,
		Spender:   &spender,
		ExpiresAt: a.Info.ExpiresAt,
		Memo:      a.Info.Memo,
		Timestamp: a.Info.CreatedAtTime,
	}})
	if key != nil {
		l.dedup.Record(key, index, a.Info.CreatedAtTime, now, l.horizon())
	}
	return index, nil
}

// RevokeTokenApprovals withdraws token scoped approvals, one result per
// item.
func (l *Ledger) RevokeTokenApprovals(caller sft.Principal, args []*sft.RevokeTokenApprovalArg) ([]sft.RevokeTokenApprovalResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.settings()
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) > int(s.MaxUpdateBatchSize) {
		return nil, &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrGenericBatch,
			Message: fmt.Sprintf("batch size %d over limit %d", len(args), s.MaxUpdateBatchSize)}
	}
	now := l.now()
	var staged []*blocklog.Block
	results, aborted := evaluate(args, s.AtomicBatchTransfers,
		func(a *sft.RevokeTokenApprovalArg, dry bool) (uint64, *sft.RevokeTokenApprovalError) {
			return l.applyRevokeToken(caller, a, now, dry, &staged)
		},
		func() *sft.RevokeTokenApprovalError {
			return &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrGenericBatch, Message: "atomic batch aborted"}
		})
	if aborted {
		l.restore()
		return results, nil
	}
	if len(staged) > 0 {
		if err := l.commit(staged); err != nil {
			return nil, &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrGenericBatch, Message: err.Error()}
		}
	}
	return results, nil
}

func revokeTokenErr(err error) *sft.RevokeTokenApprovalError {
	switch {
	case errors.Is(err, ErrApprovalDoesNotExist):
		return &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrApprovalDoesNotExist}
	case errors.Is(err, ErrTooManyRevocations):
		return &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrTooManyRevocations, Message: err.Error()}
	default:
		return &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrGeneric, Message: err.Error()}
	}
}

func (l *Ledger) applyRevokeToken(caller sft.Principal, a *sft.RevokeTokenApprovalArg, now uint64, dry bool, staged *[]*blocklog.Block) (uint64, *sft.RevokeTokenApprovalError) {
	s := l.settings()
	if e := a.ValidateTiming(now, s); e != nil {
		return 0, e
	}
	var key []byte
	if a.CreatedAtTime != 0 {
		k, err := DedupKey(caller, blocklog.KindRevokeToken, a)
		if err != nil {
			return 0, &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrGeneric, Message: err.Error()}
		}
		if index, ok := l.dedup.Check(k); ok {
			return 0, &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrDuplicate, DuplicateOf: index}
		}
		key = k
	}
	owner, ok := l.ownership.OwnerOf(a.TokenID)
	if !ok {
		return 0, &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrNonExistingTokenID}
	}
	grantor := a.Grantor(caller)
	if !owner.Eq(grantor) {
		return 0, &sft.RevokeTokenApprovalError{Code: sft.RevokeTokenApprovalErrUnauthorized}
	}
	if e := a.ValidateSanity(caller, s); e != nil {
		return 0, e
	}
	max := int(s.MaxRevokeApprovals)
	if dry {
		if err := l.approvals.CheckRevokeToken(grantor, a.TokenID, a.Spender, now, max); err != nil {
			return 0, revokeTokenErr(err)
		}
		return 0, nil
	}

	if _, err := l.approvals.RevokeToken(grantor, a.TokenID, a.Spender, now, max); err != nil {
		return 0, revokeTokenErr(err)
	}
	index := stage(l, staged, &blocklog.Block{Kind: blocklog.KindRevokeToken, Timestamp: now, Tx: blocklog.Transaction{
		TokenID:   uint64(a.TokenID),
		From:      &grantor,
		Spender:   a.Spender,
		Memo:      a.Memo,
		Timestamp: a.CreatedAtTime,
	}})
	if key != nil {
		l.dedup.Record(key, index, a.CreatedAtTime, now, l.horizon())
	}
	return index, nil
}

// RevokeCollectionApprovals withdraws collection scoped approvals, one
// result per item.
func (l *Ledger) RevokeCollectionApprovals(caller sft.Principal, args []*sft.RevokeCollectionApprovalArg) ([]sft.RevokeCollectionApprovalResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.settings()
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) > int(s.MaxUpdateBatchSize) {
		return nil, &sft.RevokeCollectionApprovalError{Code: sft.RevokeCollectionApprovalErrGenericBatch,
			Message: fmt.Sprintf("batch size %d over limit %d", len(args), s.MaxUpdateBatchSize)}
	}
	now := l.now()
	var staged []*blocklog.Block
	results, aborted := evaluate(args, s.AtomicBatchTransfers,
		func(a *sft.RevokeCollectionApprovalArg, dry bool) (uint64, *sft.RevokeCollectionApprovalError) {
			return l.applyRevokeCollection(caller, a, now, dry, &staged)
		},
		func() *sft.RevokeCollectionApprovalError {
			return &sft.RevokeCollectionApprovalError{Code: sft.RevokeCollectionApprovalErrGenericBatch, Message: "atomic batch aborted"}
		})
	if aborted {
		l.restore()
		return results, nil
	}
	if len(staged) > 0 {
		if err := l.commit(staged); err != nil {
			return nil, &sft.RevokeCollectionApprovalError{Code: sft.RevokeCollectionApprovalErrGenericBatch, Message: err.Error()}
		}
	}
	return results, nil
}

func revokeCollectionErr(err error) *sft.RevokeCollectionApprovalError {
	switch {
	case errors.Is(err, ErrApprovalDoesNotExist):
		return &sft.RevokeCollectionApprovalError{Code: sft.RevokeCollectionApprovalErrApprovalDoesNotExist}
	case errors.Is(err, ErrTooManyRevocations):
		return &sft.RevokeCollectionApprovalError{Code: sft.RevokeCollectionApprovalErrTooManyRevocations, Message: err.Error()}
	default:
		return &sft.RevokeCollectionApprovalError{Code: sft.RevokeCollectionApprovalErrGeneric, Message: err.Error()}
	}
}

func (l *Ledger) applyRevokeCollection(caller sft.Principal, a *sft.RevokeCollectionApprovalArg, now uint64, dry bool, staged *[]*blocklog.Block) (uint64, *sft.RevokeCollectionApprovalError) {
	s := l.settings()
	if e := a.ValidateTiming(now, s); e != nil {
		return 0, e
	}
	var key []byte
	if a.CreatedAtTime != 0 {
		k, err := DedupKey(caller, blocklog.KindRevokeCollection, a)
		if err != nil {
			return 0, &sft.RevokeCollectionApprovalError{Code: sft.RevokeCollectionApprovalErrGeneric, Message: err.Error()}
		}
		if index, ok := l.dedup.Check(k); ok {
			return 0, &sft.RevokeCollectionApprovalError{Code: sft.RevokeCollectionApprovalErrDuplicate, DuplicateOf: index}
		}
		key = k
	}
	if e := a.ValidateSanity(caller, s); e != nil {
		return 0, e
	}
	grantor := a.Grantor(caller)
	max := int(s.MaxRevokeApprovals)
	if dry {
		if err := l.approvals.CheckRevokeCollection(grantor, a.Spender, now, max); err != nil {
			return 0, revokeCollectionErr(err)
		}
		return 0, nil
	}

	if _, err := l.approvals.RevokeCollection(grantor, a.Spender, now, max); err != nil {
		return 0, revokeCollectionErr(err)
	}
	index := stage(l, staged, &blocklog.Block{Kind: blocklog.KindRevokeCollection, Timestamp: now, Tx: blocklog.Transaction{
		From:      &grantor,
		Spender:   a.Spender,
		Memo:      a.Memo,
		Timestamp: a.CreatedAtTime,
	}})
	if key != nil {
		l.dedup.Record(key, index, a.CreatedAtTime, now, l.horizon())
	}
	return index, nil
}
