package ledger

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ldclabs/ic-sft/blocklog"
	"github.com/ldclabs/ic-sft/clock"
	"github.com/ldclabs/ic-sft/sft"
	"github.com/ldclabs/ic-sft/storage"
	"github.com/ldclabs/ic-sft/util"
)

// Ledger owns every state component and is the only writer to any of them.
// One mutex gives call granularity atomicity: queries observe the state
// before or after a mutating call, never in between.
type Ledger struct {
	mu     sync.RWMutex
	store  storage.Store
	clock  clock.Clock
	logger logrus.FieldLogger

	col        *Collection
	registry   *Registry
	ownership  *Ownership
	approvals  *Approvals
	challenges *Challenges
	dedup      *Dedup
	log        *blocklog.Log
	archive    *blocklog.Manager
}

// Option configures a Ledger at Open time.
type Option func(*Ledger)

// WithClock substitutes the time source.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithLogger substitutes the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithArchiver enables block archival: once more than threshold blocks are
// retained locally, ArchiveTick moves them out in chunks.
func WithArchiver(a blocklog.Archiver, threshold, chunk uint64) Option {
	return func(l *Ledger) {
		l.archive = blocklog.NewManager(l.log, a, threshold, chunk, l.logger)
	}
}

// Open loads the ledger from store, or installs a fresh collection owned by
// author when no state is persisted yet.
func Open(store storage.Store, author sft.Principal, arg *sft.InitArg, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:  store,
		clock:  clock.Wall(),
		logger: logrus.StandardLogger(),
	}
	log, err := blocklog.OpenLog(store)
	if err != nil {
		return nil, err
	}
	l.log = log

	loaded, err := l.loadState()
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(l)
	}
	if loaded {
		l.logger.WithFields(logrus.Fields{
			"classes": len(l.registry.classes),
			"tokens":  l.ownership.Len(),
			"blocks":  l.log.Length(),
		}).Info("ledger state loaded")
		return l, nil
	}

	if author.IsZero() || author.IsAnonymous() {
		return nil, fmt.Errorf("%w: invalid collection author", ErrInvalidArgument)
	}
	if arg == nil {
		arg = &sft.InitArg{}
	}
	salt := make([]byte, 32)
	if _, err = rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate challenge salt: %w", err)
	}
	now := l.now()
	l.col = NewCollection(arg, author, now)
	l.registry = NewRegistry()
	l.ownership = NewOwnership()
	l.approvals = NewApprovals()
	l.challenges = NewChallenges(salt)
	l.dedup = NewDedup()
	if err = l.commit(nil); err != nil {
		return nil, err
	}
	l.logger.WithField("name", l.col.Name).Info("ledger installed")
	return l, nil
}

func (l *Ledger) now() uint64 {
	return uint64(l.clock.Now().UnixNano())
}

func (l *Ledger) settings() *sft.Settings {
	return &l.col.Settings
}

// commit persists the staged blocks and the full state snapshot in one
// atomic write. On failure the in memory state is reloaded from the last
// committed snapshot, so the call is observed as not having happened.
func (l *Ledger) commit(blocks []*blocklog.Block) error {
	extra, err := l.stateBatch()
	if err != nil {
		l.rollback(err)
		return err
	}
	if _, err = l.log.AppendBatch(blocks, extra); err != nil {
		l.rollback(err)
		return err
	}
	return nil
}

func (l *Ledger) rollback(cause error) {
	l.logger.WithError(cause).Warn("commit failed, restoring last persisted state")
	l.restore()
}

// restore reloads the last persisted snapshot, discarding any uncommitted
// in memory mutations.
func (l *Ledger) restore() {
	if _, err := l.loadState(); err != nil {
		l.logger.WithError(err).Error("state restore failed")
	}
}

// stage assigns the next block index without persisting yet; the block is
// chained and written by commit.
func stage(l *Ledger, staged *[]*blocklog.Block, b *blocklog.Block) uint64 {
	index := l.log.Length() + uint64(len(*staged))
	*staged = append(*staged, b)
	return index
}

// ArchiveTick hands a chunk of the oldest blocks to the configured archiver
// when the retained length is over the threshold. The hand off itself runs
// on a captured copy without holding the lock, so a stalled archiver never
// blocks transfers; local deletion happens only after acknowledgment.
func (l *Ledger) ArchiveTick() error {
	if l.archive == nil {
		return nil
	}
	l.mu.RLock()
	var chunk blocklog.Chunk
	var err error
	if l.archive.ShouldArchive() {
		chunk, err = l.archive.NextChunk()
	}
	l.mu.RUnlock()
	if err != nil || len(chunk.Blocks) == 0 {
		return err
	}
	archiveID, err := l.archive.HandOff(chunk)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.archive.Commit(chunk, archiveID)
}

// --- queries ---

// CollectionMetadata returns the collection configuration in key value
// form.
func (l *Ledger) CollectionMetadata() sft.Map {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.col.Metadata(l.registry.TotalSupply())
}

// Settings returns a copy of the current limits.
func (l *Ledger) Settings() sft.Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.col.Settings
}

// TotalSupply is the number of minted instances.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.registry.TotalSupply()
}

// OwnerOf returns the holder of the instance.
func (l *Ledger) OwnerOf(id sft.TokenID) (sft.Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ownership.OwnerOf(id)
}

// BalanceOf counts the instances held by each account, positionally.
func (l *Ledger) BalanceOf(accounts []sft.Account) ([]uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(accounts) > int(l.col.Settings.MaxQueryBatchSize) {
		return nil, fmt.Errorf("%w: batch size %d over limit %d",
			ErrInvalidArgument, len(accounts), l.col.Settings.MaxQueryBatchSize)
	}
	return util.TransformSlice(accounts, l.ownership.BalanceOf), nil
}

// TokensOf pages over the account's instances, ascending. cursor is the
// last seen id (exclusive), zero to start; take zero means the default
// page size.
func (l *Ledger) TokensOf(acc sft.Account, cursor sft.TokenID, take uint64) []sft.TokenID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ownership.InstancesOf(acc, cursor, int(l.col.Settings.TakeValue(take)))
}

// Tokens pages over every instance id, ascending.
func (l *Ledger) Tokens(cursor sft.TokenID, take uint64) []sft.TokenID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.registry.Tokens(cursor, int(l.col.Settings.TakeValue(take)))
}

// TokenMetadata returns the metadata map for each requested instance, nil
// for instances that do not exist.
func (l *Ledger) TokenMetadata(ids []sft.TokenID) ([]sft.Map, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(ids) > int(l.col.Settings.MaxQueryBatchSize) {
		return nil, fmt.Errorf("%w: batch size %d over limit %d",
			ErrInvalidArgument, len(ids), l.col.Settings.MaxQueryBatchSize)
	}
	out := make([]sft.Map, len(ids))
	for i, id := range ids {
		if !l.registry.Exists(id) {
			continue
		}
		c, err := l.registry.Get(id.Class())
		if err != nil {
			continue
		}
		out[i] = c.TokenMetadata()
	}
	return out, nil
}

// GetClass returns the class record.
func (l *Ledger) GetClass(id sft.ClassID) (*TokenClass, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.registry.Get(id)
}

// IsApproved answers, positionally, whether each spender holds an active
// approval from the caller's account for the given instance.
func (l *Ledger) IsApproved(caller sft.Principal, args []*sft.IsApprovedArg) ([]bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(args) > int(l.col.Settings.MaxQueryBatchSize) {
		return nil, fmt.Errorf("%w: batch size %d over limit %d",
			ErrInvalidArgument, len(args), l.col.Settings.MaxQueryBatchSize)
	}
	now := l.now()
	return util.TransformSlice(args, func(a *sft.IsApprovedArg) bool {
		grantor := sft.Account{Owner: caller, Subaccount: a.FromSubaccount}
		return l.approvals.IsActive(grantor, a.Spender, a.TokenID, now)
	}), nil
}

// TokenApprovals lists the active approvals on the instance.
func (l *Ledger) TokenApprovals(id sft.TokenID) []*Approval {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.approvals.TokenApprovalsOf(id, l.now())
}

// CollectionApprovals lists the grantor's active collection approvals.
func (l *Ledger) CollectionApprovals(grantor sft.Account) []*Approval {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.approvals.CollectionApprovalsOf(grantor, l.now())
}

// BlockRange addresses a slice of the log.
type BlockRange struct {
	Start uint64
	Count uint64
}

// GetBlocks reads the requested ranges from the local log. Ranges whose
// prefix has been archived come back with the pointer describing where the
// missing blocks live.
func (l *Ledger) GetBlocks(ranges []BlockRange) ([]blocklog.Record, []blocklog.ArchivePointer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	budget := uint64(l.col.Settings.MaxQueryBatchSize)
	var records []blocklog.Record
	var redirects []blocklog.ArchivePointer
	for _, r := range ranges {
		count := r.Count
		if count > budget {
			count = budget
		}
		recs, redirect, err := l.log.GetRange(r.Start, count)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, recs...)
		if redirect != nil {
			redirects = append(redirects, *redirect)
		}
		budget -= uint64(len(recs))
		if budget == 0 {
			break
		}
	}
	return records, redirects, nil
}

// GetTipCertificate returns the certified tip, nil for an empty log.
func (l *Ledger) GetTipCertificate() *blocklog.Certificate {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log.TipCertificate()
}

// GetArchives lists the recorded archive pointers whose range reaches from
// or beyond.
func (l *Ledger) GetArchives(from uint64) []blocklog.ArchivePointer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log.Archives(from)
}

// SupportedBlockTypes lists the block kinds the log can contain.
func (l *Ledger) SupportedBlockTypes() []string {
	return blocklog.SupportedKinds()
}
