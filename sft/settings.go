package sft

// Second is one second expressed in the ledger time unit (nanoseconds).
const Second uint64 = 1_000_000_000

// Settings holds the collection-wide tunable limits. Window durations are
// kept in seconds, matching the contract boundary; timestamps elsewhere are
// nanoseconds.
type Settings struct {
	_                                struct{} `cbor:",toarray"`
	MaxQueryBatchSize                uint16
	MaxUpdateBatchSize               uint16
	DefaultTakeValue                 uint16
	MaxTakeValue                     uint16
	MaxMemoSize                      uint16
	AtomicBatchTransfers             bool
	TxWindow                         uint64 // seconds
	PermittedDrift                   uint64 // seconds
	MaxApprovalsPerTokenOrCollection uint16
	MaxRevokeApprovals               uint16
}

// DriftNanos returns the permitted clock drift in nanoseconds.
func (s *Settings) DriftNanos() uint64 { return s.PermittedDrift * Second }

// WindowNanos returns the deduplication window in nanoseconds.
func (s *Settings) WindowNanos() uint64 { return s.TxWindow * Second }

// TakeValue clamps a caller-supplied page size, substituting the default
// when absent (zero).
func (s *Settings) TakeValue(take uint64) uint16 {
	if take == 0 {
		return s.DefaultTakeValue
	}
	if take > uint64(s.MaxTakeValue) {
		return s.MaxTakeValue
	}
	return uint16(take)
}

// InitArg configures a new collection. Zero-valued limits fall back to the
// defaults documented on DefaultSettings.
type InitArg struct {
	Symbol               string
	Name                 string
	Description          string
	Logo                 string
	AssetsOrigin         string
	SupplyCap            uint64 // 0 = unlimited
	MaxQueryBatchSize    uint16
	MaxUpdateBatchSize   uint16
	DefaultTakeValue     uint16
	MaxTakeValue         uint16
	MaxMemoSize          uint16
	AtomicBatchTransfers bool
	TxWindow             uint64 // seconds
	PermittedDrift       uint64 // seconds

	MaxApprovalsPerTokenOrCollection uint16
	MaxRevokeApprovals               uint16
}

// DefaultSettings returns the limits applied when InitArg leaves them zero:
// batch sizes 100, take 20/200, memo 32 bytes, non-atomic batches, one hour
// deduplication window, two minutes drift, 30 approvals and revocations.
func DefaultSettings() Settings {
	return Settings{
		MaxQueryBatchSize:                100,
		MaxUpdateBatchSize:               100,
		DefaultTakeValue:                 20,
		MaxTakeValue:                     200,
		MaxMemoSize:                      32,
		AtomicBatchTransfers:             false,
		TxWindow:                         60 * 60,
		PermittedDrift:                   2 * 60,
		MaxApprovalsPerTokenOrCollection: 30,
		MaxRevokeApprovals:               30,
	}
}

// Settings resolves the argument against the defaults.
func (a *InitArg) Settings() Settings {
	s := DefaultSettings()
	if a.MaxQueryBatchSize != 0 {
		s.MaxQueryBatchSize = a.MaxQueryBatchSize
	}
	if a.MaxUpdateBatchSize != 0 {
		s.MaxUpdateBatchSize = a.MaxUpdateBatchSize
	}
	if a.DefaultTakeValue != 0 {
		s.DefaultTakeValue = a.DefaultTakeValue
	}
	if a.MaxTakeValue != 0 {
		s.MaxTakeValue = a.MaxTakeValue
	}
	if a.MaxMemoSize != 0 {
		s.MaxMemoSize = a.MaxMemoSize
	}
	s.AtomicBatchTransfers = a.AtomicBatchTransfers
	if a.TxWindow != 0 {
		s.TxWindow = a.TxWindow
	}
	if a.PermittedDrift != 0 {
		s.PermittedDrift = a.PermittedDrift
	}
	if a.MaxApprovalsPerTokenOrCollection != 0 {
		s.MaxApprovalsPerTokenOrCollection = a.MaxApprovalsPerTokenOrCollection
	}
	if a.MaxRevokeApprovals != 0 {
		s.MaxRevokeApprovals = a.MaxRevokeApprovals
	}
	return s
}

// UpdateCollectionArg is a partial patch over collection metadata and
// settings; nil fields are left unchanged.
type UpdateCollectionArg struct {
	Name                 *string
	Description          *string
	Logo                 *string
	AssetsOrigin         *string
	SupplyCap            *uint64
	MaxQueryBatchSize    *uint16
	MaxUpdateBatchSize   *uint16
	DefaultTakeValue     *uint16
	MaxTakeValue         *uint16
	MaxMemoSize          *uint16
	AtomicBatchTransfers *bool
	TxWindow             *uint64
	PermittedDrift       *uint64

	MaxApprovalsPerTokenOrCollection *uint16
	MaxRevokeApprovals               *uint16
}
