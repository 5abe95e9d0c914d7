package ledger

import (
	"errors"
	"fmt"

	"github.com/ldclabs/ic-sft/cbor"
	"github.com/ldclabs/ic-sft/hash"
	"github.com/ldclabs/ic-sft/sft"
)

// challengeTTL bounds how long an issued commitment stays redeemable.
const challengeTTL = 10 * 60 * sft.Second

// Commitment binds asset content to its author before the content is
// accepted on chain. It is consumed exactly once.
type Commitment struct {
	_         struct{} `cbor:",toarray"`
	AssetHash []byte
	Author    sft.Principal
	IssuedAt  uint64
	Token     []byte
}

type challengeToken struct {
	_        struct{} `cbor:",toarray"`
	IssuedAt uint64
	Mac      []byte
}

// Challenges issues and consumes asset commitments. Tokens are HMACs over
// (author, asset hash, issue time) under a per collection salt, so they
// cannot be forged for a different author against the same content.
type Challenges struct {
	salt     []byte
	pending  map[string]*Commitment // token bytes -> commitment
	byPair   map[string]string      // author|hash -> token bytes
	consumed map[string]uint64      // token bytes -> consume time
}

func NewChallenges(salt []byte) *Challenges {
	return &Challenges{
		salt:     salt,
		pending:  make(map[string]*Commitment),
		byPair:   make(map[string]string),
		consumed: make(map[string]uint64),
	}
}

func pairKey(assetHash []byte, author sft.Principal) string {
	return string(author) + "|" + string(assetHash)
}

func (c *Challenges) mint(assetHash []byte, author sft.Principal, now uint64) ([]byte, error) {
	pair, err := cbor.Marshal([]any{[]byte(author), assetHash})
	if err != nil {
		return nil, fmt.Errorf("encode challenge pair: %w", err)
	}
	ts, err := cbor.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("encode challenge time: %w", err)
	}
	mac := hash.Mac256(c.salt, pair, ts)
	token, err := cbor.Marshal(&challengeToken{IssuedAt: now, Mac: mac[:16]})
	if err != nil {
		return nil, fmt.Errorf("encode challenge token: %w", err)
	}
	return token, nil
}

// Issue returns the commitment token for (assetHash, author). Issuing again
// for the same pair while the first commitment is still pending returns the
// same token without creating a second record.
func (c *Challenges) Issue(assetHash []byte, author sft.Principal, now uint64) ([]byte, error) {
	if len(assetHash) != hash.Size {
		return nil, fmt.Errorf("%w: asset hash must be %d bytes", ErrInvalidArgument, hash.Size)
	}
	if author.IsZero() || author.IsAnonymous() {
		return nil, fmt.Errorf("%w: invalid author", ErrInvalidArgument)
	}

	key := pairKey(assetHash, author)
	if tok, ok := c.byPair[key]; ok {
		cm := c.pending[tok]
		if cm != nil && now <= cm.IssuedAt+challengeTTL {
			return append([]byte(nil), cm.Token...), nil
		}
		delete(c.pending, tok)
		delete(c.byPair, key)
	}

	token, err := c.mint(assetHash, author, now)
	if err != nil {
		return nil, err
	}
	c.pending[string(token)] = &Commitment{
		AssetHash: append([]byte(nil), assetHash...),
		Author:    author,
		IssuedAt:  now,
		Token:     token,
	}
	c.byPair[key] = string(token)
	return append([]byte(nil), token...), nil
}

// Peek resolves a commitment token without redeeming it.
func (c *Challenges) Peek(token []byte, now uint64) (*Commitment, error) {
	cm, ok := c.pending[string(token)]
	if !ok {
		if _, was := c.consumed[string(token)]; was {
			return nil, ErrChallengeConsumed
		}
		return nil, fmt.Errorf("%w: unknown challenge", ErrNotFound)
	}
	if now > cm.IssuedAt+challengeTTL {
		return nil, ErrChallengeExpired
	}

	// integrity check against a tampered pending store
	want, err := c.mint(cm.AssetHash, cm.Author, cm.IssuedAt)
	if err != nil {
		return nil, err
	}
	if string(want) != string(token) {
		return nil, fmt.Errorf("%w: challenge does not verify", ErrInvalidArgument)
	}
	return cm, nil
}

// Consume redeems a commitment token, deleting it so a second redemption of
// the same token fails with ErrChallengeConsumed.
func (c *Challenges) Consume(token []byte, now uint64) (*Commitment, error) {
	c.prune(now)
	cm, err := c.Peek(token, now)
	if err != nil {
		if errors.Is(err, ErrChallengeExpired) {
			if stale, ok := c.pending[string(token)]; ok {
				delete(c.pending, string(token))
				delete(c.byPair, pairKey(stale.AssetHash, stale.Author))
			}
		}
		return nil, err
	}

	delete(c.pending, string(token))
	delete(c.byPair, pairKey(cm.AssetHash, cm.Author))
	c.consumed[string(token)] = now
	return cm, nil
}

// prune drops consumed markers older than the token lifetime; replays that
// late fail the pending lookup anyway.
func (c *Challenges) prune(now uint64) {
	for tok, at := range c.consumed {
		if now > at+challengeTTL {
			delete(c.consumed, tok)
		}
	}
}

// HasPendingAsset reports whether an unexpired commitment exists for the
// asset hash under any author.
func (c *Challenges) HasPendingAsset(assetHash []byte, now uint64) bool {
	for _, cm := range c.pending {
		if now <= cm.IssuedAt+challengeTTL && string(cm.AssetHash) == string(assetHash) {
			return true
		}
	}
	return false
}

// Pending returns the open commitments for snapshotting.
func (c *Challenges) Pending() []*Commitment {
	out := make([]*Commitment, 0, len(c.pending))
	for _, cm := range c.pending {
		out = append(out, cm)
	}
	return out
}

func (c *Challenges) restore(cm *Commitment) {
	c.pending[string(cm.Token)] = cm
	c.byPair[pairKey(cm.AssetHash, cm.Author)] = string(cm.Token)
}
