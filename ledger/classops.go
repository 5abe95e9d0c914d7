package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ldclabs/ic-sft/hash"
	"github.com/ldclabs/ic-sft/sft"
)

// IssueChallenge returns the commitment token binding the asset content
// hash to its author. The author requests it for themselves; managers may
// request on behalf of any author. Issuing is idempotent per pair while the
// commitment is pending.
func (l *Ledger) IssueChallenge(caller sft.Principal, arg *sft.ChallengeArg) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !caller.Eq(arg.Author) && !l.col.IsManager(caller) {
		return nil, fmt.Errorf("%w: challenge author must be the caller", ErrUnauthorized)
	}
	token, err := l.challenges.Issue(arg.AssetHash, arg.Author, l.now())
	if err != nil {
		return nil, err
	}
	if err = l.commit(nil); err != nil {
		return nil, err
	}
	return token, nil
}

// CreateClass registers a new token class on the manager path. A presented
// challenge is consumed and verified; without one, creation proceeds unless
// someone holds a pending commitment for the same asset content.
func (l *Ledger) CreateClass(caller sft.Principal, arg *sft.CreateClassArg) (sft.ClassID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.col.IsManager(caller) {
		return 0, fmt.Errorf("%w: caller is not a collection manager", ErrUnauthorized)
	}
	now := l.now()
	if err := l.registry.CheckCreate(arg); err != nil {
		return 0, err
	}
	if len(arg.Challenge) > 0 {
		if err := l.consumeChallengeFor(arg, now); err != nil {
			return 0, err
		}
	} else {
		assetHash := hash.Sum256(arg.AssetContent)
		if l.challenges.HasPendingAsset(assetHash[:], now) {
			return 0, fmt.Errorf("%w: asset is committed to a pending challenge", ErrDuplicateAsset)
		}
	}
	return l.createClass(arg, now)
}

// CreateClassByChallenge registers a new token class on the author path:
// the challenge is mandatory and the caller must be the committed author.
func (l *Ledger) CreateClassByChallenge(caller sft.Principal, arg *sft.CreateClassArg) (sft.ClassID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(arg.Challenge) == 0 {
		return 0, fmt.Errorf("%w: challenge is required", ErrInvalidArgument)
	}
	if !caller.Eq(arg.Author) {
		return 0, fmt.Errorf("%w: caller must be the class author", ErrUnauthorized)
	}
	now := l.now()
	if err := l.registry.CheckCreate(arg); err != nil {
		return 0, err
	}
	if err := l.consumeChallengeFor(arg, now); err != nil {
		return 0, err
	}
	return l.createClass(arg, now)
}

// consumeChallengeFor checks the presented challenge binds exactly this
// asset content and author, then redeems it. A mismatched presentation does
// not burn the commitment.
func (l *Ledger) consumeChallengeFor(arg *sft.CreateClassArg, now uint64) error {
	cm, err := l.challenges.Peek(arg.Challenge, now)
	if err != nil {
		return err
	}
	assetHash := hash.Sum256(arg.AssetContent)
	if string(cm.AssetHash) != string(assetHash[:]) {
		return fmt.Errorf("%w: challenge commits different asset content", ErrInvalidArgument)
	}
	if !cm.Author.Eq(arg.Author) {
		return fmt.Errorf("%w: challenge commits a different author", ErrUnauthorized)
	}
	_, err = l.challenges.Consume(arg.Challenge, now)
	return err
}

func (l *Ledger) createClass(arg *sft.CreateClassArg, now uint64) (sft.ClassID, error) {
	c, err := l.registry.Create(arg, now)
	if err != nil {
		return 0, err
	}
	if err = l.commit(nil); err != nil {
		return 0, err
	}
	l.logger.WithFields(logrus.Fields{"class": c.ID, "name": c.Name}).Info("token class created")
	return c.ID, nil
}

// UpdateClass applies a partial patch to class metadata. Allowed for the
// class author and collection managers.
func (l *Ledger) UpdateClass(caller sft.Principal, arg *sft.UpdateClassArg) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.registry.Update(arg, caller, l.col.IsManager(caller), l.now()); err != nil {
		return err
	}
	return l.commit(nil)
}

// UpdateCollection applies a partial patch to the collection configuration.
// Managers only.
func (l *Ledger) UpdateCollection(caller sft.Principal, arg *sft.UpdateCollectionArg) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.col.IsManager(caller) {
		return fmt.Errorf("%w: caller is not a collection manager", ErrUnauthorized)
	}
	if err := l.col.UpdateConfig(arg, l.registry.TotalSupply(), l.now()); err != nil {
		return err
	}
	return l.commit(nil)
}

// SetManagers replaces the manager set. Managers only.
func (l *Ledger) SetManagers(caller sft.Principal, managers []sft.Principal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.col.IsManager(caller) {
		return fmt.Errorf("%w: caller is not a collection manager", ErrUnauthorized)
	}
	l.col.SetManagers(managers, l.now())
	return l.commit(nil)
}

// SetMinters replaces the minter set. Managers only.
func (l *Ledger) SetMinters(caller sft.Principal, minters []sft.Principal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.col.IsManager(caller) {
		return fmt.Errorf("%w: caller is not a collection manager", ErrUnauthorized)
	}
	l.col.SetMinters(minters, l.now())
	return l.commit(nil)
}
