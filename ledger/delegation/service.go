// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger/checkpoints"
	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/stake"
	"github.com/vechain/stakeledger/storage"
)

var (
	slotDelegatees = storage.Slot("delegatees")
	slotFlags      = storage.Slot("delegation-flags")
	slotNonces     = storage.Slot("delegation-nonces")

	logger = log.WithContext("pkg", "delegation")
)

// PowerChange is the new head power of an account.
type PowerChange struct {
	Account stake.Address
	Type    stake.PowerType
	Power   *uint256.Int
}

// Service keeps who holds the power of each account and pushes power
// movements into the checkpoint store.
type Service struct {
	delegatees  *storage.Mapping[checkpoints.Key, stake.Address]
	flags       *storage.Mapping[stake.Address, uint8]
	nonces      *storage.Mapping[stake.Address, uint64]
	checkpoints *checkpoints.Service
}

func New(sctx *storage.Context, cps *checkpoints.Service) *Service {
	return &Service{
		delegatees:  storage.NewMapping[checkpoints.Key, stake.Address](sctx, slotDelegatees),
		flags:       storage.NewMapping[stake.Address, uint8](sctx, slotFlags),
		nonces:      storage.NewMapping[stake.Address, uint64](sctx, slotNonces),
		checkpoints: cps,
	}
}

// Delegatee returns the holder of the power of account, account itself by default.
func (s *Service) Delegatee(account stake.Address, typ stake.PowerType) (stake.Address, error) {
	if !typ.Valid() {
		return stake.Address{}, reverts.ErrInvalidPowerType
	}
	d, err := s.delegatees.Get(checkpoints.Key{Account: account, Type: typ})
	if err != nil {
		return stake.Address{}, errors.Wrap(err, "failed to get delegatee")
	}
	if d.IsZero() {
		return account, nil
	}
	return d, nil
}

// IsDelegating reports whether account delegated power of typ away.
func (s *Service) IsDelegating(account stake.Address, typ stake.PowerType) (bool, error) {
	flags, err := s.flags.Get(account)
	if err != nil {
		return false, errors.Wrap(err, "failed to get delegation flags")
	}
	return flags&(1<<typ) != 0, nil
}

func (s *Service) setDelegatee(delegator, delegatee stake.Address, typ stake.PowerType) error {
	key := checkpoints.Key{Account: delegator, Type: typ}
	flags, err := s.flags.Get(delegator)
	if err != nil {
		return errors.Wrap(err, "failed to get delegation flags")
	}
	if delegatee == delegator {
		s.delegatees.Delete(key)
		flags &^= 1 << typ
	} else {
		if err := s.delegatees.Set(key, delegatee); err != nil {
			return errors.Wrap(err, "failed to set delegatee")
		}
		flags |= 1 << typ
	}
	if flags == 0 {
		s.flags.Delete(delegator)
		return nil
	}
	return s.flags.Set(delegator, flags)
}

// DelegateByType hands the power of typ of delegator over to delegatee,
// moving balance from the previous holder. Delegating to the current holder
// changes nothing and returns changed false.
func (s *Service) DelegateByType(delegator, delegatee stake.Address, typ stake.PowerType, balance *uint256.Int, block uint64) (bool, []PowerChange, error) {
	if delegatee.IsZero() {
		return false, nil, reverts.ErrInvalidDelegatee
	}
	previous, err := s.Delegatee(delegator, typ)
	if err != nil {
		return false, nil, err
	}
	if previous == delegatee {
		return false, nil, nil
	}
	if err := s.setDelegatee(delegator, delegatee, typ); err != nil {
		return false, nil, err
	}
	changes, err := s.MovePower(previous, delegatee, balance, typ, block)
	if err != nil {
		return false, nil, err
	}
	logger.Debug("delegatee changed", "delegator", delegator, "delegatee", delegatee, "type", typ)
	return true, changes, nil
}

// MovePower moves amount of typ power from one holder to another.
// A zero address side is skipped, which models mint and burn.
func (s *Service) MovePower(from, to stake.Address, amount *uint256.Int, typ stake.PowerType, block uint64) ([]PowerChange, error) {
	if from == to || amount.IsZero() {
		return nil, nil
	}
	var changes []PowerChange
	if !from.IsZero() {
		key := checkpoints.Key{Account: from, Type: typ}
		prev, err := s.checkpoints.Latest(key)
		if err != nil {
			return nil, err
		}
		next, underflow := new(uint256.Int).SubOverflow(prev, amount)
		if underflow {
			return nil, reverts.Newf(reverts.KindOverflow, "power below zero")
		}
		if err := s.checkpoints.Write(key, block, next); err != nil {
			return nil, err
		}
		changes = append(changes, PowerChange{from, typ, next})
	}
	if !to.IsZero() {
		key := checkpoints.Key{Account: to, Type: typ}
		prev, err := s.checkpoints.Latest(key)
		if err != nil {
			return nil, err
		}
		next, overflow := new(uint256.Int).AddOverflow(prev, amount)
		if overflow {
			return nil, reverts.ErrOverflow
		}
		if err := s.checkpoints.Write(key, block, next); err != nil {
			return nil, err
		}
		changes = append(changes, PowerChange{to, typ, next})
	}
	return changes, nil
}

// OnBalanceChange moves amount of both power types between the holders of
// from and to. A zero from mints, a zero to burns.
func (s *Service) OnBalanceChange(from, to stake.Address, amount *uint256.Int, block uint64) ([]PowerChange, error) {
	var changes []PowerChange
	for _, typ := range stake.PowerTypes() {
		var fromHolder, toHolder stake.Address
		var err error
		if !from.IsZero() {
			if fromHolder, err = s.Delegatee(from, typ); err != nil {
				return nil, err
			}
		}
		if !to.IsZero() {
			if toHolder, err = s.Delegatee(to, typ); err != nil {
				return nil, err
			}
		}
		moved, err := s.MovePower(fromHolder, toHolder, amount, typ, block)
		if err != nil {
			return nil, err
		}
		changes = append(changes, moved...)
	}
	return changes, nil
}

// PowerCurrent returns the head power of account.
func (s *Service) PowerCurrent(account stake.Address, typ stake.PowerType) (*uint256.Int, error) {
	if !typ.Valid() {
		return nil, reverts.ErrInvalidPowerType
	}
	return s.checkpoints.Latest(checkpoints.Key{Account: account, Type: typ})
}

// PowerAtBlock returns the power of account as of block.
func (s *Service) PowerAtBlock(account stake.Address, typ stake.PowerType, block, current uint64) (*uint256.Int, error) {
	if !typ.Valid() {
		return nil, reverts.ErrInvalidPowerType
	}
	return s.checkpoints.At(checkpoints.Key{Account: account, Type: typ}, block, current)
}

// Nonce returns the next signed delegation nonce of account.
func (s *Service) Nonce(account stake.Address) (uint64, error) {
	n, err := s.nonces.Get(account)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get nonce")
	}
	return n, nil
}

// UseNonce consumes nonce of account, which must equal the stored one.
func (s *Service) UseNonce(account stake.Address, nonce uint64) error {
	current, err := s.Nonce(account)
	if err != nil {
		return err
	}
	if nonce != current {
		return reverts.ErrInvalidNonce
	}
	return s.nonces.Set(account, current+1)
}
