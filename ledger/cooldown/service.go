// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cooldown

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/stake"
	"github.com/vechain/stakeledger/storage"
)

var slotStarts = storage.Slot("cooldown-starts")

// Service tracks the cooldown start of each account, 0 meaning inactive.
type Service struct {
	starts  *storage.Mapping[stake.Address, uint64]
	seconds uint64
	window  uint64
}

func New(sctx *storage.Context, cooldownSeconds, unstakeWindow uint64) *Service {
	return &Service{
		starts:  storage.NewMapping[stake.Address, uint64](sctx, slotStarts),
		seconds: cooldownSeconds,
		window:  unstakeWindow,
	}
}

// Start returns the cooldown start of account.
func (s *Service) Start(account stake.Address) (uint64, error) {
	start, err := s.starts.Get(account)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get cooldown start")
	}
	return start, nil
}

func (s *Service) set(account stake.Address, start uint64) error {
	if start == 0 {
		s.starts.Delete(account)
		return nil
	}
	return s.starts.Set(account, start)
}

// IsStale reports whether a cooldown started at start has passed its unstake window at now.
func (s *Service) IsStale(start, now uint64) bool {
	return now > start+s.seconds+s.window
}

// isFresh reports an active cooldown still usable at now.
func (s *Service) isFresh(start, now uint64) bool {
	return start != 0 && !s.IsStale(start, now)
}

// Activate starts the cooldown of account at now.
func (s *Service) Activate(account stake.Address, balance *uint256.Int, now uint64) error {
	if balance.IsZero() {
		return reverts.ErrInvalidBalanceOnCooldown
	}
	return s.set(account, now)
}

// OnBalanceIncrease merges added funds into an active cooldown.
// A stale cooldown restarts at now, an inactive one stays inactive.
func (s *Service) OnBalanceIncrease(account stake.Address, added, oldBalance *uint256.Int, now uint64) error {
	start, err := s.Start(account)
	if err != nil {
		return err
	}
	if start == 0 {
		return nil
	}
	if s.IsStale(start, now) {
		return s.set(account, now)
	}
	next, err := WeightedAverage(added, now, oldBalance, start)
	if err != nil {
		return err
	}
	return s.set(account, next)
}

// ValidateRedeem checks that account is inside its unstake window at now.
// The window opens at exactly start + cooldown seconds.
func (s *Service) ValidateRedeem(account stake.Address, now uint64) error {
	start, err := s.Start(account)
	if err != nil {
		return err
	}
	if start == 0 || now < start+s.seconds {
		return reverts.ErrInsufficientCooldown
	}
	if s.IsStale(start, now) {
		return reverts.ErrUnstakeWindowFinished
	}
	return nil
}

// OnRedeem resets the cooldown once the whole balance left.
func (s *Service) OnRedeem(account stake.Address, amount, balance *uint256.Int) error {
	if amount.Eq(balance) {
		return s.set(account, 0)
	}
	return nil
}

// OnTransfer carries cooldown state from sender to receiver.
// Balances are the ones before the transfer.
func (s *Service) OnTransfer(from, to stake.Address, amount, fromBalance, toBalance *uint256.Int, now uint64) error {
	// nothing moves, so no cooldown can move either
	if from == to || amount.IsZero() {
		return nil
	}
	fromStart, err := s.Start(from)
	if err != nil {
		return err
	}
	toStart, err := s.Start(to)
	if err != nil {
		return err
	}

	// a usable receiver cooldown is never pushed later
	if !s.isFresh(toStart, now) {
		next := uint64(0)
		if s.isFresh(fromStart, now) {
			if next, err = WeightedAverage(amount, fromStart, toBalance, now); err != nil {
				return err
			}
		}
		if next != toStart {
			if err := s.set(to, next); err != nil {
				return err
			}
		}
	}

	if fromStart != 0 && amount.Eq(fromBalance) {
		return s.set(from, 0)
	}
	return nil
}

// WeightedAverage returns (a*ta + b*tb) / (a + b), floored.
// Products are taken before the division. Zero weights yield ta.
func WeightedAverage(a *uint256.Int, ta uint64, b *uint256.Int, tb uint64) (uint64, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return 0, reverts.ErrOverflow
	}
	if sum.IsZero() {
		return ta, nil
	}
	x, overflow := new(uint256.Int).MulOverflow(a, uint256.NewInt(ta))
	if overflow {
		return 0, reverts.ErrOverflow
	}
	y, overflow := new(uint256.Int).MulOverflow(b, uint256.NewInt(tb))
	if overflow {
		return 0, reverts.ErrOverflow
	}
	if _, overflow := x.AddOverflow(x, y); overflow {
		return 0, reverts.ErrOverflow
	}
	return x.Div(x, sum).Uint64(), nil
}
