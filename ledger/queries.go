// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/ledger/rewards"
	"github.com/vechain/stakeledger/stake"
)

// Queries read committed state only and never block each other.

func (l *Ledger) LastClock() (*Clock, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clock.Get()
}

func (l *Ledger) BalanceOf(account stake.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.staked.BalanceOf(account)
}

func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.staked.TotalSupply()
}

// UnderlyingBalanceOf returns the balance of account in the underlying asset.
func (l *Ledger) UnderlyingBalanceOf(account stake.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.underlying.BalanceOf(account)
}

func (l *Ledger) PowerCurrent(account stake.Address, typ stake.PowerType) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.delegation.PowerCurrent(account, typ)
}

// PowerAtBlock returns the power of account as of block, which must not be
// after the last committed block.
func (l *Ledger) PowerAtBlock(account stake.Address, typ stake.PowerType, block uint64) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	clock, err := l.clock.Get()
	if err != nil {
		return nil, err
	}
	return l.delegation.PowerAtBlock(account, typ, block, clock.Number)
}

// DelegateeByType returns who holds the power of account, account itself
// when it never delegated.
func (l *Ledger) DelegateeByType(account stake.Address, typ stake.PowerType) (stake.Address, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.delegation.Delegatee(account, typ)
}

func (l *Ledger) IsDelegating(account stake.Address, typ stake.PowerType) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.delegation.IsDelegating(account, typ)
}

func (l *Ledger) Nonce(account stake.Address) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.delegation.Nonce(account)
}

// CooldownStart returns the cooldown start of account, 0 if inactive.
func (l *Ledger) CooldownStart(account stake.Address) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cooldown.Start(account)
}

// StakerRewardsToClaim returns settled but unclaimed rewards of account.
func (l *Ledger) StakerRewardsToClaim(account stake.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rewards.UnclaimedRewards(account)
}

// TotalRewardsBalance returns what account could claim at now.
func (l *Ledger) TotalRewardsBalance(account stake.Address, now uint64) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, err := l.staked.BalanceOf(account)
	if err != nil {
		return nil, err
	}
	total, err := l.staked.TotalSupply()
	if err != nil {
		return nil, err
	}
	return l.rewards.Claimable(account, l.params.Address, balance, total, now)
}

func (l *Ledger) Asset(asset stake.Address) (*rewards.AssetData, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rewards.Asset(asset)
}

func (l *Ledger) UserAssetIndex(user, asset stake.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rewards.UserIndex(user, asset)
}
