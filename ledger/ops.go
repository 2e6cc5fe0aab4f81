// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/ledger/delegation"
	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/stake"
)

// AssetConfig is one entry of ConfigureAssets.
type AssetConfig struct {
	Asset             stake.Address
	EmissionPerSecond *uint256.Int
	TotalStaked       *uint256.Int
}

//
// Internal steps, shared by the operations below.
//

// settle moves the rewards earned by user with its current balance into unclaimed rewards.
func (l *Ledger) settle(tx *txn, user stake.Address, balance, totalStaked *uint256.Int) error {
	asset := l.params.Address
	res, err := l.rewards.SettleAccount(user, asset, balance, totalStaked, tx.env.Time)
	if err != nil {
		return err
	}
	if res.IndexUpdated {
		tx.emit(&AssetIndexUpdated{Asset: asset, Index: res.AssetIndex})
	}
	if res.UserUpdated {
		tx.emit(&UserIndexUpdated{User: user, Asset: asset, Index: res.AssetIndex})
	}
	if !res.Accrued.IsZero() {
		tx.emit(&RewardsAccrued{User: user, Amount: res.Accrued})
	}
	return nil
}

// movePower pushes a staked balance movement to the power holders of both sides.
func (l *Ledger) movePower(tx *txn, from, to stake.Address, amount *uint256.Int) error {
	changes, err := l.delegation.OnBalanceChange(from, to, amount, tx.env.Number)
	if err != nil {
		return err
	}
	l.emitPower(tx, changes)
	return nil
}

func (l *Ledger) emitPower(tx *txn, changes []delegation.PowerChange) {
	for _, c := range changes {
		tx.emit(&DelegatedPowerChanged{User: c.Account, Power: c.Power, Type: c.Type})
	}
}

func (l *Ledger) afterTransfer(tx *txn, from, to stake.Address, amount *uint256.Int) error {
	tx.emit(&Transfer{From: from, To: to, Amount: new(uint256.Int).Set(amount)})
	if l.hook != nil {
		return l.hook.OnTransfer(from, to, amount)
	}
	return nil
}

func (l *Ledger) delegateByType(tx *txn, delegator, delegatee stake.Address, typ stake.PowerType) error {
	balance, err := l.staked.BalanceOf(delegator)
	if err != nil {
		return err
	}
	changed, changes, err := l.delegation.DelegateByType(delegator, delegatee, typ, balance, tx.env.Number)
	if err != nil {
		return err
	}
	if changed {
		tx.emit(&DelegateChanged{Delegator: delegator, Delegatee: delegatee, Type: typ})
		l.emitPower(tx, changes)
	}
	return nil
}

func (l *Ledger) balances(accounts ...stake.Address) ([]*uint256.Int, *uint256.Int, error) {
	total, err := l.staked.TotalSupply()
	if err != nil {
		return nil, nil, err
	}
	out := make([]*uint256.Int, 0, len(accounts))
	for _, a := range accounts {
		b, err := l.staked.BalanceOf(a)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, b)
	}
	return out, total, nil
}

//
// Operations - each is atomic
//

// Stake pulls amount of the underlying asset from the caller and mints the
// same amount of staked token to onBehalfOf.
func (l *Ledger) Stake(env Env, onBehalfOf stake.Address, amount *uint256.Int) (*Receipt, error) {
	return l.execute("stake", env, func(tx *txn) error {
		if amount.IsZero() {
			return reverts.ErrInvalidZeroAmount
		}
		if onBehalfOf.IsZero() {
			return reverts.Newf(reverts.KindInvalidAddress, "stake on behalf of the zero address")
		}
		bals, total, err := l.balances(onBehalfOf)
		if err != nil {
			return err
		}
		balance := bals[0]

		if err := l.settle(tx, onBehalfOf, balance, total); err != nil {
			return err
		}
		if err := l.underlying.Transfer(env.Caller, l.params.Address, amount); err != nil {
			return err
		}
		if err := l.staked.Mint(onBehalfOf, amount); err != nil {
			return err
		}
		if err := l.cooldown.OnBalanceIncrease(onBehalfOf, amount, balance, env.Time); err != nil {
			return err
		}
		if err := l.movePower(tx, stake.Address{}, onBehalfOf, amount); err != nil {
			return err
		}
		if err := l.afterTransfer(tx, stake.Address{}, onBehalfOf, amount); err != nil {
			return err
		}
		tx.emit(&Staked{From: env.Caller, OnBehalfOf: onBehalfOf, Amount: new(uint256.Int).Set(amount)})
		return nil
	})
}

// Redeem burns up to amount of the caller's staked token and sends the same
// amount of the underlying asset to to. stake.MaxAmount redeems everything.
func (l *Ledger) Redeem(env Env, to stake.Address, amount *uint256.Int) (*Receipt, error) {
	return l.execute("redeem", env, func(tx *txn) error {
		if amount.IsZero() {
			return reverts.ErrInvalidZeroAmount
		}
		if to.IsZero() {
			return reverts.Newf(reverts.KindInvalidAddress, "redeem to the zero address")
		}
		from := env.Caller
		bals, total, err := l.balances(from)
		if err != nil {
			return err
		}
		balance := bals[0]

		if err := l.settle(tx, from, balance, total); err != nil {
			return err
		}
		if err := l.cooldown.ValidateRedeem(from, env.Time); err != nil {
			return err
		}
		redeemed := new(uint256.Int).Set(amount)
		if redeemed.Gt(balance) {
			redeemed.Set(balance)
		}
		if err := l.staked.Burn(from, redeemed); err != nil {
			return err
		}
		if err := l.cooldown.OnRedeem(from, redeemed, balance); err != nil {
			return err
		}
		if err := l.movePower(tx, from, stake.Address{}, redeemed); err != nil {
			return err
		}
		if err := l.afterTransfer(tx, from, stake.Address{}, redeemed); err != nil {
			return err
		}
		if err := l.underlying.Transfer(l.params.Address, to, redeemed); err != nil {
			return err
		}
		tx.emit(&Redeem{From: from, To: to, Amount: redeemed})
		return nil
	})
}

// Cooldown starts the cooldown of the caller.
func (l *Ledger) Cooldown(env Env) (*Receipt, error) {
	return l.execute("cooldown", env, func(tx *txn) error {
		balance, err := l.staked.BalanceOf(env.Caller)
		if err != nil {
			return err
		}
		if err := l.cooldown.Activate(env.Caller, balance, env.Time); err != nil {
			return err
		}
		tx.emit(&Cooldown{User: env.Caller, Start: env.Time})
		return nil
	})
}

// ClaimRewards pays up to amount of the caller's rewards from the rewards
// vault to to, returning the paid amount. stake.MaxAmount claims everything.
func (l *Ledger) ClaimRewards(env Env, to stake.Address, amount *uint256.Int) (*uint256.Int, *Receipt, error) {
	var paid *uint256.Int
	receipt, err := l.execute("claim", env, func(tx *txn) error {
		if to.IsZero() {
			return reverts.Newf(reverts.KindInvalidAddress, "claim to the zero address")
		}
		bals, total, err := l.balances(env.Caller)
		if err != nil {
			return err
		}
		claimed, res, err := l.rewards.Claim(env.Caller, l.params.Address, bals[0], total, amount, env.Time)
		if err != nil {
			return err
		}
		if res.IndexUpdated {
			tx.emit(&AssetIndexUpdated{Asset: l.params.Address, Index: res.AssetIndex})
		}
		if res.UserUpdated {
			tx.emit(&UserIndexUpdated{User: env.Caller, Asset: l.params.Address, Index: res.AssetIndex})
		}
		if !res.Accrued.IsZero() {
			tx.emit(&RewardsAccrued{User: env.Caller, Amount: res.Accrued})
		}
		if !claimed.IsZero() {
			if err := l.underlying.Transfer(l.params.RewardsVault, to, claimed); err != nil {
				return err
			}
			tx.emit(&RewardsClaimed{From: env.Caller, To: to, Amount: claimed})
		}
		paid = claimed
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paid, receipt, nil
}

// Transfer moves amount of staked token from the caller to to, carrying
// rewards, cooldown and power along.
func (l *Ledger) Transfer(env Env, to stake.Address, amount *uint256.Int) (*Receipt, error) {
	return l.execute("transfer", env, func(tx *txn) error {
		from := env.Caller
		if to.IsZero() {
			return reverts.Newf(reverts.KindInvalidAddress, "transfer to the zero address")
		}
		bals, total, err := l.balances(from, to)
		if err != nil {
			return err
		}
		fromBalance, toBalance := bals[0], bals[1]
		if fromBalance.Lt(amount) {
			return reverts.ErrInsufficientBalance
		}

		if err := l.settle(tx, from, fromBalance, total); err != nil {
			return err
		}
		if from != to {
			if err := l.settle(tx, to, toBalance, total); err != nil {
				return err
			}
			if err := l.cooldown.OnTransfer(from, to, amount, fromBalance, toBalance, env.Time); err != nil {
				return err
			}
			if err := l.movePower(tx, from, to, amount); err != nil {
				return err
			}
		}
		if err := l.staked.Transfer(from, to, amount); err != nil {
			return err
		}
		return l.afterTransfer(tx, from, to, amount)
	})
}

// Delegate hands both power types of the caller over to delegatee.
func (l *Ledger) Delegate(env Env, delegatee stake.Address) (*Receipt, error) {
	return l.execute("delegate", env, func(tx *txn) error {
		for _, typ := range stake.PowerTypes() {
			if err := l.delegateByType(tx, env.Caller, delegatee, typ); err != nil {
				return err
			}
		}
		return nil
	})
}

// DelegateByType hands one power type of the caller over to delegatee.
func (l *Ledger) DelegateByType(env Env, delegatee stake.Address, typ stake.PowerType) (*Receipt, error) {
	return l.execute("delegate-by-type", env, func(tx *txn) error {
		if !typ.Valid() {
			return reverts.ErrInvalidPowerType
		}
		return l.delegateByType(tx, env.Caller, delegatee, typ)
	})
}

func (l *Ledger) checkSigned(env Env, delegator stake.Address, nonce, expiry uint64, digest stake.Bytes32, sig []byte) error {
	if env.Time > expiry {
		return reverts.ErrInvalidExpiration
	}
	if err := l.delegation.UseNonce(delegator, nonce); err != nil {
		return err
	}
	signer, err := l.recoverer(digest, sig)
	if err != nil {
		return reverts.Newf(reverts.KindInvalidSignature, err.Error())
	}
	if signer.IsZero() || signer != delegator {
		return reverts.ErrInvalidSignature
	}
	return nil
}

// DelegateBySig delegates both power types of delegator, authorized by its signature.
func (l *Ledger) DelegateBySig(env Env, delegator, delegatee stake.Address, nonce, expiry uint64, sig []byte) (*Receipt, error) {
	return l.execute("delegate-by-sig", env, func(tx *txn) error {
		digest := delegation.DelegateDigest(l.domain, delegatee, nonce, expiry)
		if err := l.checkSigned(env, delegator, nonce, expiry, digest, sig); err != nil {
			return err
		}
		for _, typ := range stake.PowerTypes() {
			if err := l.delegateByType(tx, delegator, delegatee, typ); err != nil {
				return err
			}
		}
		return nil
	})
}

// DelegateByTypeBySig delegates one power type of delegator, authorized by its signature.
func (l *Ledger) DelegateByTypeBySig(env Env, delegator, delegatee stake.Address, typ stake.PowerType, nonce, expiry uint64, sig []byte) (*Receipt, error) {
	return l.execute("delegate-by-type-by-sig", env, func(tx *txn) error {
		if !typ.Valid() {
			return reverts.ErrInvalidPowerType
		}
		digest := delegation.DelegateByTypeDigest(l.domain, delegatee, typ, nonce, expiry)
		if err := l.checkSigned(env, delegator, nonce, expiry, digest, sig); err != nil {
			return err
		}
		return l.delegateByType(tx, delegator, delegatee, typ)
	})
}

// ConfigureAssets changes emissions. Only the emission manager may call it.
func (l *Ledger) ConfigureAssets(env Env, configs []AssetConfig) (*Receipt, error) {
	return l.execute("configure-assets", env, func(tx *txn) error {
		if env.Caller != l.params.EmissionManager {
			return reverts.ErrUnauthorized
		}
		for _, c := range configs {
			emission := stake.ZeroIfNil(c.EmissionPerSecond)
			index, updated, err := l.rewards.ConfigureAsset(c.Asset, emission, stake.ZeroIfNil(c.TotalStaked), env.Time)
			if err != nil {
				return err
			}
			if updated {
				tx.emit(&AssetIndexUpdated{Asset: c.Asset, Index: index})
			}
			tx.emit(&AssetConfigUpdated{Asset: c.Asset, Emission: new(uint256.Int).Set(emission)})
		}
		return nil
	})
}

// MintUnderlying creates underlying asset for to. Only the emission manager may call it.
func (l *Ledger) MintUnderlying(env Env, to stake.Address, amount *uint256.Int) (*Receipt, error) {
	return l.execute("mint", env, func(tx *txn) error {
		if env.Caller != l.params.EmissionManager {
			return reverts.ErrUnauthorized
		}
		if amount.IsZero() {
			return reverts.ErrInvalidZeroAmount
		}
		if err := l.underlying.Mint(to, amount); err != nil {
			return err
		}
		tx.emit(&Minted{To: to, Amount: new(uint256.Int).Set(amount)})
		return nil
	})
}
