// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/dsa"
	"github.com/vechain/stakeledger/eventdb"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/ledger/delegation"
	"github.com/vechain/stakeledger/stake"
)

func initAction(ctx *cli.Context) error {
	genesis, err := loadGenesis(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	db, err := openMainDB(dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	initTime := uint64(time.Now().Unix())
	if ctx.IsSet(timeFlag.Name) {
		initTime = ctx.Uint64(timeFlag.Name)
	}
	params, err := ledger.Initialize(db, genesis, initTime)
	if err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, params)
}

// mutate runs one state changing command and indexes its receipt.
func mutate(ctx *cli.Context, fn func(in *instance, env ledger.Env) (*ledger.Receipt, error)) error {
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	env, err := in.env(ctx)
	if err != nil {
		return err
	}
	receipt, err := fn(in, env)
	if err != nil {
		return err
	}
	if err := in.index(receipt); err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, receipt)
}

func mintAction(ctx *cli.Context) error {
	to, err := parseAddress(ctx, toFlag.Name, true)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx, amountFlag.Name, "")
	if err != nil {
		return err
	}
	return mutate(ctx, func(in *instance, env ledger.Env) (*ledger.Receipt, error) {
		return in.ledger.MintUnderlying(env, to, amount)
	})
}

func stakeAction(ctx *cli.Context) error {
	onBehalfOf, err := parseAddress(ctx, onBehalfOfFlag.Name, false)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx, amountFlag.Name, "")
	if err != nil {
		return err
	}
	return mutate(ctx, func(in *instance, env ledger.Env) (*ledger.Receipt, error) {
		if onBehalfOf.IsZero() {
			onBehalfOf = env.Caller
		}
		return in.ledger.Stake(env, onBehalfOf, amount)
	})
}

func redeemAction(ctx *cli.Context) error {
	to, err := parseAddress(ctx, toFlag.Name, false)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx, amountFlag.Name, "max")
	if err != nil {
		return err
	}
	return mutate(ctx, func(in *instance, env ledger.Env) (*ledger.Receipt, error) {
		if to.IsZero() {
			to = env.Caller
		}
		return in.ledger.Redeem(env, to, amount)
	})
}

func cooldownAction(ctx *cli.Context) error {
	return mutate(ctx, func(in *instance, env ledger.Env) (*ledger.Receipt, error) {
		return in.ledger.Cooldown(env)
	})
}

func claimAction(ctx *cli.Context) error {
	to, err := parseAddress(ctx, toFlag.Name, false)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx, amountFlag.Name, "max")
	if err != nil {
		return err
	}
	return mutate(ctx, func(in *instance, env ledger.Env) (*ledger.Receipt, error) {
		if to.IsZero() {
			to = env.Caller
		}
		paid, receipt, err := in.ledger.ClaimRewards(env, to, amount)
		if err != nil {
			return nil, err
		}
		logger.Info("rewards claimed", "to", to, "amount", paid)
		return receipt, nil
	})
}

func transferAction(ctx *cli.Context) error {
	to, err := parseAddress(ctx, toFlag.Name, true)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx, amountFlag.Name, "")
	if err != nil {
		return err
	}
	return mutate(ctx, func(in *instance, env ledger.Env) (*ledger.Receipt, error) {
		return in.ledger.Transfer(env, to, amount)
	})
}

func delegateAction(ctx *cli.Context) error {
	delegatee, err := parseAddress(ctx, toFlag.Name, true)
	if err != nil {
		return err
	}
	types, err := parsePowerTypes(ctx)
	if err != nil {
		return err
	}
	return mutate(ctx, func(in *instance, env ledger.Env) (*ledger.Receipt, error) {
		if len(types) == 1 {
			return in.ledger.DelegateByType(env, delegatee, types[0])
		}
		return in.ledger.Delegate(env, delegatee)
	})
}

func delegateBySigAction(ctx *cli.Context) error {
	delegatee, err := parseAddress(ctx, toFlag.Name, true)
	if err != nil {
		return err
	}
	types, err := parsePowerTypes(ctx)
	if err != nil {
		return err
	}
	key, err := loadKey(ctx.String(keyFileFlag.Name))
	if err != nil {
		return err
	}
	delegator := stake.Address(crypto.PubkeyToAddress(key.PublicKey))

	return mutate(ctx, func(in *instance, env ledger.Env) (*ledger.Receipt, error) {
		nonce := uint64(ctx.Int64(nonceFlag.Name))
		if ctx.Int64(nonceFlag.Name) < 0 {
			current, err := in.ledger.Nonce(delegator)
			if err != nil {
				return nil, err
			}
			nonce = current
		}
		expiry := env.Time + 3600
		if ctx.IsSet(expiryFlag.Name) {
			expiry = ctx.Uint64(expiryFlag.Name)
		}

		var digest stake.Bytes32
		if len(types) == 1 {
			digest = delegation.DelegateByTypeDigest(in.ledger.DomainSeparator(), delegatee, types[0], nonce, expiry)
		} else {
			digest = delegation.DelegateDigest(in.ledger.DomainSeparator(), delegatee, nonce, expiry)
		}
		sig, err := dsa.Sign(digest, crypto.FromECDSA(key))
		if err != nil {
			return nil, errors.Wrap(err, "sign delegation")
		}
		logger.Debug("delegation signed", "delegator", delegator, "nonce", nonce, "expiry", expiry)

		if len(types) == 1 {
			return in.ledger.DelegateByTypeBySig(env, delegator, delegatee, types[0], nonce, expiry, sig)
		}
		return in.ledger.DelegateBySig(env, delegator, delegatee, nonce, expiry, sig)
	})
}

func configureAssetsAction(ctx *cli.Context) error {
	asset, err := parseAddress(ctx, assetFlag.Name, false)
	if err != nil {
		return err
	}
	emission, err := parseAmount(ctx, emissionFlag.Name, "")
	if err != nil {
		return err
	}
	return mutate(ctx, func(in *instance, env ledger.Env) (*ledger.Receipt, error) {
		if asset.IsZero() {
			asset = in.ledger.Params().Address
		}
		total, err := in.ledger.TotalSupply()
		if err != nil {
			return nil, err
		}
		return in.ledger.ConfigureAssets(env, []ledger.AssetConfig{{
			Asset:             asset,
			EmissionPerSecond: emission,
			TotalStaked:       total,
		}})
	})
}

// accountView is the printed state of one account.
type accountView struct {
	Address            stake.Address            `json:"address"`
	Balance            *uint256.Int             `json:"balance"`
	UnderlyingBalance  *uint256.Int             `json:"underlyingBalance"`
	CooldownStart      uint64                   `json:"cooldownStart"`
	RewardsToClaim     *uint256.Int             `json:"rewardsToClaim"`
	TotalRewards       *uint256.Int             `json:"totalRewards"`
	Nonce              uint64                   `json:"nonce"`
	Power              map[string]*uint256.Int  `json:"power"`
	Delegatees         map[string]stake.Address `json:"delegatees"`
	RewardsEvaluatedAt uint64                   `json:"rewardsEvaluatedAt"`
}

func accountAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx, addressFlag.Name, true)
	if err != nil {
		return err
	}
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()
	l := in.ledger

	now := uint64(time.Now().Unix())
	if ctx.IsSet(timeFlag.Name) {
		now = ctx.Uint64(timeFlag.Name)
	}
	view := &accountView{
		Address:            addr,
		Power:              make(map[string]*uint256.Int),
		Delegatees:         make(map[string]stake.Address),
		RewardsEvaluatedAt: now,
	}
	if view.Balance, err = l.BalanceOf(addr); err != nil {
		return err
	}
	if view.UnderlyingBalance, err = l.UnderlyingBalanceOf(addr); err != nil {
		return err
	}
	if view.CooldownStart, err = l.CooldownStart(addr); err != nil {
		return err
	}
	if view.RewardsToClaim, err = l.StakerRewardsToClaim(addr); err != nil {
		return err
	}
	if view.TotalRewards, err = l.TotalRewardsBalance(addr, now); err != nil {
		return err
	}
	if view.Nonce, err = l.Nonce(addr); err != nil {
		return err
	}
	for _, typ := range stake.PowerTypes() {
		power, err := l.PowerCurrent(addr, typ)
		if err != nil {
			return err
		}
		delegatee, err := l.DelegateeByType(addr, typ)
		if err != nil {
			return err
		}
		view.Power[typ.String()] = power
		view.Delegatees[typ.String()] = delegatee
	}
	return printJSON(ctx.App.Writer, view)
}

func powerAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx, addressFlag.Name, true)
	if err != nil {
		return err
	}
	types, err := parsePowerTypes(ctx)
	if err != nil {
		return err
	}
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	clock, err := in.ledger.LastClock()
	if err != nil {
		return err
	}
	block := clock.Number
	if ctx.IsSet(blockFlag.Name) {
		block = ctx.Uint64(blockFlag.Name)
	}
	out := make(map[string]*uint256.Int)
	for _, typ := range types {
		power, err := in.ledger.PowerAtBlock(addr, typ, block)
		if err != nil {
			return err
		}
		out[typ.String()] = power
	}
	return printJSON(ctx.App.Writer, struct {
		Address stake.Address           `json:"address"`
		Block   uint64                  `json:"block"`
		Power   map[string]*uint256.Int `json:"power"`
	}{addr, block, out})
}

func eventsAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx, addressFlag.Name, false)
	if err != nil {
		return err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	db, err := openEventDB(dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	filter := &eventdb.Filter{
		Names:   ctx.StringSlice(nameFlag.Name),
		Options: &eventdb.Options{Offset: ctx.Uint64(offsetFlag.Name), Limit: ctx.Uint64(limitFlag.Name)},
	}
	if !addr.IsZero() {
		filter.Accounts = []stake.Address{addr}
	}
	if ctx.IsSet(fromBlockFlag.Name) || ctx.IsSet(toBlockFlag.Name) {
		filter.Range = &eventdb.Range{Unit: eventdb.Block, From: ctx.Uint64(fromBlockFlag.Name), To: ctx.Uint64(toBlockFlag.Name)}
	}
	if ctx.Bool(descFlag.Name) {
		filter.Order = eventdb.DESC
	}
	events, err := db.FilterEvents(context.Background(), filter)
	if err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, events)
}

func inspectAction(ctx *cli.Context) error {
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	clock, err := in.ledger.LastClock()
	if err != nil {
		return err
	}
	total, err := in.ledger.TotalSupply()
	if err != nil {
		return err
	}
	params := in.ledger.Params()
	asset, err := in.ledger.Asset(params.Address)
	if err != nil {
		return err
	}
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
	cfg.Fdump(ctx.App.Writer, params, clock, asset)
	_, err = ctx.App.Writer.Write([]byte("total supply: " + total.Dec() + "\n"))
	return err
}
