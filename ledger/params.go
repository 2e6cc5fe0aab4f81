// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/stake"
)

// Revision of the ledger logic.
const Revision = 3

// Defaults applied to a genesis with zero values.
const (
	DefaultCooldownSeconds      = 864000     // 10 days
	DefaultUnstakeWindow        = 172800     // 2 days
	DefaultDistributionDuration = 3153600000 // 100 years
	DefaultDecimals             = 18
)

// Params are fixed at initialization.
type Params struct {
	Name            string
	Symbol          string
	Decimals        uint8
	Address         stake.Address // the staked token, also the rewarded asset
	Underlying      stake.Address // the asset that is staked and paid as reward
	RewardsVault    stake.Address
	EmissionManager stake.Address
	CooldownSeconds uint64
	UnstakeWindow   uint64
	DistributionEnd uint64
	ChainID         uint64
	Revision        uint64
}

// Allocation is an initial balance of the underlying asset.
type Allocation struct {
	Account stake.Address `yaml:"account"`
	Amount  string        `yaml:"amount"`
}

// Genesis describes a ledger to initialize.
type Genesis struct {
	Name                 string        `yaml:"name"`
	Symbol               string        `yaml:"symbol"`
	Decimals             uint8         `yaml:"decimals"`
	Address              stake.Address `yaml:"address"`
	Underlying           stake.Address `yaml:"underlying"`
	RewardsVault         stake.Address `yaml:"rewardsVault"`
	EmissionManager      stake.Address `yaml:"emissionManager"`
	CooldownSeconds      uint64        `yaml:"cooldownSeconds"`
	UnstakeWindow        uint64        `yaml:"unstakeWindow"`
	DistributionDuration uint64        `yaml:"distributionDuration"`
	ChainID              uint64        `yaml:"chainId"`
	EmissionPerSecond    string        `yaml:"emissionPerSecond"`
	Allocations          []Allocation  `yaml:"allocations"`
}

// Params derives the ledger params for an initialization at time.
func (g *Genesis) Params(time uint64) (*Params, error) {
	if g.Address.IsZero() {
		return nil, errors.New("genesis: ledger address required")
	}
	if g.Underlying.IsZero() {
		return nil, errors.New("genesis: underlying address required")
	}
	if g.Underlying == g.Address {
		return nil, errors.New("genesis: underlying and ledger address must differ")
	}
	if g.RewardsVault.IsZero() {
		return nil, errors.New("genesis: rewards vault required")
	}
	if g.EmissionManager.IsZero() {
		return nil, errors.New("genesis: emission manager required")
	}
	p := &Params{
		Name:            g.Name,
		Symbol:          g.Symbol,
		Decimals:        g.Decimals,
		Address:         g.Address,
		Underlying:      g.Underlying,
		RewardsVault:    g.RewardsVault,
		EmissionManager: g.EmissionManager,
		CooldownSeconds: g.CooldownSeconds,
		UnstakeWindow:   g.UnstakeWindow,
		ChainID:         g.ChainID,
		Revision:        Revision,
	}
	if p.Decimals == 0 {
		p.Decimals = DefaultDecimals
	}
	if p.CooldownSeconds == 0 {
		p.CooldownSeconds = DefaultCooldownSeconds
	}
	if p.UnstakeWindow == 0 {
		p.UnstakeWindow = DefaultUnstakeWindow
	}
	duration := g.DistributionDuration
	if duration == 0 {
		duration = DefaultDistributionDuration
	}
	p.DistributionEnd = time + duration
	if p.DistributionEnd < time {
		return nil, errors.New("genesis: distribution duration overflows")
	}
	return p, nil
}

// ParseAmount parses a decimal or 0x prefixed hex amount, empty meaning zero.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	if s == "max" {
		return stake.MaxAmount(), nil
	}
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := uint256.FromHex(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid amount %q", s)
		}
		return v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %q", s)
	}
	return v, nil
}
