// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/stake"
)

// Event is emitted by a committed operation.
type Event interface {
	// Name is the event name, e.g. "Staked".
	Name() string
	// Accounts lists the accounts the event concerns, for indexing.
	Accounts() []stake.Address
}

type Staked struct {
	From       stake.Address `json:"from"`
	OnBehalfOf stake.Address `json:"onBehalfOf"`
	Amount     *uint256.Int  `json:"amount"`
}

type Redeem struct {
	From   stake.Address `json:"from"`
	To     stake.Address `json:"to"`
	Amount *uint256.Int  `json:"amount"`
}

type Cooldown struct {
	User  stake.Address `json:"user"`
	Start uint64        `json:"start"`
}

type RewardsAccrued struct {
	User   stake.Address `json:"user"`
	Amount *uint256.Int  `json:"amount"`
}

type RewardsClaimed struct {
	From   stake.Address `json:"from"`
	To     stake.Address `json:"to"`
	Amount *uint256.Int  `json:"amount"`
}

type Transfer struct {
	From   stake.Address `json:"from"`
	To     stake.Address `json:"to"`
	Amount *uint256.Int  `json:"amount"`
}

type DelegateChanged struct {
	Delegator stake.Address   `json:"delegator"`
	Delegatee stake.Address   `json:"delegatee"`
	Type      stake.PowerType `json:"type"`
}

type DelegatedPowerChanged struct {
	User  stake.Address   `json:"user"`
	Power *uint256.Int    `json:"power"`
	Type  stake.PowerType `json:"type"`
}

// Minted records new underlying asset created for an account.
type Minted struct {
	To     stake.Address `json:"to"`
	Amount *uint256.Int  `json:"amount"`
}

type AssetConfigUpdated struct {
	Asset    stake.Address `json:"asset"`
	Emission *uint256.Int  `json:"emission"`
}

type AssetIndexUpdated struct {
	Asset stake.Address `json:"asset"`
	Index *uint256.Int  `json:"index"`
}

type UserIndexUpdated struct {
	User  stake.Address `json:"user"`
	Asset stake.Address `json:"asset"`
	Index *uint256.Int  `json:"index"`
}

func (*Staked) Name() string                { return "Staked" }
func (*Redeem) Name() string                { return "Redeem" }
func (*Cooldown) Name() string              { return "Cooldown" }
func (*RewardsAccrued) Name() string        { return "RewardsAccrued" }
func (*RewardsClaimed) Name() string        { return "RewardsClaimed" }
func (*Transfer) Name() string              { return "Transfer" }
func (*DelegateChanged) Name() string       { return "DelegateChanged" }
func (*DelegatedPowerChanged) Name() string { return "DelegatedPowerChanged" }
func (*Minted) Name() string                { return "Minted" }
func (*AssetConfigUpdated) Name() string    { return "AssetConfigUpdated" }
func (*AssetIndexUpdated) Name() string     { return "AssetIndexUpdated" }
func (*UserIndexUpdated) Name() string      { return "UserIndexUpdated" }

func (e *Staked) Accounts() []stake.Address         { return []stake.Address{e.From, e.OnBehalfOf} }
func (e *Redeem) Accounts() []stake.Address         { return []stake.Address{e.From, e.To} }
func (e *Cooldown) Accounts() []stake.Address       { return []stake.Address{e.User} }
func (e *RewardsAccrued) Accounts() []stake.Address { return []stake.Address{e.User} }
func (e *RewardsClaimed) Accounts() []stake.Address { return []stake.Address{e.From, e.To} }
func (e *Transfer) Accounts() []stake.Address       { return []stake.Address{e.From, e.To} }
func (e *DelegateChanged) Accounts() []stake.Address {
	return []stake.Address{e.Delegator, e.Delegatee}
}
func (e *DelegatedPowerChanged) Accounts() []stake.Address { return []stake.Address{e.User} }
func (e *Minted) Accounts() []stake.Address                { return []stake.Address{e.To} }
func (e *AssetConfigUpdated) Accounts() []stake.Address    { return []stake.Address{e.Asset} }
func (e *AssetIndexUpdated) Accounts() []stake.Address     { return []stake.Address{e.Asset} }
func (e *UserIndexUpdated) Accounts() []stake.Address      { return []stake.Address{e.User} }

// Receipt collects the events of one committed operation.
type Receipt struct {
	Op     string        `json:"op"`
	Caller stake.Address `json:"caller"`
	Number uint64        `json:"number"`
	Time   uint64        `json:"time"`
	Events []Event       `json:"events"`
}

var eventTypes = map[string]func() Event{
	"Staked":                func() Event { return new(Staked) },
	"Redeem":                func() Event { return new(Redeem) },
	"Cooldown":              func() Event { return new(Cooldown) },
	"RewardsAccrued":        func() Event { return new(RewardsAccrued) },
	"RewardsClaimed":        func() Event { return new(RewardsClaimed) },
	"Transfer":              func() Event { return new(Transfer) },
	"DelegateChanged":       func() Event { return new(DelegateChanged) },
	"DelegatedPowerChanged": func() Event { return new(DelegatedPowerChanged) },
	"Minted":                func() Event { return new(Minted) },
	"AssetConfigUpdated":    func() Event { return new(AssetConfigUpdated) },
	"AssetIndexUpdated":     func() Event { return new(AssetIndexUpdated) },
	"UserIndexUpdated":      func() Event { return new(UserIndexUpdated) },
}

// NewEvent returns an empty event of the given name, nil if unknown.
func NewEvent(name string) Event {
	if f, ok := eventTypes[name]; ok {
		return f()
	}
	return nil
}
