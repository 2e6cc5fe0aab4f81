// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed views over the raw slots of a state address.
package storage

import (
	"github.com/vechain/stakeledger/stake"
	"github.com/vechain/stakeledger/state"
)

// Context binds typed storage to the slots of one address.
type Context struct {
	address stake.Address
	state   *state.State
}

func NewContext(address stake.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() stake.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot derives a named top level slot position.
func Slot(name string) stake.Bytes32 {
	return stake.BytesToBytes32([]byte(name))
}
