// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoints

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/stake"
)

// Checkpoint is the power of an account from Block on.
type Checkpoint struct {
	Block uint64
	Value *uint256.Int
}

// Key identifies the history of one power type of an account.
type Key struct {
	Account stake.Address
	Type    stake.PowerType
}

func (k Key) Bytes() []byte {
	b := make([]byte, 0, stake.AddressLength+1)
	b = append(b, k.Account[:]...)
	return append(b, byte(k.Type))
}

type itemKey struct {
	Key
	index uint64
}

func (k itemKey) Bytes() []byte {
	b := k.Key.Bytes()
	return binary.BigEndian.AppendUint64(b, k.index)
}
