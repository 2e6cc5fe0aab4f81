// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/vechain/stakeledger/stake"
)

func RandBytes32() (b stake.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (addr stake.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) []stake.Address {
	addrs := make([]stake.Address, n)
	for i := range addrs {
		addrs[i] = RandAddress()
	}
	return addrs
}
