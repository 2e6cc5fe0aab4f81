// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/holiman/uint256"
)

var maxAmount = new(uint256.Int).SetAllOne()

// MaxAmount returns the sentinel that requests the whole available amount.
func MaxAmount() *uint256.Int {
	return new(uint256.Int).Set(maxAmount)
}

// IsMax reports whether the amount is the "everything" sentinel.
func IsMax(amount *uint256.Int) bool {
	return amount != nil && amount.Eq(maxAmount)
}

// ZeroIfNil returns a fresh zero for nil amounts, otherwise the amount itself.
func ZeroIfNil(amount *uint256.Int) *uint256.Int {
	if amount == nil {
		return new(uint256.Int)
	}
	return amount
}

// Ether returns n * 10^18, for tests and tooling.
func Ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}
