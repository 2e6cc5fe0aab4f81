// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/stake"
)

// Precision is the number of decimals of the reward index.
const Precision = 18

// Scale is 10^Precision.
var Scale = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Precision))

// AssetData is the distribution state of one rewarded asset.
type AssetData struct {
	EmissionPerSecond   *uint256.Int
	LastUpdateTimestamp uint64
	Index               *uint256.Int
}

func (a *AssetData) normalize() *AssetData {
	if a.EmissionPerSecond == nil {
		a.EmissionPerSecond = new(uint256.Int)
	}
	if a.Index == nil {
		a.Index = new(uint256.Int)
	}
	return a
}

// AssetIndex computes the index of an asset at now, without side effects.
// Time is clamped to distributionEnd.
func AssetIndex(data *AssetData, totalStaked *uint256.Int, now, distributionEnd uint64) (*uint256.Int, error) {
	current := new(uint256.Int).Set(data.Index)
	if data.EmissionPerSecond.IsZero() ||
		totalStaked.IsZero() ||
		data.LastUpdateTimestamp >= now ||
		data.LastUpdateTimestamp >= distributionEnd {
		return current, nil
	}
	end := min(now, distributionEnd)
	delta := uint256.NewInt(end - data.LastUpdateTimestamp)

	acc, overflow := new(uint256.Int).MulOverflow(data.EmissionPerSecond, delta)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	if _, overflow = acc.MulOverflow(acc, Scale); overflow {
		return nil, reverts.ErrOverflow
	}
	acc.Div(acc, totalStaked)
	if _, overflow = acc.AddOverflow(acc, current); overflow {
		return nil, reverts.ErrOverflow
	}
	return acc, nil
}

// Accrued returns balance * (assetIndex - userIndex) / Scale, floored.
func Accrued(balance, assetIndex, userIndex *uint256.Int) (*uint256.Int, error) {
	if assetIndex.Lt(userIndex) {
		return nil, reverts.Newf(reverts.KindOverflow, "user index ahead of asset index")
	}
	diff := new(uint256.Int).Sub(assetIndex, userIndex)
	out, overflow := new(uint256.Int).MulOverflow(balance, diff)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	return out.Div(out, Scale), nil
}

type userAssetKey struct {
	user  stake.Address
	asset stake.Address
}

func (k userAssetKey) Bytes() []byte {
	b := make([]byte, 0, 2*stake.AddressLength)
	b = append(b, k.user[:]...)
	return append(b, k.asset[:]...)
}
