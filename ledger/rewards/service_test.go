// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/stake"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/storage"
)

var (
	asset = stake.BytesToAddress([]byte("stk"))
	alice = stake.BytesToAddress([]byte("alice"))
	bob   = stake.BytesToAddress([]byte("bob"))
)

func newSvc(t *testing.T, distributionEnd uint64) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := New(storage.NewContext(asset, state.New(db)))
	require.NoError(t, svc.SetDistributionEnd(distributionEnd))
	return svc
}

func TestAssetIndex(t *testing.T) {
	data := &AssetData{
		EmissionPerSecond:   uint256.NewInt(100),
		LastUpdateTimestamp: 1000,
		Index:               uint256.NewInt(5),
	}
	total := stake.Ether(50)

	idx, err := AssetIndex(data, total, 1010, 2000)
	require.NoError(t, err)
	// 100 * 10 * 1e18 / 50e18 + 5
	assert.Equal(t, uint64(25), idx.Uint64())

	// clamped to distribution end
	idx, err = AssetIndex(data, total, 5000, 1010)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), idx.Uint64())

	for _, tt := range []struct {
		name  string
		data  *AssetData
		total *uint256.Int
		now   uint64
		end   uint64
	}{
		{"zero emission", &AssetData{new(uint256.Int), 1000, uint256.NewInt(5)}, total, 1010, 2000},
		{"zero total", data, new(uint256.Int), 1010, 2000},
		{"same second", data, total, 1000, 2000},
		{"after end", data, total, 3000, 900},
	} {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := AssetIndex(tt.data, tt.total, tt.now, tt.end)
			require.NoError(t, err)
			assert.Equal(t, uint64(5), idx.Uint64())
		})
	}

	_, err = AssetIndex(&AssetData{stake.MaxAmount(), 0, new(uint256.Int)}, uint256.NewInt(1), 10, 20)
	assert.ErrorIs(t, err, reverts.ErrOverflow)
}

func TestAccrued(t *testing.T) {
	v, err := Accrued(stake.Ether(3), uint256.NewInt(7), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(15), v.Uint64())

	// floored
	v, err = Accrued(uint256.NewInt(1), uint256.NewInt(1), new(uint256.Int))
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestService_SettleAndClaim(t *testing.T) {
	svc := newSvc(t, 1_000_000)
	total := stake.Ether(100)

	_, _, err := svc.ConfigureAsset(asset, uint256.NewInt(1000), total, 100)
	require.NoError(t, err)

	// alice holds 25 of 100 for 40 seconds: 1000*40*25/100
	settled, err := svc.SettleAccount(alice, asset, new(uint256.Int), total, 100)
	require.NoError(t, err)
	assert.True(t, settled.Accrued.IsZero())

	settled, err = svc.SettleAccount(alice, asset, stake.Ether(25), total, 140)
	require.NoError(t, err)
	assert.True(t, settled.IndexUpdated)
	assert.True(t, settled.UserUpdated)
	assert.Equal(t, uint64(10_000), settled.Accrued.Uint64())
	assert.Equal(t, uint64(10_000), settled.Unclaimed.Uint64())

	idx, _ := svc.UserIndex(alice, asset)
	data, _ := svc.Asset(asset)
	assert.Equal(t, data.Index, idx)
	assert.Equal(t, uint64(140), data.LastUpdateTimestamp)

	claimable, err := svc.Claimable(alice, asset, stake.Ether(25), total, 180)
	require.NoError(t, err)
	assert.Equal(t, uint64(20_000), claimable.Uint64())

	_, _, err = svc.Claim(alice, asset, stake.Ether(25), total, uint256.NewInt(20_001), 180)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	paid, _, err := svc.Claim(alice, asset, stake.Ether(25), total, uint256.NewInt(5_000), 180)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), paid.Uint64())

	paid, settled, err = svc.Claim(alice, asset, stake.Ether(25), total, stake.MaxAmount(), 180)
	require.NoError(t, err)
	assert.Equal(t, uint64(15_000), paid.Uint64())
	assert.True(t, settled.Unclaimed.IsZero())

	paid, _, err = svc.Claim(alice, asset, stake.Ether(25), total, new(uint256.Int), 180)
	require.NoError(t, err)
	assert.True(t, paid.IsZero())
}

func TestService_NoEmission(t *testing.T) {
	svc := newSvc(t, 1_000_000)

	_, err := svc.SettleAccount(bob, asset, new(uint256.Int), stake.Ether(50), 10)
	require.NoError(t, err)
	paid, _, err := svc.Claim(bob, asset, stake.Ether(50), stake.Ether(50), stake.MaxAmount(), 1000)
	require.NoError(t, err)
	assert.True(t, paid.IsZero())

	data, _ := svc.Asset(asset)
	assert.True(t, data.Index.IsZero())
}

func TestService_IndexNonDecreasing(t *testing.T) {
	svc := newSvc(t, 500)
	total := uint256.NewInt(7)
	_, _, err := svc.ConfigureAsset(asset, uint256.NewInt(3), total, 0)
	require.NoError(t, err)

	prev := new(uint256.Int)
	for now := uint64(1); now < 1000; now += 37 {
		idx, _, err := svc.UpdateAssetIndex(asset, total, now)
		require.NoError(t, err)
		assert.False(t, idx.Lt(prev))
		prev = idx
	}
	// frozen after the distribution end
	idx, updated, err := svc.UpdateAssetIndex(asset, total, 2000)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, prev, idx)
	assert.False(t, idx.IsZero())
}
