// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/stake"
	"github.com/vechain/stakeledger/test/datagen"
)

func TestRandomSequenceInvariants(t *testing.T) {
	l := newTestLedger(t, Options{})
	accounts := []stake.Address{alice, bob, carol}

	number, now := uint64(1), uint64(initTime)
	for i := 0; i < 200; i++ {
		env := at(accounts[datagen.RandIntN(len(accounts))], number, now)
		other := accounts[datagen.RandIntN(len(accounts))]

		switch datagen.RandIntN(3) {
		case 0:
			balance, err := l.UnderlyingBalanceOf(env.Caller)
			require.NoError(t, err)
			if balance.IsZero() {
				break
			}
			_, err = l.Stake(env, other, datagen.RandAmount(balance.Uint64()))
			require.NoError(t, err)
		case 1:
			balance, err := l.BalanceOf(env.Caller)
			require.NoError(t, err)
			if balance.IsZero() {
				break
			}
			_, err = l.Transfer(env, other, datagen.RandAmount(balance.Uint64()))
			require.NoError(t, err)
		case 2:
			typ := stake.PowerTypes()[datagen.RandIntN(2)]
			_, err := l.DelegateByType(env, other, typ)
			require.NoError(t, err)
		}

		number += uint64(datagen.RandIntN(2))
		now += uint64(datagen.RandIntN(10))

		sum := new(uint256.Int)
		for _, a := range accounts {
			b, err := l.BalanceOf(a)
			require.NoError(t, err)
			sum.Add(sum, b)
		}
		total, err := l.TotalSupply()
		require.NoError(t, err)
		require.Equal(t, total, sum, "step %d", i)

		clock, err := l.LastClock()
		require.NoError(t, err)
		for _, typ := range stake.PowerTypes() {
			power := new(uint256.Int)
			for _, a := range accounts {
				current, err := l.PowerCurrent(a, typ)
				require.NoError(t, err)
				atHead, err := l.PowerAtBlock(a, typ, clock.Number)
				require.NoError(t, err)
				assert.Equal(t, current, atHead)
				power.Add(power, current)
			}
			require.Equal(t, total, power, "step %d %v", i, typ)
		}
	}
	assertUnderlying(t, l, vault, 1000000)
}
