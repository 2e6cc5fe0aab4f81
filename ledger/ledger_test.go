// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/stake"
)

var (
	ledgerAddr = stake.BytesToAddress([]byte("stkAAVE"))
	underlying = stake.BytesToAddress([]byte("AAVE"))
	vault      = stake.BytesToAddress([]byte("vault"))
	manager    = stake.BytesToAddress([]byte("manager"))

	alice = stake.BytesToAddress([]byte("alice"))
	bob   = stake.BytesToAddress([]byte("bob"))
	carol = stake.BytesToAddress([]byte("carol"))
)

const (
	initTime        = 1000
	cooldownSeconds = 100
	unstakeWindow   = 50
)

func testGenesis() *Genesis {
	return &Genesis{
		Name:                 "Staked Aave",
		Symbol:               "stkAAVE",
		Address:              ledgerAddr,
		Underlying:           underlying,
		RewardsVault:         vault,
		EmissionManager:      manager,
		CooldownSeconds:      cooldownSeconds,
		UnstakeWindow:        unstakeWindow,
		DistributionDuration: 1_000_000,
		ChainID:              1,
		Allocations: []Allocation{
			{Account: alice, Amount: "1000"},
			{Account: bob, Amount: "1000"},
			{Account: carol, Amount: "1000"},
			{Account: vault, Amount: "1000000"},
		},
	}
}

func newTestDB(t *testing.T) kv.Store {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestLedger(t *testing.T, opts Options) *Ledger {
	db := newTestDB(t)
	_, err := Initialize(db, testGenesis(), initTime)
	require.NoError(t, err)
	l, err := Open(db, opts)
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func at(caller stake.Address, number, time uint64) Env {
	return Env{Caller: caller, Number: number, Time: time}
}

func amount(n uint64) *uint256.Int {
	return uint256.NewInt(n)
}

func eventNames(r *Receipt) []string {
	names := make([]string, 0, len(r.Events))
	for _, ev := range r.Events {
		names = append(names, ev.Name())
	}
	return names
}

// assertions

func assertBalance(t *testing.T, l *Ledger, account stake.Address, want uint64) {
	t.Helper()
	b, err := l.BalanceOf(account)
	require.NoError(t, err)
	assert.Equal(t, want, b.Uint64(), "staked balance of %v", account)
}

func assertUnderlying(t *testing.T, l *Ledger, account stake.Address, want uint64) {
	t.Helper()
	b, err := l.UnderlyingBalanceOf(account)
	require.NoError(t, err)
	assert.Equal(t, want, b.Uint64(), "underlying balance of %v", account)
}

func assertPower(t *testing.T, l *Ledger, account stake.Address, typ stake.PowerType, want uint64) {
	t.Helper()
	p, err := l.PowerCurrent(account, typ)
	require.NoError(t, err)
	assert.Equal(t, want, p.Uint64(), "%v power of %v", typ, account)
}

func assertPowerAt(t *testing.T, l *Ledger, account stake.Address, typ stake.PowerType, block, want uint64) {
	t.Helper()
	p, err := l.PowerAtBlock(account, typ, block)
	require.NoError(t, err)
	assert.Equal(t, want, p.Uint64(), "%v power of %v at %d", typ, account, block)
}

func assertCooldown(t *testing.T, l *Ledger, account stake.Address, want uint64) {
	t.Helper()
	start, err := l.CooldownStart(account)
	require.NoError(t, err)
	assert.Equal(t, want, start, "cooldown of %v", account)
}

func TestInitialize(t *testing.T) {
	db := newTestDB(t)

	_, err := Open(db, Options{})
	assert.ErrorIs(t, err, ErrNotInitialized)

	params, err := Initialize(db, testGenesis(), initTime)
	require.NoError(t, err)
	assert.Equal(t, uint64(initTime+1_000_000), params.DistributionEnd)
	assert.Equal(t, uint8(DefaultDecimals), params.Decimals)
	assert.Equal(t, uint64(Revision), params.Revision)

	_, err = Initialize(db, testGenesis(), initTime)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	l, err := Open(db, Options{})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, *params, l.Params())
	assertUnderlying(t, l, alice, 1000)
	assertUnderlying(t, l, vault, 1000000)

	clock, err := l.LastClock()
	require.NoError(t, err)
	assert.Equal(t, &Clock{Number: 0, Time: initTime}, clock)
}

func TestGenesisValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Genesis)
	}{
		{"no address", func(g *Genesis) { g.Address = stake.Address{} }},
		{"no underlying", func(g *Genesis) { g.Underlying = stake.Address{} }},
		{"same address", func(g *Genesis) { g.Underlying = g.Address }},
		{"no vault", func(g *Genesis) { g.RewardsVault = stake.Address{} }},
		{"no manager", func(g *Genesis) { g.EmissionManager = stake.Address{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGenesis()
			tt.mutate(g)
			_, err := Initialize(newTestDB(t), g, initTime)
			assert.Error(t, err)
		})
	}

	g := testGenesis()
	g.Allocations = append(g.Allocations, Allocation{Account: alice, Amount: "not a number"})
	_, err := Initialize(newTestDB(t), g, initTime)
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want *uint256.Int
	}{
		{"", amount(0)},
		{"42", amount(42)},
		{"0x2a", amount(42)},
		{"max", stake.MaxAmount()},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseAmount("-1")
	assert.Error(t, err)
}

func TestStakeRedeemRoundTrip(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)
	assertBalance(t, l, alice, 100)
	assertUnderlying(t, l, alice, 900)
	assertUnderlying(t, l, ledgerAddr, 100)
	for _, typ := range stake.PowerTypes() {
		assertPower(t, l, alice, typ, 100)
	}

	_, err = l.Redeem(at(alice, 2, 1000), alice, stake.MaxAmount())
	assert.ErrorIs(t, err, reverts.ErrInsufficientCooldown)

	_, err = l.Cooldown(at(alice, 2, 1010))
	require.NoError(t, err)
	assertCooldown(t, l, alice, 1010)

	_, err = l.Redeem(at(alice, 3, 1109), alice, amount(40))
	assert.ErrorIs(t, err, reverts.ErrInsufficientCooldown)

	// the window opens exactly at start + cooldown
	_, err = l.Redeem(at(alice, 3, 1110), alice, amount(40))
	require.NoError(t, err)
	assertBalance(t, l, alice, 60)
	assertUnderlying(t, l, alice, 940)
	assertCooldown(t, l, alice, 1010)

	// the last second of the window, redeeming more than the balance
	_, err = l.Redeem(at(alice, 4, 1160), alice, amount(1000))
	require.NoError(t, err)
	assertBalance(t, l, alice, 0)
	assertUnderlying(t, l, alice, 1000)
	assertUnderlying(t, l, ledgerAddr, 0)
	assertCooldown(t, l, alice, 0)
	for _, typ := range stake.PowerTypes() {
		assertPower(t, l, alice, typ, 0)
	}

	total, err := l.TotalSupply()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestRedeemRejects(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Cooldown(at(alice, 1, 1000))
	assert.ErrorIs(t, err, reverts.ErrInvalidBalanceOnCooldown)

	_, err = l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)
	_, err = l.Cooldown(at(alice, 1, 1000))
	require.NoError(t, err)

	_, err = l.Redeem(at(alice, 2, 1100), alice, amount(0))
	assert.ErrorIs(t, err, reverts.ErrInvalidZeroAmount)
	_, err = l.Redeem(at(alice, 2, 1100), stake.Address{}, amount(1))
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)

	_, err = l.Redeem(at(alice, 2, 1151), alice, amount(1))
	assert.ErrorIs(t, err, reverts.ErrUnstakeWindowFinished)
	assertBalance(t, l, alice, 100)

	// staking onto a stale cooldown restarts it
	_, err = l.Stake(at(alice, 3, 1200), alice, amount(100))
	require.NoError(t, err)
	assertCooldown(t, l, alice, 1200)
}

func TestStakeRejects(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(0))
	assert.ErrorIs(t, err, reverts.ErrInvalidZeroAmount)

	_, err = l.Stake(at(alice, 1, 1000), stake.Address{}, amount(1))
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)

	_, err = l.Stake(at(alice, 1, 1000), alice, amount(1001))
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)
	assertUnderlying(t, l, alice, 1000)
	assertBalance(t, l, alice, 0)

	// staking on behalf of another account
	_, err = l.Stake(at(alice, 1, 1000), bob, amount(10))
	require.NoError(t, err)
	assertBalance(t, l, bob, 10)
	assertUnderlying(t, l, alice, 990)
	assertUnderlying(t, l, bob, 1000)
}

func TestStakeMergesCooldown(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)
	_, err = l.Cooldown(at(alice, 1, 1000))
	require.NoError(t, err)

	// (100*1000 + 100*1100) / 200
	_, err = l.Stake(at(alice, 2, 1100), alice, amount(100))
	require.NoError(t, err)
	assertCooldown(t, l, alice, 1050)

	// no cooldown stays inactive
	_, err = l.Stake(at(bob, 2, 1100), bob, amount(100))
	require.NoError(t, err)
	assertCooldown(t, l, bob, 0)
}

func TestClaimRewards(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)

	_, err = l.ConfigureAssets(at(alice, 1, 1000), []AssetConfig{{Asset: ledgerAddr, EmissionPerSecond: amount(10), TotalStaked: amount(100)}})
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	r, err := l.ConfigureAssets(at(manager, 1, 1000), []AssetConfig{{Asset: ledgerAddr, EmissionPerSecond: amount(10), TotalStaked: amount(100)}})
	require.NoError(t, err)
	assert.Equal(t, []string{"AssetConfigUpdated"}, eventNames(r))

	asset, err := l.Asset(ledgerAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), asset.EmissionPerSecond.Uint64())

	claimable, err := l.TotalRewardsBalance(alice, 1100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), claimable.Uint64())

	paid, r, err := l.ClaimRewards(at(alice, 2, 1100), carol, stake.MaxAmount())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), paid.Uint64())
	assert.Equal(t, []string{"AssetIndexUpdated", "UserIndexUpdated", "RewardsAccrued", "RewardsClaimed"}, eventNames(r))
	assertUnderlying(t, l, carol, 2000)
	assertUnderlying(t, l, vault, 999000)

	// 1e19 per staked unit after 100 seconds
	index, err := l.UserAssetIndex(alice, ledgerAddr)
	require.NoError(t, err)
	want, _ := uint256.FromDecimal("10000000000000000000")
	assert.Equal(t, want, index)

	unclaimed, err := l.StakerRewardsToClaim(alice)
	require.NoError(t, err)
	assert.True(t, unclaimed.IsZero())

	_, _, err = l.ClaimRewards(at(alice, 3, 1100), alice, amount(1))
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	// a partial claim leaves the rest
	paid, _, err = l.ClaimRewards(at(alice, 3, 1110), alice, amount(40))
	require.NoError(t, err)
	assert.Equal(t, uint64(40), paid.Uint64())
	unclaimed, err = l.StakerRewardsToClaim(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), unclaimed.Uint64())
}

func TestClaimWithoutEmission(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)

	paid, r, err := l.ClaimRewards(at(alice, 2, 5000), alice, stake.MaxAmount())
	require.NoError(t, err)
	assert.True(t, paid.IsZero())
	assert.Empty(t, r.Events)
	assertUnderlying(t, l, vault, 1000000)

	_, _, err = l.ClaimRewards(at(alice, 2, 5000), stake.Address{}, stake.MaxAmount())
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)
}

func TestTransferCarriesCooldown(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)
	_, err = l.Cooldown(at(alice, 1, 1000))
	require.NoError(t, err)

	_, err = l.Transfer(at(alice, 2, 1010), bob, amount(100))
	require.NoError(t, err)
	assertCooldown(t, l, bob, 1000)
	assertCooldown(t, l, alice, 0)
	assertBalance(t, l, bob, 100)
	assertBalance(t, l, alice, 0)
	assertPower(t, l, bob, stake.Voting, 100)
	assertPower(t, l, alice, stake.Voting, 0)

	_, err = l.Redeem(at(bob, 3, 1100), bob, stake.MaxAmount())
	require.NoError(t, err)
	assertUnderlying(t, l, bob, 1100)

	_, err = l.Transfer(at(alice, 3, 1100), bob, amount(1))
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)
	_, err = l.Transfer(at(alice, 3, 1100), stake.Address{}, amount(0))
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)
}

func TestTransferCooldownCases(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)
	_, err = l.Stake(at(carol, 1, 1000), carol, amount(10))
	require.NoError(t, err)
	_, err = l.Cooldown(at(carol, 1, 1000))
	require.NoError(t, err)
	_, err = l.Stake(at(bob, 1, 1000), bob, amount(10))
	require.NoError(t, err)
	_, err = l.Cooldown(at(bob, 1, 1000))
	require.NoError(t, err)

	// a fresh receiver keeps its cooldown
	_, err = l.Transfer(at(alice, 2, 1020), carol, amount(50))
	require.NoError(t, err)
	assertCooldown(t, l, carol, 1000)

	// a stale receiver without a fresh sender loses it
	_, err = l.Transfer(at(alice, 3, 1200), bob, amount(10))
	require.NoError(t, err)
	assertCooldown(t, l, bob, 0)

	// self transfer changes nothing
	r, err := l.Transfer(at(carol, 4, 1200), carol, amount(60))
	require.NoError(t, err)
	assert.Equal(t, []string{"Transfer"}, eventNames(r))
	assertCooldown(t, l, carol, 1000)
	assertBalance(t, l, carol, 60)
}

func TestZeroTransferKeepsCooldown(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)
	_, err = l.Cooldown(at(alice, 1, 1000))
	require.NoError(t, err)

	r, err := l.Transfer(at(alice, 2, 1110), carol, amount(0))
	require.NoError(t, err)
	assert.Contains(t, eventNames(r), "Transfer")
	assertCooldown(t, l, alice, 1000)
	assertCooldown(t, l, carol, 0)

	// funds that never cooled cannot leave through the empty receiver
	_, err = l.Stake(at(bob, 2, 1110), bob, amount(500))
	require.NoError(t, err)
	_, err = l.Transfer(at(bob, 2, 1110), carol, amount(500))
	require.NoError(t, err)
	assertCooldown(t, l, carol, 0)

	_, err = l.Redeem(at(carol, 2, 1110), carol, amount(500))
	assert.ErrorIs(t, err, reverts.ErrInsufficientCooldown)
	assertBalance(t, l, carol, 500)
}

func TestDelegation(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(4))
	require.NoError(t, err)

	r, err := l.Delegate(at(alice, 2, 1001), bob)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DelegateChanged", "DelegatedPowerChanged", "DelegatedPowerChanged",
		"DelegateChanged", "DelegatedPowerChanged", "DelegatedPowerChanged",
	}, eventNames(r))

	for _, typ := range stake.PowerTypes() {
		assertPower(t, l, alice, typ, 0)
		assertPower(t, l, bob, typ, 4)
		assertPowerAt(t, l, alice, typ, 1, 4)
		assertPowerAt(t, l, bob, typ, 1, 0)
		assertPowerAt(t, l, bob, typ, 2, 4)
		assertPowerAt(t, l, alice, typ, 0, 0)

		d, err := l.DelegateeByType(alice, typ)
		require.NoError(t, err)
		assert.Equal(t, bob, d)
		delegating, err := l.IsDelegating(alice, typ)
		require.NoError(t, err)
		assert.True(t, delegating)
	}

	// delegating to the current holder is a no-op
	r, err = l.Delegate(at(alice, 3, 1002), bob)
	require.NoError(t, err)
	assert.Empty(t, r.Events)

	// later balance changes follow the delegation
	_, err = l.Stake(at(alice, 3, 1002), alice, amount(1))
	require.NoError(t, err)
	assertPower(t, l, bob, stake.Voting, 5)

	_, err = l.Transfer(at(alice, 4, 1003), carol, amount(2))
	require.NoError(t, err)
	assertPower(t, l, bob, stake.Voting, 3)
	assertPower(t, l, carol, stake.Voting, 2)

	_, err = l.DelegateByType(at(alice, 5, 1004), alice, stake.Voting)
	require.NoError(t, err)
	assertPower(t, l, alice, stake.Voting, 3)
	assertPower(t, l, bob, stake.Voting, 0)
	assertPower(t, l, bob, stake.Proposition, 3)
	delegating, err := l.IsDelegating(alice, stake.Voting)
	require.NoError(t, err)
	assert.False(t, delegating)

	_, err = l.PowerAtBlock(alice, stake.Voting, 6)
	assert.ErrorIs(t, err, reverts.ErrInvalidBlockNumber)
	_, err = l.DelegateByType(at(alice, 5, 1004), bob, stake.PowerType(7))
	assert.ErrorIs(t, err, reverts.ErrInvalidPowerType)
	_, err = l.Delegate(at(alice, 5, 1004), stake.Address{})
	assert.ErrorIs(t, err, reverts.ErrInvalidDelegatee)
}

type hook struct {
	fail  bool
	calls int
}

func (h *hook) OnTransfer(_, _ stake.Address, _ *uint256.Int) error {
	h.calls++
	if h.fail {
		return errors.New("hook failed")
	}
	return nil
}

func TestFailedOperationLeavesNoTrace(t *testing.T) {
	h := &hook{fail: true}
	l := newTestLedger(t, Options{Hook: h})

	ch := make(chan *Receipt, 10)
	sub := l.SubscribeReceipts(ch)
	defer sub.Unsubscribe()

	_, err := l.Stake(at(alice, 1, 1000), alice, amount(100))
	assert.EqualError(t, err, "hook failed")
	assert.False(t, reverts.IsRevertErr(err))
	assert.Equal(t, 1, h.calls)

	assertUnderlying(t, l, alice, 1000)
	assertBalance(t, l, alice, 0)
	assertPower(t, l, alice, stake.Voting, 0)
	clock, err := l.LastClock()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), clock.Number)
	select {
	case r := <-ch:
		t.Fatalf("unexpected receipt %v", r.Op)
	default:
	}

	h.fail = false
	_, err = l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)
	r := <-ch
	assert.Equal(t, "stake", r.Op)
	assert.Equal(t, uint64(1), r.Number)
	assert.Equal(t, []string{"DelegatedPowerChanged", "DelegatedPowerChanged", "Transfer", "Staked"}, eventNames(r))
	assertBalance(t, l, alice, 100)
}

func TestClockRegression(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.Stake(at(alice, 5, 2000), alice, amount(10))
	require.NoError(t, err)

	_, err = l.Cooldown(at(alice, 4, 2000))
	assert.ErrorIs(t, err, reverts.ErrClockRegression)
	_, err = l.Cooldown(at(alice, 5, 1999))
	assert.ErrorIs(t, err, reverts.ErrClockRegression)

	_, err = l.Cooldown(at(alice, 5, 2000))
	require.NoError(t, err)
}

func TestReopen(t *testing.T) {
	db := newTestDB(t)
	_, err := Initialize(db, testGenesis(), initTime)
	require.NoError(t, err)

	l, err := Open(db, Options{})
	require.NoError(t, err)
	_, err = l.Stake(at(alice, 1, 1000), alice, amount(100))
	require.NoError(t, err)
	_, err = l.Delegate(at(alice, 2, 1001), bob)
	require.NoError(t, err)
	l.Close()

	l, err = Open(db, Options{})
	require.NoError(t, err)
	defer l.Close()
	assertBalance(t, l, alice, 100)
	assertPower(t, l, bob, stake.Proposition, 100)
	assertPowerAt(t, l, alice, stake.Proposition, 1, 100)

	clock, err := l.LastClock()
	require.NoError(t, err)
	assert.Equal(t, &Clock{Number: 2, Time: 1001}, clock)
}

func TestMintUnderlying(t *testing.T) {
	l := newTestLedger(t, Options{})

	_, err := l.MintUnderlying(at(alice, 1, 1000), alice, amount(1))
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	_, err = l.MintUnderlying(at(manager, 1, 1000), alice, amount(0))
	assert.ErrorIs(t, err, reverts.ErrInvalidZeroAmount)

	r, err := l.MintUnderlying(at(manager, 1, 1000), alice, amount(5))
	require.NoError(t, err)
	assert.Equal(t, []string{"Minted"}, eventNames(r))
	assertUnderlying(t, l, alice, 1005)
}
