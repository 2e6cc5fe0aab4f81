// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/stake"
	"github.com/vechain/stakeledger/storage"
)

var (
	slotAssets     = storage.Slot("reward-assets")
	slotUserIndex  = storage.Slot("reward-user-index")
	slotUnclaimed  = storage.Slot("rewards-to-claim")
	slotDistribEnd = storage.Slot("distribution-end")
)

// Settlement describes what settling an account changed.
type Settlement struct {
	AssetIndex   *uint256.Int
	IndexUpdated bool
	UserUpdated  bool
	Accrued      *uint256.Int
	Unclaimed    *uint256.Int
}

// Service accrues emission per staked unit through a global index per asset
// and a snapshot of it per account.
type Service struct {
	assets          *storage.Mapping[stake.Address, *AssetData]
	userIndex       *storage.Mapping[userAssetKey, *uint256.Int]
	unclaimed       *storage.Mapping[stake.Address, *uint256.Int]
	distributionEnd *storage.Raw[uint64]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		assets:          storage.NewMapping[stake.Address, *AssetData](sctx, slotAssets),
		userIndex:       storage.NewMapping[userAssetKey, *uint256.Int](sctx, slotUserIndex),
		unclaimed:       storage.NewMapping[stake.Address, *uint256.Int](sctx, slotUnclaimed),
		distributionEnd: storage.NewRaw[uint64](sctx, slotDistribEnd),
	}
}

// DistributionEnd returns the timestamp after which the index stops growing.
func (s *Service) DistributionEnd() (uint64, error) {
	return s.distributionEnd.Get()
}

func (s *Service) SetDistributionEnd(end uint64) error {
	return s.distributionEnd.Set(end)
}

// Asset returns the distribution state of asset.
func (s *Service) Asset(asset stake.Address) (*AssetData, error) {
	data, err := s.assets.Get(asset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get asset data")
	}
	return data.normalize(), nil
}

// UserIndex returns the index snapshot of user for asset.
func (s *Service) UserIndex(user, asset stake.Address) (*uint256.Int, error) {
	idx, err := s.userIndex.Get(userAssetKey{user, asset})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user index")
	}
	return idx, nil
}

// UnclaimedRewards returns the rewards settled to user and not claimed yet.
func (s *Service) UnclaimedRewards(user stake.Address) (*uint256.Int, error) {
	v, err := s.unclaimed.Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unclaimed rewards")
	}
	return v, nil
}

// UpdateAssetIndex advances the index of asset to now.
// The last update timestamp is moved to now even when the index is unchanged.
func (s *Service) UpdateAssetIndex(asset stake.Address, totalStaked *uint256.Int, now uint64) (*uint256.Int, bool, error) {
	data, err := s.Asset(asset)
	if err != nil {
		return nil, false, err
	}
	end, err := s.DistributionEnd()
	if err != nil {
		return nil, false, err
	}
	newIndex, err := AssetIndex(data, totalStaked, now, end)
	if err != nil {
		return nil, false, err
	}
	updated := !newIndex.Eq(data.Index)
	if data.LastUpdateTimestamp == now && !updated {
		return newIndex, false, nil
	}
	data.Index = newIndex
	data.LastUpdateTimestamp = now
	if err := s.assets.Set(asset, data); err != nil {
		return nil, false, errors.Wrap(err, "failed to set asset data")
	}
	return newIndex, updated, nil
}

// SettleAccount refreshes the asset index and moves what user earned with
// balance since its last snapshot into its unclaimed rewards.
// balance must be the value before any pending change.
func (s *Service) SettleAccount(user, asset stake.Address, balance, totalStaked *uint256.Int, now uint64) (*Settlement, error) {
	newIndex, indexUpdated, err := s.UpdateAssetIndex(asset, totalStaked, now)
	if err != nil {
		return nil, err
	}
	userIndex, err := s.UserIndex(user, asset)
	if err != nil {
		return nil, err
	}
	unclaimed, err := s.UnclaimedRewards(user)
	if err != nil {
		return nil, err
	}

	res := &Settlement{
		AssetIndex:   newIndex,
		IndexUpdated: indexUpdated,
		Accrued:      new(uint256.Int),
		Unclaimed:    unclaimed,
	}
	if userIndex.Eq(newIndex) {
		return res, nil
	}
	if !balance.IsZero() {
		if res.Accrued, err = Accrued(balance, newIndex, userIndex); err != nil {
			return nil, err
		}
	}
	if err := s.userIndex.Set(userAssetKey{user, asset}, newIndex); err != nil {
		return nil, errors.Wrap(err, "failed to set user index")
	}
	res.UserUpdated = true

	if !res.Accrued.IsZero() {
		if _, overflow := unclaimed.AddOverflow(unclaimed, res.Accrued); overflow {
			return nil, reverts.ErrOverflow
		}
		if err := s.unclaimed.Set(user, unclaimed); err != nil {
			return nil, errors.Wrap(err, "failed to set unclaimed rewards")
		}
	}
	return res, nil
}

// Claim settles user and deducts the claimed amount from its unclaimed rewards.
// stake.MaxAmount claims everything. Requests above the unclaimed rewards are rejected.
func (s *Service) Claim(user, asset stake.Address, balance, totalStaked, amount *uint256.Int, now uint64) (*uint256.Int, *Settlement, error) {
	settled, err := s.SettleAccount(user, asset, balance, totalStaked, now)
	if err != nil {
		return nil, nil, err
	}
	unclaimed := settled.Unclaimed

	toClaim := new(uint256.Int).Set(amount)
	if stake.IsMax(amount) {
		toClaim.Set(unclaimed)
	}
	if toClaim.Gt(unclaimed) {
		return nil, nil, reverts.Newf(reverts.KindInvalidAmount, "claim exceeds unclaimed rewards")
	}
	if toClaim.IsZero() {
		return toClaim, settled, nil
	}
	remaining := new(uint256.Int).Sub(unclaimed, toClaim)
	if err := s.unclaimed.Set(user, remaining); err != nil {
		return nil, nil, errors.Wrap(err, "failed to set unclaimed rewards")
	}
	settled.Unclaimed = remaining
	return toClaim, settled, nil
}

// ConfigureAsset brings the index of asset up to now with totalStaked and
// then changes its emission.
func (s *Service) ConfigureAsset(asset stake.Address, emission, totalStaked *uint256.Int, now uint64) (*uint256.Int, bool, error) {
	newIndex, updated, err := s.UpdateAssetIndex(asset, totalStaked, now)
	if err != nil {
		return nil, false, err
	}
	data, err := s.Asset(asset)
	if err != nil {
		return nil, false, err
	}
	data.EmissionPerSecond = new(uint256.Int).Set(emission)
	if err := s.assets.Set(asset, data); err != nil {
		return nil, false, errors.Wrap(err, "failed to set asset data")
	}
	return newIndex, updated, nil
}

// Claimable returns unclaimed rewards of user plus what it accrued up to now.
func (s *Service) Claimable(user, asset stake.Address, balance, totalStaked *uint256.Int, now uint64) (*uint256.Int, error) {
	data, err := s.Asset(asset)
	if err != nil {
		return nil, err
	}
	end, err := s.DistributionEnd()
	if err != nil {
		return nil, err
	}
	index, err := AssetIndex(data, totalStaked, now, end)
	if err != nil {
		return nil, err
	}
	userIndex, err := s.UserIndex(user, asset)
	if err != nil {
		return nil, err
	}
	accrued, err := Accrued(balance, index, userIndex)
	if err != nil {
		return nil, err
	}
	unclaimed, err := s.UnclaimedRewards(user)
	if err != nil {
		return nil, err
	}
	total, overflow := new(uint256.Int).AddOverflow(unclaimed, accrued)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	return total, nil
}
