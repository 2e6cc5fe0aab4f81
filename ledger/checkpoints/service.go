// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoints

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/storage"
)

var (
	slotCounts = storage.Slot("checkpoint-counts")
	slotItems  = storage.Slot("checkpoints")
)

// Service stores per account and power type histories as growable arrays.
// Block numbers within a history are strictly increasing.
type Service struct {
	counts *storage.Mapping[Key, uint64]
	items  *storage.Mapping[itemKey, *Checkpoint]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		counts: storage.NewMapping[Key, uint64](sctx, slotCounts),
		items:  storage.NewMapping[itemKey, *Checkpoint](sctx, slotItems),
	}
}

// Len returns the number of checkpoints of key.
func (s *Service) Len(key Key) (uint64, error) {
	n, err := s.counts.Get(key)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get checkpoint count")
	}
	return n, nil
}

// Get returns the i-th checkpoint of key.
func (s *Service) Get(key Key, i uint64) (*Checkpoint, error) {
	cp, err := s.items.Get(itemKey{key, i})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get checkpoint")
	}
	if cp.Value == nil {
		cp.Value = new(uint256.Int)
	}
	return cp, nil
}

// Latest returns the head value of key, zero if there is no checkpoint.
func (s *Service) Latest(key Key) (*uint256.Int, error) {
	n, err := s.Len(key)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return new(uint256.Int), nil
	}
	cp, err := s.Get(key, n-1)
	if err != nil {
		return nil, err
	}
	return cp.Value, nil
}

// Write records value for key at block.
// Writing at the block of the head replaces the head value.
func (s *Service) Write(key Key, block uint64, value *uint256.Int) error {
	n, err := s.Len(key)
	if err != nil {
		return err
	}
	if n > 0 {
		head, err := s.Get(key, n-1)
		if err != nil {
			return err
		}
		if block < head.Block {
			return reverts.Newf(reverts.KindInvalidBlockNumber, "checkpoint before head")
		}
		if block == head.Block {
			head.Value = new(uint256.Int).Set(value)
			return s.items.Set(itemKey{key, n - 1}, head)
		}
	}
	if err := s.items.Set(itemKey{key, n}, &Checkpoint{Block: block, Value: new(uint256.Int).Set(value)}); err != nil {
		return errors.Wrap(err, "failed to set checkpoint")
	}
	return s.counts.Set(key, n+1)
}

// At returns the value of key as of block, the value of the latest checkpoint
// at or before block, or zero. Blocks after current are rejected.
func (s *Service) At(key Key, block, current uint64) (*uint256.Int, error) {
	if block > current {
		return nil, reverts.ErrInvalidBlockNumber
	}
	n, err := s.Len(key)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return new(uint256.Int), nil
	}

	head, err := s.Get(key, n-1)
	if err != nil {
		return nil, err
	}
	if head.Block <= block {
		return head.Value, nil
	}
	first, err := s.Get(key, 0)
	if err != nil {
		return nil, err
	}
	if first.Block > block {
		return new(uint256.Int), nil
	}

	// invariant: items[lower].Block <= block < items[upper].Block
	lower, upper := uint64(0), n-1
	for upper-lower > 1 {
		mid := lower + (upper-lower)/2
		cp, err := s.Get(key, mid)
		if err != nil {
			return nil, err
		}
		if cp.Block <= block {
			lower = mid
		} else {
			upper = mid
		}
	}
	cp, err := s.Get(key, lower)
	if err != nil {
		return nil, err
	}
	return cp.Value, nil
}
