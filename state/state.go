// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/vechain/stakeledger/cache"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/stackedmap"
	"github.com/vechain/stakeledger/stake"
)

// StorageBucket prefixes the committed storage slots in the underlying store.
const StorageBucket kv.Bucket = "s"

const slotCacheSize = 4096

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr stake.Address
	key  stake.Bytes32
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, stake.AddressLength+32)
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

// State manages the ledger state as a set of raw storage slots per address.
// Uncommitted writes live in a stacked journal, committed ones in the kv store.
type State struct {
	db    kv.Store
	store kv.Store
	cache *cache.LRU
	sm    *stackedmap.StackedMap[storageKey, []byte]
}

// New create state object over the given store.
func New(db kv.Store) *State {
	c, _ := cache.NewLRU(slotCacheSize)
	s := &State{
		db:    db,
		store: StorageBucket.NewStore(db),
		cache: c,
	}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.cacheGetter)
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key storageKey) ([]byte, bool, error) {
	v, err := s.cache.GetOrLoad(key, func(any) (any, error) {
		raw, err := s.store.Get(key.bytes())
		if err != nil {
			if s.store.IsNotFound(err) {
				return []byte(nil), nil
			}
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), true, nil
}

// GetRawStorage returns storage value in raw for given address and key.
// An absent slot yields empty raw bytes.
func (s *State) GetRawStorage(addr stake.Address, key stake.Bytes32) ([]byte, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in raw.
// Empty raw value clears the slot.
func (s *State) SetRawStorage(addr stake.Address, key stake.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, key}, bytes.Clone(raw))
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr stake.Address, key stake.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr stake.Address, key stake.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Changes returns the number of slot writes held in the journal.
func (s *State) Changes() int {
	n := 0
	s.sm.Journal(func(storageKey, []byte) bool {
		n++
		return true
	})
	return n
}

// Stage makes a stage object to commit all journaled changes.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	var order []storageKey
	s.sm.Journal(func(k storageKey, v []byte) bool {
		if _, ok := changes[k]; !ok {
			order = append(order, k)
		}
		changes[k] = v
		return true
	})
	return &Stage{state: s, changes: changes, order: order}
}
