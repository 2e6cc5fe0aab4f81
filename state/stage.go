// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// Stage abstracts the net slot changes of a state journal.
type Stage struct {
	state   *State
	changes map[storageKey][]byte
	order   []storageKey
}

// Len returns count of distinct slots changed.
func (s *Stage) Len() int {
	return len(s.order)
}

// Commit writes all changes into the store in a single batch.
// The journal of the owning state is cleared only if the write succeeds.
func (s *Stage) Commit() error {
	batch := s.state.store.NewBatch()
	for _, k := range s.order {
		v := s.changes[k]
		var err error
		if len(v) == 0 {
			err = batch.Delete(k.bytes())
		} else {
			err = batch.Put(k.bytes(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	for _, k := range s.order {
		s.state.cache.Add(k, s.changes[k])
	}
	s.state.reset()
	return nil
}
