// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/stake"
)

// Event is an indexed ledger event.
type Event struct {
	Seq         uint64          `json:"seq"`
	BlockNumber uint64          `json:"blockNumber"`
	BlockTime   uint64          `json:"blockTime"`
	Op          string          `json:"op"`
	Caller      stake.Address   `json:"caller"`
	Index       uint32          `json:"index"`
	Name        string          `json:"name"`
	Accounts    []stake.Address `json:"accounts"`
	Data        json.RawMessage `json:"data"`
}

// Decode returns the ledger event stored in e.
func (e *Event) Decode() (ledger.Event, error) {
	ev := ledger.NewEvent(e.Name)
	if ev == nil {
		return nil, errors.Errorf("unknown event %q", e.Name)
	}
	if err := json.Unmarshal(e.Data, ev); err != nil {
		return nil, errors.Wrapf(err, "decode %v", e.Name)
	}
	return ev, nil
}

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is inclusive on both ends. A To below From leaves the range open.
type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Accounts and Names match any of their entries.
type Filter struct {
	Range    *Range          `json:"range"`
	Accounts []stake.Address `json:"accounts"`
	Names    []string        `json:"names"`
	Order    Order           `json:"order"`
	Options  *Options        `json:"options"`
}
