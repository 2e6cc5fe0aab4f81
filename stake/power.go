// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"fmt"
	"strconv"
	"strings"
)

// PowerType selects one of the two independently delegable governance powers.
type PowerType uint8

const (
	Voting      PowerType = 0
	Proposition PowerType = 1
)

// PowerTypes returns all power types in their canonical order.
func PowerTypes() []PowerType {
	return []PowerType{Voting, Proposition}
}

// Valid reports whether t is a known power type.
func (t PowerType) Valid() bool {
	return t == Voting || t == Proposition
}

func (t PowerType) String() string {
	switch t {
	case Voting:
		return "voting"
	case Proposition:
		return "proposition"
	default:
		return fmt.Sprintf("power(%d)", uint8(t))
	}
}

// ParsePowerType accepts either the numeric form ("0", "1") or the name.
func ParsePowerType(s string) (PowerType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "voting":
		return Voting, nil
	case "proposition":
		return Proposition, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || !PowerType(n).Valid() {
		return 0, fmt.Errorf("invalid power type %q", s)
	}
	return PowerType(n), nil
}
