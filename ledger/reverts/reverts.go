// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the business rule violations of the ledger.
// A revert aborts the whole operation and leaves no trace in state.
package reverts

import (
	"errors"
)

// Kind classifies a revert.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidZeroAmount
	KindInvalidBalanceOnCooldown
	KindInsufficientCooldown
	KindUnstakeWindowFinished
	KindInvalidAmount
	KindInvalidDelegatee
	KindInvalidSignature
	KindInvalidNonce
	KindInvalidExpiration
	KindInvalidBlockNumber
	KindInsufficientBalance
	KindInvalidAddress
	KindUnauthorized
	KindOverflow
	KindInvalidPowerType
	KindClockRegression
)

var kindNames = map[Kind]string{
	KindUnknown:                  "revert",
	KindInvalidZeroAmount:        "invalid zero amount",
	KindInvalidBalanceOnCooldown: "invalid balance on cooldown",
	KindInsufficientCooldown:     "insufficient cooldown",
	KindUnstakeWindowFinished:    "unstake window finished",
	KindInvalidAmount:            "invalid amount",
	KindInvalidDelegatee:         "invalid delegatee",
	KindInvalidSignature:         "invalid signature",
	KindInvalidNonce:             "invalid nonce",
	KindInvalidExpiration:        "invalid expiration",
	KindInvalidBlockNumber:       "invalid block number",
	KindInsufficientBalance:      "insufficient balance",
	KindInvalidAddress:           "invalid address",
	KindUnauthorized:             "unauthorized",
	KindOverflow:                 "overflow",
	KindInvalidPowerType:         "invalid power type",
	KindClockRegression:          "clock regression",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// Sentinels for errors.Is matching.
var (
	ErrInvalidZeroAmount        = &ErrRevert{kind: KindInvalidZeroAmount}
	ErrInvalidBalanceOnCooldown = &ErrRevert{kind: KindInvalidBalanceOnCooldown}
	ErrInsufficientCooldown     = &ErrRevert{kind: KindInsufficientCooldown}
	ErrUnstakeWindowFinished    = &ErrRevert{kind: KindUnstakeWindowFinished}
	ErrInvalidAmount            = &ErrRevert{kind: KindInvalidAmount}
	ErrInvalidDelegatee         = &ErrRevert{kind: KindInvalidDelegatee}
	ErrInvalidSignature         = &ErrRevert{kind: KindInvalidSignature}
	ErrInvalidNonce             = &ErrRevert{kind: KindInvalidNonce}
	ErrInvalidExpiration        = &ErrRevert{kind: KindInvalidExpiration}
	ErrInvalidBlockNumber       = &ErrRevert{kind: KindInvalidBlockNumber}
	ErrInsufficientBalance      = &ErrRevert{kind: KindInsufficientBalance}
	ErrInvalidAddress           = &ErrRevert{kind: KindInvalidAddress}
	ErrUnauthorized             = &ErrRevert{kind: KindUnauthorized}
	ErrOverflow                 = &ErrRevert{kind: KindOverflow}
	ErrInvalidPowerType         = &ErrRevert{kind: KindInvalidPowerType}
	ErrClockRegression          = &ErrRevert{kind: KindClockRegression}
)

type ErrRevert struct {
	kind    Kind
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

// Newf creates a revert of kind with an additional message.
func Newf(kind Kind, message string) *ErrRevert {
	return &ErrRevert{kind: kind, message: message}
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return e.kind.String()
	}
	if e.kind == KindUnknown {
		return e.message
	}
	return e.kind.String() + ": " + e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Is matches reverts of the same kind, so sentinels match detailed reverts.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	if !ok {
		return false
	}
	if t.kind == KindUnknown {
		return e == t
	}
	return t.kind == e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf extracts the kind of a revert, KindUnknown for other errors.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return KindUnknown
}
