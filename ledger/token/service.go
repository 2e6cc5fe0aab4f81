// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token keeps fungible balances and their total supply.
// The staked claim token and the underlying asset are both held this way,
// each under its own storage address.
package token

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/stake"
	"github.com/vechain/stakeledger/storage"
)

var (
	slotBalances    = storage.Slot("balances")
	slotTotalSupply = storage.Slot("total-supply")
)

type Service struct {
	balances    *storage.Mapping[stake.Address, *uint256.Int]
	totalSupply *storage.Uint256
}

func New(sctx *storage.Context) *Service {
	return &Service{
		balances:    storage.NewMapping[stake.Address, *uint256.Int](sctx, slotBalances),
		totalSupply: storage.NewUint256(sctx, slotTotalSupply),
	}
}

func (s *Service) BalanceOf(account stake.Address) (*uint256.Int, error) {
	b, err := s.balances.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return b, nil
}

func (s *Service) TotalSupply() (*uint256.Int, error) {
	v, err := s.totalSupply.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total supply")
	}
	return v, nil
}

func (s *Service) setBalance(account stake.Address, balance *uint256.Int) error {
	if balance.IsZero() {
		s.balances.Delete(account)
		return nil
	}
	if err := s.balances.Set(account, balance); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

// Mint creates amount for to.
func (s *Service) Mint(to stake.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return reverts.Newf(reverts.KindInvalidAddress, "mint to the zero address")
	}
	if err := s.totalSupply.Add(amount); err != nil {
		if errors.Is(err, storage.ErrOverflow) {
			return reverts.ErrOverflow
		}
		return err
	}
	b, err := s.BalanceOf(to)
	if err != nil {
		return err
	}
	return s.setBalance(to, b.Add(b, amount))
}

// Burn destroys amount held by from.
func (s *Service) Burn(from stake.Address, amount *uint256.Int) error {
	b, err := s.BalanceOf(from)
	if err != nil {
		return err
	}
	if b.Lt(amount) {
		return reverts.ErrInsufficientBalance
	}
	if err := s.totalSupply.Sub(amount); err != nil {
		return err
	}
	return s.setBalance(from, b.Sub(b, amount))
}

// Transfer moves amount from one account to another.
func (s *Service) Transfer(from, to stake.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return reverts.Newf(reverts.KindInvalidAddress, "transfer to the zero address")
	}
	fromBalance, err := s.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Lt(amount) {
		return reverts.ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	toBalance, err := s.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := s.setBalance(from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	return s.setBalance(to, toBalance.Add(toBalance, amount))
}
