// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/stake"
)

// Raw stores a single rlp encoded value at a fixed slot.
type Raw[V any] struct {
	context *Context
	pos     stake.Bytes32
}

func NewRaw[V any](context *Context, pos stake.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: pos}
}

func (r *Raw[V]) Get() (value V, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (r *Raw[V]) Set(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Uint256 is an amount stored at a fixed slot. Absent reads as zero.
type Uint256 struct {
	raw *Raw[*uint256.Int]
}

func NewUint256(context *Context, pos stake.Bytes32) *Uint256 {
	return &Uint256{raw: NewRaw[*uint256.Int](context, pos)}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	return u.raw.Get()
}

func (u *Uint256) Set(value *uint256.Int) error {
	return u.raw.Set(value)
}

// Add increases the stored value, failing with ErrOverflow on wrap around.
func (u *Uint256) Add(value *uint256.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	if _, overflow := v.AddOverflow(v, value); overflow {
		return ErrOverflow
	}
	return u.Set(v)
}

// Sub decreases the stored value, failing with ErrUnderflow when value exceeds it.
func (u *Uint256) Sub(value *uint256.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	if _, underflow := v.SubOverflow(v, value); underflow {
		return ErrUnderflow
	}
	return u.Set(v)
}
