// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_RevertKinds(t *testing.T) {
	err := Newf(KindInvalidNonce, "expected 3")
	assert.Equal(t, "invalid nonce: expected 3", err.Error())
	assert.ErrorIs(t, err, ErrInvalidNonce)
	assert.NotErrorIs(t, err, ErrInvalidSignature)

	wrapped := errors.Wrap(err, "delegate by sig")
	assert.True(t, IsRevertErr(wrapped))
	assert.Equal(t, KindInvalidNonce, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("io")))

	assert.Equal(t, "unstake window finished", ErrUnstakeWindowFinished.Error())

	// plain reverts only match themselves
	other := New("test")
	assert.NotErrorIs(t, other, New("test"))
	assert.ErrorIs(t, other, other)
}
