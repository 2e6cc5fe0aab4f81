// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)
	assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())

	noPrefix, err := ParseAddress("7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)
	assert.Equal(t, addr, noPrefix)

	_, err = ParseAddress("0x1234")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseAddress("1x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.EqualError(t, err, "invalid prefix")

	assert.True(t, Address{}.IsZero())
	assert.False(t, addr.IsZero())
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("alice"))

	data, err := json.Marshal(&addr)
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)

	text, err := addr.MarshalText()
	require.NoError(t, err)
	var fromText Address
	require.NoError(t, fromText.UnmarshalText(text))
	assert.Equal(t, addr, fromText)
}

func TestBlake2bIsPositional(t *testing.T) {
	a := Blake2b([]byte("a"), []byte("b"))
	b := Blake2b([]byte("b"), []byte("a"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Blake2b([]byte("a"), []byte("b")))
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
}

func TestPowerType(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want PowerType
	}{
		{"0", Voting},
		{"1", Proposition},
		{"voting", Voting},
		{"Proposition", Proposition},
	} {
		got, err := ParsePowerType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParsePowerType("2")
	assert.Error(t, err)
	assert.False(t, PowerType(2).Valid())
	assert.Equal(t, "power(7)", PowerType(7).String())
}

func TestMaxAmount(t *testing.T) {
	assert.True(t, IsMax(MaxAmount()))
	assert.False(t, IsMax(Ether(1)))
	assert.False(t, IsMax(nil))

	m := MaxAmount()
	m.SetUint64(1)
	assert.True(t, IsMax(MaxAmount()), "sentinel must not be shared")
}
