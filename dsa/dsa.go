// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package dsa recovers and produces secp256k1 signatures over 32 byte digests.
package dsa

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/stake"
)

// Signer extracts signer.
// sig is 65 bytes [R || S || V], V may be 0/1 or 27/28.
func Signer(digest stake.Bytes32, sig []byte) (stake.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return stake.Address{}, errors.New("invalid signature length")
	}
	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(digest[:], normalized)
	if err != nil {
		return stake.Address{}, err
	}
	return stake.Address(crypto.PubkeyToAddress(*pub)), nil
}

// Sign signs a digest with the raw private key.
func Sign(digest stake.Bytes32, privateKey []byte) ([]byte, error) {
	priv, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(digest[:], priv)
}
