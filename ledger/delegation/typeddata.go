// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/stake"
)

// DomainVersion is the version field of the signing domain.
const DomainVersion = "1"

var (
	domainTypeHash         = stake.Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	delegateTypeHash       = stake.Keccak256([]byte("Delegate(address delegatee,uint256 nonce,uint256 expiry)"))
	delegateByTypeTypeHash = stake.Keccak256([]byte("DelegateByType(address delegatee,uint256 type,uint256 nonce,uint256 expiry)"))
)

func wordUint(v uint64) []byte {
	b := uint256.NewInt(v).Bytes32()
	return b[:]
}

func wordAddress(a stake.Address) []byte {
	var w [32]byte
	copy(w[12:], a[:])
	return w[:]
}

// DomainSeparator hashes the signing domain of a ledger instance.
func DomainSeparator(name string, chainID uint64, verifyingContract stake.Address) stake.Bytes32 {
	nameHash := stake.Keccak256([]byte(name))
	versionHash := stake.Keccak256([]byte(DomainVersion))
	return stake.Keccak256(
		domainTypeHash[:],
		nameHash[:],
		versionHash[:],
		wordUint(chainID),
		wordAddress(verifyingContract),
	)
}

func digest(domain, structHash stake.Bytes32) stake.Bytes32 {
	return stake.Keccak256([]byte{0x19, 0x01}, domain[:], structHash[:])
}

// DelegateDigest is the message signed to delegate both power types.
func DelegateDigest(domain stake.Bytes32, delegatee stake.Address, nonce, expiry uint64) stake.Bytes32 {
	structHash := stake.Keccak256(
		delegateTypeHash[:],
		wordAddress(delegatee),
		wordUint(nonce),
		wordUint(expiry),
	)
	return digest(domain, structHash)
}

// DelegateByTypeDigest is the message signed to delegate one power type.
func DelegateByTypeDigest(domain stake.Bytes32, delegatee stake.Address, typ stake.PowerType, nonce, expiry uint64) stake.Bytes32 {
	structHash := stake.Keccak256(
		delegateByTypeTypeHash[:],
		wordAddress(delegatee),
		wordUint(uint64(typ)),
		wordUint(nonce),
		wordUint(expiry),
	)
	return digest(domain, structHash)
}
