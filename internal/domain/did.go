package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// DID represents a deterministic asset identifier derived from the NFT
// contract address and chain id. It is a pure function of its inputs and is
// never stored.
type DID string

// NewDID derives the DID for an asset. The address is checksummed first so
// that casing differences in caller input cannot fork the identifier.
func NewDID(nftAddress string, chainID uint64) DID {
	checksummed := common.HexToAddress(nftAddress).Hex()
	sum := sha256.Sum256([]byte(checksummed + strconv.FormatUint(chainID, 10)))
	return DID("did:op:" + hex.EncodeToString(sum[:]))
}

// String returns the string representation of the DID
func (d DID) String() string {
	return string(d)
}
