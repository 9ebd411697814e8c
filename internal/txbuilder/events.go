package txbuilder

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nereus-labs/datanft-gateway/internal/domain"
)

// factoryEventsABI describes the two creation events emitted by the factory
// deployment transaction. Only the fields needed to recover the deployed
// addresses are decoded.
const factoryEventsABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": false, "name": "newTokenAddress", "type": "address"},
			{"indexed": true, "name": "templateAddress", "type": "address"},
			{"indexed": false, "name": "tokenName", "type": "string"},
			{"indexed": true, "name": "admin", "type": "address"},
			{"indexed": false, "name": "symbol", "type": "string"},
			{"indexed": false, "name": "tokenURI", "type": "string"},
			{"indexed": false, "name": "transferable", "type": "bool"}
		],
		"name": "NFTCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "newTokenAddress", "type": "address"},
			{"indexed": true, "name": "templateAddress", "type": "address"},
			{"indexed": false, "name": "name", "type": "string"},
			{"indexed": false, "name": "symbol", "type": "string"},
			{"indexed": false, "name": "cap", "type": "uint256"},
			{"indexed": false, "name": "creator", "type": "address"}
		],
		"name": "TokenCreated",
		"type": "event"
	}
]`

var (
	nftCreatedTopic   = crypto.Keccak256Hash([]byte("NFTCreated(address,address,string,address,string,string,bool)"))
	tokenCreatedTopic = crypto.Keccak256Hash([]byte("TokenCreated(address,address,string,string,uint256,address)"))
)

// ExtractAssetIdentity recovers the deployed NFT and datatoken addresses
// from the logs of a confirmed creation transaction. Events are matched by
// signature topic, never by position, so unrelated logs interleaved by the
// template contracts cannot shift the result.
func ExtractAssetIdentity(logs []types.Log, chainID uint64) (*domain.AssetIdentity, error) {
	parsed, err := abi.JSON(strings.NewReader(factoryEventsABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse factory events ABI: %w", err)
	}

	var nftAddress, datatokenAddress common.Address
	var foundNFT, foundToken bool

	for _, entry := range logs {
		if len(entry.Topics) == 0 {
			continue
		}

		switch entry.Topics[0] {
		case nftCreatedTopic:
			// newTokenAddress is the first non-indexed field
			values, err := parsed.Events["NFTCreated"].Inputs.NonIndexed().Unpack(entry.Data)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to decode NFTCreated log: %v", domain.ErrInvalidInput, err)
			}
			addr, ok := values[0].(common.Address)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected NFTCreated payload", domain.ErrInvalidInput)
			}
			nftAddress = addr
			foundNFT = true

		case tokenCreatedTopic:
			// newTokenAddress is indexed, so it lives in the topics
			if len(entry.Topics) < 2 {
				return nil, fmt.Errorf("%w: TokenCreated log missing address topic", domain.ErrInvalidInput)
			}
			datatokenAddress = common.BytesToAddress(entry.Topics[1].Bytes())
			foundToken = true
		}

		if foundNFT && foundToken {
			break
		}
	}

	if !foundNFT {
		return nil, fmt.Errorf("%w: no NFTCreated event in receipt logs", domain.ErrInvalidInput)
	}
	if !foundToken {
		return nil, fmt.Errorf("%w: no TokenCreated event in receipt logs", domain.ErrInvalidInput)
	}

	identity := &domain.AssetIdentity{
		NFTAddress:       nftAddress.Hex(),
		DatatokenAddress: datatokenAddress.Hex(),
		ChainID:          chainID,
	}
	identity.DID = domain.NewDID(identity.NFTAddress, chainID)

	return identity, nil
}
