package txbuilder

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/ledger"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
)

// factoryABI covers the single factory call the gateway makes: creating the
// NFT, its datatoken and the bound dispenser in one transaction.
const factoryABI = `[{
	"inputs": [
		{"components": [
			{"name": "name", "type": "string"},
			{"name": "symbol", "type": "string"},
			{"name": "templateIndex", "type": "uint256"},
			{"name": "tokenURI", "type": "string"},
			{"name": "transferable", "type": "bool"},
			{"name": "owner", "type": "address"}
		], "name": "_NftCreateData", "type": "tuple"},
		{"components": [
			{"name": "templateIndex", "type": "uint256"},
			{"name": "strings", "type": "string[]"},
			{"name": "addresses", "type": "address[]"},
			{"name": "uints", "type": "uint256[]"},
			{"name": "bytess", "type": "bytes[]"}
		], "name": "_ErcCreateData", "type": "tuple"},
		{"components": [
			{"name": "dispenserAddress", "type": "address"},
			{"name": "maxTokens", "type": "uint256"},
			{"name": "maxBalance", "type": "uint256"},
			{"name": "withMint", "type": "bool"},
			{"name": "allowedSwapper", "type": "address"}
		], "name": "_DispenserData", "type": "tuple"}
	],
	"name": "createNftWithErc20WithDispenser",
	"outputs": [],
	"stateMutability": "nonpayable",
	"type": "function"
}]`

// nftABI covers the metadata attachment call on the asset NFT
const nftABI = `[{
	"inputs": [
		{"name": "_metaDataState", "type": "uint8"},
		{"name": "_metaDataDecryptorUrl", "type": "string"},
		{"name": "_metaDataDecryptorAddress", "type": "string"},
		{"name": "flags", "type": "bytes"},
		{"name": "data", "type": "bytes"},
		{"name": "_metaDataHash", "type": "bytes32"},
		{"components": [
			{"name": "validatorAddress", "type": "address"},
			{"name": "v", "type": "uint8"},
			{"name": "r", "type": "bytes32"},
			{"name": "s", "type": "bytes32"}
		], "name": "additionalParams", "type": "tuple[]"}
	],
	"name": "setMetaData",
	"outputs": [],
	"stateMutability": "nonpayable",
	"type": "function"
}]`

// datatokenABI covers minting and order placement on the fungible token
const datatokenABI = `[
	{
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "mint",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "consumer", "type": "address"},
			{"name": "serviceIndex", "type": "uint256"},
			{"components": [
				{"name": "providerFeeAddress", "type": "address"},
				{"name": "providerFeeToken", "type": "address"},
				{"name": "providerFeeAmount", "type": "uint256"},
				{"name": "v", "type": "uint8"},
				{"name": "r", "type": "bytes32"},
				{"name": "s", "type": "bytes32"},
				{"name": "validUntil", "type": "uint256"},
				{"name": "providerData", "type": "bytes"}
			], "name": "_providerFee", "type": "tuple"},
			{"components": [
				{"name": "consumeMarketFeeAddress", "type": "address"},
				{"name": "consumeMarketFeeToken", "type": "address"},
				{"name": "consumeMarketFeeAmount", "type": "uint256"}
			], "name": "_consumeMarketFee", "type": "tuple"}
		],
		"name": "startOrder",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// dispenserABI covers the token release call on the shared dispenser
const dispenserABI = `[{
	"inputs": [
		{"name": "datatoken", "type": "address"},
		{"name": "amount", "type": "uint256"},
		{"name": "destination", "type": "address"}
	],
	"name": "dispense",
	"outputs": [],
	"stateMutability": "nonpayable",
	"type": "function"
}]`

// Creation parameters fixed by the deployed template set. Values are in
// base units (18 decimals).
var (
	// datatokenCap is the total supply ceiling of a new access token
	datatokenCap, _ = new(big.Int).SetString("100000000000000000000000", 10) // 100000 tokens

	// dispenserMaxTokens bounds what the dispenser may release in total
	dispenserMaxTokens, _ = new(big.Int).SetString("1000000000000000000000", 10) // 1000 tokens

	// dispenserMaxBalance bounds what a single wallet may accumulate
	dispenserMaxBalance, _ = new(big.Int).SetString("100000000000000000000", 10) // 100 tokens
)

const (
	// templateIndex selects the deployed NFT and datatoken templates
	templateIndex = 1

	// metadataDecryptorAddress is the placeholder decryptor identity the
	// provider expects alongside its URL
	metadataDecryptorAddress = "0x123"

	// fallbackGasLimit is the conservative ceiling used on the consume
	// path when live estimation fails
	fallbackGasLimit = uint64(2_000_000)
)

// metadataFlags marks the attached payload as encrypted
var metadataFlags = []byte{0x02}

type nftCreateData struct {
	Name          string
	Symbol        string
	TemplateIndex *big.Int
	TokenURI      string
	Transferable  bool
	Owner         common.Address
}

type ercCreateData struct {
	TemplateIndex *big.Int
	Strings       []string
	Addresses     []common.Address
	Uints         []*big.Int
	Bytess        [][]byte
}

type dispenserData struct {
	DispenserAddress common.Address
	MaxTokens        *big.Int
	MaxBalance       *big.Int
	WithMint         bool
	AllowedSwapper   common.Address
}

type metadataProof struct {
	ValidatorAddress common.Address
	V                uint8
	R                [32]byte
	S                [32]byte
}

// Addresses holds the fixed contract addresses of one chain deployment
type Addresses struct {
	NFTFactory common.Address
	Dispenser  common.Address
	OceanToken common.Address
}

// Builder encodes logical operations into unsigned transactions with live
// gas estimation. It never signs and never submits.
type Builder struct {
	ledger    ledger.Client
	addresses Addresses
	factory   abi.ABI
	nft       abi.ABI
	datatoken abi.ABI
	dispenser abi.ABI
}

// NewBuilder creates a transaction builder bound to one deployment
func NewBuilder(ledgerClient ledger.Client, addresses Addresses) (*Builder, error) {
	factory, err := abi.JSON(strings.NewReader(factoryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse factory ABI: %w", err)
	}
	nft, err := abi.JSON(strings.NewReader(nftABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nft ABI: %w", err)
	}
	datatoken, err := abi.JSON(strings.NewReader(datatokenABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse datatoken ABI: %w", err)
	}
	dispenser, err := abi.JSON(strings.NewReader(dispenserABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse dispenser ABI: %w", err)
	}

	return &Builder{
		ledger:    ledgerClient,
		addresses: addresses,
		factory:   factory,
		nft:       nft,
		datatoken: datatoken,
		dispenser: dispenser,
	}, nil
}

// CreateAssetPair encodes the factory call that deploys the asset NFT, its
// access token and the bound dispenser. The owner is the only mint
// authority and the only allowed dispenser user.
func (b *Builder) CreateAssetPair(ctx context.Context, owner common.Address, draft domain.MetadataDraft) (*domain.UnsignedTransaction, error) {
	nftParams := nftCreateData{
		Name:          draft.NFTName,
		Symbol:        draft.NFTSymbol,
		TemplateIndex: big.NewInt(templateIndex),
		TokenURI:      "",
		Transferable:  true,
		Owner:         owner,
	}

	datatokenParams := ercCreateData{
		TemplateIndex: big.NewInt(templateIndex),
		Strings:       []string{draft.DatatokenName, draft.DatatokenSymbol},
		Addresses: []common.Address{
			owner,                // minter
			{},                   // payment collector
			{},                   // fee address
			b.addresses.OceanToken, // base token
		},
		Uints:  []*big.Int{datatokenCap, big.NewInt(0)},
		Bytess: [][]byte{},
	}

	dispenserParams := dispenserData{
		DispenserAddress: b.addresses.Dispenser,
		MaxTokens:        dispenserMaxTokens,
		MaxBalance:       dispenserMaxBalance,
		WithMint:         false, // no public minting through the dispenser
		AllowedSwapper:   owner,
	}

	data, err := b.factory.Pack("createNftWithErc20WithDispenser", nftParams, datatokenParams, dispenserParams)
	if err != nil {
		return nil, fmt.Errorf("failed to pack creation call: %w", err)
	}

	return b.buildTx(ctx, owner, b.addresses.NFTFactory, data)
}

// SetMetadata encodes the metadata attachment call against the asset NFT.
// encryptedDDO is the hex-encoded ciphertext from the provider and
// metadataHash the 0x-prefixed sha256 of the plaintext descriptor.
func (b *Builder) SetMetadata(ctx context.Context, nftAddress, publisher common.Address, state uint8, decryptorURL, encryptedDDO, metadataHash string) (*domain.UnsignedTransaction, error) {
	data, err := b.nft.Pack("setMetaData",
		state,
		decryptorURL,
		metadataDecryptorAddress,
		metadataFlags,
		common.FromHex(encryptedDDO),
		common.HexToHash(metadataHash),
		[]metadataProof{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pack setMetaData call: %w", err)
	}

	return b.buildTx(ctx, publisher, nftAddress, data)
}

// MintToDispenser encodes a mint of access tokens to the dispenser,
// authorized by the asset's minter. Used when the dispenser is depleted.
func (b *Builder) MintToDispenser(ctx context.Context, minter, datatoken common.Address, amount *big.Int) (*domain.UnsignedTransaction, error) {
	data, err := b.datatoken.Pack("mint", b.addresses.Dispenser, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack mint call: %w", err)
	}

	return b.buildTxWithFallback(ctx, minter, datatoken, data)
}

// Dispense encodes the dispenser release of access tokens to the wallet
func (b *Builder) Dispense(ctx context.Context, wallet, datatoken common.Address, amount *big.Int) (*domain.UnsignedTransaction, error) {
	data, err := b.dispenser.Pack("dispense", datatoken, amount, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to pack dispense call: %w", err)
	}

	return b.buildTxWithFallback(ctx, wallet, b.addresses.Dispenser, data)
}

// StartOrder encodes the order placement that spends an access token. The
// provider fee is a fresh quote; the market fee is always zero here.
func (b *Builder) StartOrder(ctx context.Context, wallet, datatoken common.Address, serviceIndex uint64, fee domain.ProviderFee, marketFee domain.ConsumeMarketFee) (*domain.UnsignedTransaction, error) {
	data, err := b.datatoken.Pack("startOrder",
		wallet,
		new(big.Int).SetUint64(serviceIndex),
		fee,
		marketFee,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pack startOrder call: %w", err)
	}

	return b.buildTxWithFallback(ctx, wallet, datatoken, data)
}

// buildTx estimates gas for the exact payload and sender and returns the
// unsigned transaction. An estimation failure means the call would revert;
// the payload must not be signed.
func (b *Builder) buildTx(ctx context.Context, from, to common.Address, data []byte) (*domain.UnsignedTransaction, error) {
	gas, err := b.ledger.EstimateGas(ctx, from, to, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransactionWouldFail, err)
	}

	return &domain.UnsignedTransaction{
		To:       to.Hex(),
		Data:     hexutil.Encode(data),
		GasLimit: GasLimitHex(gas),
	}, nil
}

// buildTxWithFallback estimates like buildTx but substitutes a fixed
// conservative ceiling when estimation fails, so a consume batch can still
// be attempted as a whole.
func (b *Builder) buildTxWithFallback(ctx context.Context, from, to common.Address, data []byte) (*domain.UnsignedTransaction, error) {
	gas, err := b.ledger.EstimateGas(ctx, from, to, data)
	if err != nil {
		logger.Warn("gas estimation failed, using fallback ceiling",
			zap.String("to", to.Hex()),
			zap.Error(err))
		return &domain.UnsignedTransaction{
			To:       to.Hex(),
			Data:     hexutil.Encode(data),
			GasLimit: "0x" + strconv.FormatUint(fallbackGasLimit, 16),
		}, nil
	}

	return &domain.UnsignedTransaction{
		To:       to.Hex(),
		Data:     hexutil.Encode(data),
		GasLimit: GasLimitHex(gas),
	}, nil
}

// GasLimitHex applies the 20% safety buffer, rounding up, and hex-encodes
// the result with a single 0x prefix.
func GasLimitHex(estimate uint64) string {
	buffered := (estimate*12 + 9) / 10
	return "0x" + strconv.FormatUint(buffered, 16)
}
