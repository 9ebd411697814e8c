package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nereus-labs/datanft-gateway/internal/adapter"
)

// transferEventSignature is the topic hash of the ERC20/ERC721 Transfer event
var transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// probeABI covers every read-only call the gateway makes against datatoken,
// NFT and dispenser contracts. One interface keeps call packing in one place.
const probeABI = `[
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"getERC721Address","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"getTokensList","outputs":[{"name":"","type":"address[]"}],"stateMutability":"view","type":"function"}
]`

// readRetryDelay is the pause before the single retry of an idempotent read
const readRetryDelay = 500 * time.Millisecond

// Client provides read-only and estimation access to the chain. Every
// method is an idempotent read and gets a single retry; nothing here ever
// submits a transaction.
//
//go:generate mockgen -source=client.go -destination=../mocks/ledger.go -package=mocks -mock_names=Client=MockLedgerClient
type Client interface {
	// ChainID returns the configured chain id
	ChainID() uint64

	// BlockNumber returns the most recent block number
	BlockNumber(ctx context.Context) (uint64, error)

	// EstimateGas estimates gas for calling a contract with the given
	// payload from the given sender
	EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error)

	// CodeAt returns the deployed code at an address ("0x" means not a contract)
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)

	// TransactionReceipt returns the receipt of a mined transaction
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// TransferLogsByWallet fetches Transfer events where the wallet is
	// sender or receiver within [fromBlock, toBlock]
	TransferLogsByWallet(ctx context.Context, wallet common.Address, fromBlock, toBlock uint64) ([]types.Log, error)

	// BalanceOf fetches the ERC20 balance of owner on the token contract
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)

	// Decimals fetches the ERC20 decimals of the token contract
	Decimals(ctx context.Context, token common.Address) (uint8, error)

	// TokenName fetches the ERC20 name of the token contract
	TokenName(ctx context.Context, token common.Address) (string, error)

	// TokenSymbol fetches the ERC20 symbol of the token contract
	TokenSymbol(ctx context.Context, token common.Address) (string, error)

	// GetERC721Address resolves the asset NFT address a datatoken is bound to
	GetERC721Address(ctx context.Context, token common.Address) (common.Address, error)

	// GetTokensList fetches the datatoken list of an NFT-style contract
	GetTokensList(ctx context.Context, token common.Address) ([]common.Address, error)

	// Close closes the underlying connection
	Close()
}

type ledgerClient struct {
	chainID uint64
	client  adapter.EthClient
	clock   adapter.Clock
	probe   abi.ABI
}

// NewClient creates a ledger client for one chain
func NewClient(chainID uint64, client adapter.EthClient, clock adapter.Clock) (Client, error) {
	parsed, err := abi.JSON(strings.NewReader(probeABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse probe ABI: %w", err)
	}

	return &ledgerClient{
		chainID: chainID,
		client:  client,
		clock:   clock,
		probe:   parsed,
	}, nil
}

func (c *ledgerClient) ChainID() uint64 {
	return c.chainID
}

// withRetry runs an idempotent read, retrying once after a short pause
func (c *ledgerClient) withRetry(ctx context.Context, op func() error) error {
	err := op()
	if err == nil || ctx.Err() != nil {
		return err
	}

	c.clock.Sleep(readRetryDelay)
	return op()
}

func (c *ledgerClient) BlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.withRetry(ctx, func() error {
		var err error
		number, err = c.client.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}
	return number, nil
}

func (c *ledgerClient) EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error) {
	var gas uint64
	err := c.withRetry(ctx, func() error {
		var err error
		gas, err = c.client.EstimateGas(ctx, ethereum.CallMsg{
			From: from,
			To:   &to,
			Data: data,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}
	return gas, nil
}

func (c *ledgerClient) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	var code []byte
	err := c.withRetry(ctx, func() error {
		var err error
		code, err = c.client.CodeAt(ctx, address, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get code at %s: %w", address.Hex(), err)
	}
	return code, nil
}

func (c *ledgerClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := c.withRetry(ctx, func() error {
		var err error
		receipt, err = c.client.TransactionReceipt(ctx, txHash)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt %s: %w", txHash.Hex(), err)
	}
	return receipt, nil
}

// TransferLogsByWallet runs the incoming and outgoing Transfer queries in
// parallel and merges the results. Both ERC20 and ERC721 transfers share the
// event signature; candidates are told apart later by probing.
func (c *ledgerClient) TransferLogsByWallet(ctx context.Context, wallet common.Address, fromBlock, toBlock uint64) ([]types.Log, error) {
	walletHash := common.BytesToHash(wallet.Bytes())

	queries := []ethereum.FilterQuery{
		// Transfer where the wallet is the receiver (topic[2])
		{
			FromBlock: new(big.Int).SetUint64(fromBlock),
			ToBlock:   new(big.Int).SetUint64(toBlock),
			Topics: [][]common.Hash{
				{transferEventSignature},
				nil,          // any from address
				{walletHash}, // to address
			},
		},
		// Transfer where the wallet is the sender (topic[1])
		{
			FromBlock: new(big.Int).SetUint64(fromBlock),
			ToBlock:   new(big.Int).SetUint64(toBlock),
			Topics: [][]common.Hash{
				{transferEventSignature},
				{walletHash}, // from address
			},
		},
	}

	type queryResult struct {
		logs []types.Log
		err  error
	}

	resultsCh := make(chan queryResult, len(queries))
	for _, q := range queries {
		go func(query ethereum.FilterQuery) {
			var logs []types.Log
			err := c.withRetry(ctx, func() error {
				var err error
				logs, err = c.client.FilterLogs(ctx, query)
				return err
			})
			resultsCh <- queryResult{logs: logs, err: err}
		}(q)
	}

	var allLogs []types.Log
	for range queries {
		result := <-resultsCh
		if result.err != nil {
			return nil, fmt.Errorf("failed to query transfer logs: %w", result.err)
		}
		allLogs = append(allLogs, result.logs...)
	}

	return allLogs, nil
}

// call packs a probe method, executes it and unpacks the single result
func (c *ledgerClient) call(ctx context.Context, to common.Address, method string, out interface{}, args ...interface{}) error {
	data, err := c.probe.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", method, err)
	}

	var result []byte
	err = c.withRetry(ctx, func() error {
		var err error
		result, err = c.client.CallContract(ctx, ethereum.CallMsg{
			To:   &to,
			Data: data,
		}, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to call %s on %s: %w", method, to.Hex(), err)
	}

	if err := c.probe.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("failed to unpack %s result: %w", method, err)
	}

	return nil
}

func (c *ledgerClient) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	var balance *big.Int
	if err := c.call(ctx, token, "balanceOf", &balance, owner); err != nil {
		return nil, err
	}
	return balance, nil
}

func (c *ledgerClient) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	var decimals uint8
	if err := c.call(ctx, token, "decimals", &decimals); err != nil {
		return 0, err
	}
	return decimals, nil
}

func (c *ledgerClient) TokenName(ctx context.Context, token common.Address) (string, error) {
	var name string
	if err := c.call(ctx, token, "name", &name); err != nil {
		return "", err
	}
	return name, nil
}

func (c *ledgerClient) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	var symbol string
	if err := c.call(ctx, token, "symbol", &symbol); err != nil {
		return "", err
	}
	return symbol, nil
}

func (c *ledgerClient) GetERC721Address(ctx context.Context, token common.Address) (common.Address, error) {
	var nftAddress common.Address
	if err := c.call(ctx, token, "getERC721Address", &nftAddress); err != nil {
		return common.Address{}, err
	}
	return nftAddress, nil
}

func (c *ledgerClient) GetTokensList(ctx context.Context, token common.Address) ([]common.Address, error) {
	var tokens []common.Address
	if err := c.call(ctx, token, "getTokensList", &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (c *ledgerClient) Close() {
	c.client.Close()
}

// ParseTransferLog decodes a Transfer log into from/to/value. ERC721
// transfers carry the token id in topic[3]; for the fungible access tokens
// the value sits in the data segment.
func ParseTransferLog(vLog types.Log) (from, to common.Address, value *big.Int, ok bool) {
	if len(vLog.Topics) < 3 || vLog.Topics[0] != transferEventSignature {
		return common.Address{}, common.Address{}, nil, false
	}

	from = common.BytesToAddress(vLog.Topics[1].Bytes())
	to = common.BytesToAddress(vLog.Topics[2].Bytes())

	if len(vLog.Topics) == 4 {
		// ERC721: indexed token id, quantity is always one
		value = big.NewInt(1)
	} else if len(vLog.Data) >= 32 {
		value = new(big.Int).SetBytes(vLog.Data[0:32])
	} else {
		value = big.NewInt(0)
	}

	return from, to, value, true
}

// TransferSignature exposes the Transfer topic hash for tests and filters
func TransferSignature() common.Hash {
	return transferEventSignature
}
