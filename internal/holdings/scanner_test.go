package holdings_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/holdings"
	"github.com/nereus-labs/datanft-gateway/internal/ledger"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
	"github.com/nereus-labs/datanft-gateway/internal/mocks"
)

const (
	testChainID  = uint64(11155111)
	testWallet   = "0x1234567890AbcdEF1234567890aBcdef12345678"
	testLookback = uint64(10000)
)

var (
	walletAddr    = common.HexToAddress(testWallet)
	datatokenAddr = common.HexToAddress("0x0000000000000000000000000000000000000Abc")
	nftAddr       = common.HexToAddress("0x00000000000000000000000000000000000000EE")
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func newTestScanner(t *testing.T) (*holdings.Scanner, *mocks.MockLedgerClient, *expirable.LRU[string, domain.AssetLink]) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockLedger := mocks.NewMockLedgerClient(ctrl)
	cache := expirable.NewLRU[string, domain.AssetLink](64, nil, time.Minute)

	return holdings.NewScanner(mockLedger, cache, testLookback, 2), mockLedger, cache
}

// transferLog builds an ERC20 Transfer log from the token to the wallet
func transferLog(token, from, to common.Address, value *big.Int, block uint64) types.Log {
	data := make([]byte, 32)
	value.FillBytes(data)
	return types.Log{
		Address: token,
		Topics: []common.Hash{
			ledger.TransferSignature(),
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data:        data,
		BlockNumber: block,
	}
}

func TestScan_EmptyWindow(t *testing.T) {
	scanner, mockLedger, _ := newTestScanner(t)
	ctx := context.Background()

	mockLedger.EXPECT().BlockNumber(ctx).Return(uint64(500000), nil)
	mockLedger.EXPECT().
		TransferLogsByWallet(ctx, walletAddr, uint64(490000), uint64(500000)).
		Return([]types.Log{}, nil)

	records, err := scanner.Scan(ctx, testWallet)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScan_AccessTokenDiscovered(t *testing.T) {
	scanner, mockLedger, _ := newTestScanner(t)
	ctx := context.Background()

	logs := []types.Log{
		transferLog(datatokenAddr, common.Address{}, walletAddr, big.NewInt(1), 499990),
	}

	mockLedger.EXPECT().BlockNumber(ctx).Return(uint64(500000), nil)
	mockLedger.EXPECT().TransferLogsByWallet(ctx, walletAddr, uint64(490000), uint64(500000)).Return(logs, nil)

	mockLedger.EXPECT().CodeAt(ctx, datatokenAddr).Return([]byte{0x60, 0x80}, nil)
	mockLedger.EXPECT().GetERC721Address(ctx, datatokenAddr).Return(nftAddr, nil)
	mockLedger.EXPECT().TokenName(ctx, datatokenAddr).Return("Climate Access Token", nil)
	mockLedger.EXPECT().TokenSymbol(ctx, datatokenAddr).Return("CLIMAT", nil)

	oneToken := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	mockLedger.EXPECT().BalanceOf(ctx, datatokenAddr, walletAddr).Return(oneToken, nil)
	mockLedger.EXPECT().Decimals(ctx, datatokenAddr).Return(uint8(18), nil)
	mockLedger.EXPECT().ChainID().Return(testChainID)

	records, err := scanner.Scan(ctx, testWallet)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, datatokenAddr.Hex(), record.Link.DatatokenAddress)
	assert.Equal(t, nftAddr.Hex(), record.Link.NFTAddress)
	assert.Equal(t, domain.NewDID(nftAddr.Hex(), testChainID), record.DID)
	assert.Equal(t, domain.AccessStateAvailable, record.AccessState)
	assert.Len(t, record.Transfers, 1)
}

func TestScan_SpentToken(t *testing.T) {
	scanner, mockLedger, cache := newTestScanner(t)
	ctx := context.Background()

	// Link already probed in an earlier call
	cache.Add(strings.ToLower(datatokenAddr.Hex()), domain.AssetLink{
		DatatokenAddress: datatokenAddr.Hex(),
		NFTAddress:       nftAddr.Hex(),
		Name:             "Climate Access Token",
		Symbol:           "CLIMAT",
	})

	logs := []types.Log{
		transferLog(datatokenAddr, walletAddr, common.Address{}, big.NewInt(1), 499990),
	}

	mockLedger.EXPECT().BlockNumber(ctx).Return(uint64(500000), nil)
	mockLedger.EXPECT().TransferLogsByWallet(ctx, walletAddr, uint64(490000), uint64(500000)).Return(logs, nil)

	// Cached link means no CodeAt or probe calls
	mockLedger.EXPECT().BalanceOf(ctx, datatokenAddr, walletAddr).Return(big.NewInt(0), nil)
	mockLedger.EXPECT().Decimals(ctx, datatokenAddr).Return(uint8(18), nil)
	mockLedger.EXPECT().ChainID().Return(testChainID)

	records, err := scanner.Scan(ctx, testWallet)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, domain.AccessStateSpent, records[0].AccessState)
}

func TestScan_NonContractCandidateSkipped(t *testing.T) {
	scanner, mockLedger, _ := newTestScanner(t)
	ctx := context.Background()

	logs := []types.Log{
		transferLog(datatokenAddr, common.Address{}, walletAddr, big.NewInt(1), 499990),
	}

	mockLedger.EXPECT().BlockNumber(ctx).Return(uint64(500000), nil)
	mockLedger.EXPECT().TransferLogsByWallet(ctx, walletAddr, uint64(490000), uint64(500000)).Return(logs, nil)

	// No deployed code at the candidate address
	mockLedger.EXPECT().CodeAt(ctx, datatokenAddr).Return([]byte{}, nil)

	records, err := scanner.Scan(ctx, testWallet)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScan_PlainERC20Skipped(t *testing.T) {
	scanner, mockLedger, _ := newTestScanner(t)
	ctx := context.Background()

	logs := []types.Log{
		transferLog(datatokenAddr, common.Address{}, walletAddr, big.NewInt(1), 499990),
	}

	mockLedger.EXPECT().BlockNumber(ctx).Return(uint64(500000), nil)
	mockLedger.EXPECT().TransferLogsByWallet(ctx, walletAddr, uint64(490000), uint64(500000)).Return(logs, nil)

	mockLedger.EXPECT().CodeAt(ctx, datatokenAddr).Return([]byte{0x60, 0x80}, nil)
	// No NFT binding and no token list on a plain ERC20
	mockLedger.EXPECT().GetERC721Address(ctx, datatokenAddr).Return(common.Address{}, errors.New("execution reverted"))
	mockLedger.EXPECT().GetTokensList(ctx, datatokenAddr).Return(nil, errors.New("execution reverted"))

	records, err := scanner.Scan(ctx, testWallet)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScan_TokenListResolvesCandidate(t *testing.T) {
	scanner, mockLedger, _ := newTestScanner(t)
	ctx := context.Background()

	// The asset contract itself emitted the transfer, not the datatoken
	assetAddr := common.HexToAddress("0x00000000000000000000000000000000000000AA")

	logs := []types.Log{
		transferLog(assetAddr, common.Address{}, walletAddr, big.NewInt(1), 499990),
	}

	mockLedger.EXPECT().BlockNumber(ctx).Return(uint64(500000), nil)
	mockLedger.EXPECT().TransferLogsByWallet(ctx, walletAddr, uint64(490000), uint64(500000)).Return(logs, nil)

	mockLedger.EXPECT().CodeAt(ctx, assetAddr).Return([]byte{0x60, 0x80}, nil)
	mockLedger.EXPECT().GetERC721Address(ctx, assetAddr).Return(common.Address{}, errors.New("execution reverted"))
	mockLedger.EXPECT().GetTokensList(ctx, assetAddr).Return([]common.Address{datatokenAddr}, nil)
	mockLedger.EXPECT().GetERC721Address(ctx, datatokenAddr).Return(nftAddr, nil)
	mockLedger.EXPECT().TokenName(ctx, datatokenAddr).Return("Climate Access Token", nil)
	mockLedger.EXPECT().TokenSymbol(ctx, datatokenAddr).Return("CLIMAT", nil)

	oneToken := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	mockLedger.EXPECT().BalanceOf(ctx, datatokenAddr, walletAddr).Return(oneToken, nil)
	mockLedger.EXPECT().Decimals(ctx, datatokenAddr).Return(uint8(18), nil)
	mockLedger.EXPECT().ChainID().Return(testChainID)

	records, err := scanner.Scan(ctx, testWallet)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, datatokenAddr.Hex(), record.Link.DatatokenAddress)
	assert.Equal(t, nftAddr.Hex(), record.Link.NFTAddress)
	assert.Equal(t, domain.AccessStateAvailable, record.AccessState)
	// The candidate's transfers belong to the asset contract, not the
	// resolved datatoken
	assert.Empty(t, record.Transfers)
}

func TestScan_ZeroAssetBindingSkipped(t *testing.T) {
	scanner, mockLedger, _ := newTestScanner(t)
	ctx := context.Background()

	logs := []types.Log{
		transferLog(datatokenAddr, common.Address{}, walletAddr, big.NewInt(1), 499990),
	}

	mockLedger.EXPECT().BlockNumber(ctx).Return(uint64(500000), nil)
	mockLedger.EXPECT().TransferLogsByWallet(ctx, walletAddr, uint64(490000), uint64(500000)).Return(logs, nil)

	mockLedger.EXPECT().CodeAt(ctx, datatokenAddr).Return([]byte{0x60, 0x80}, nil)
	// The call succeeds but reports no binding; a zero asset address
	// must not become a holdings record
	mockLedger.EXPECT().GetERC721Address(ctx, datatokenAddr).Return(common.Address{}, nil)
	mockLedger.EXPECT().GetTokensList(ctx, datatokenAddr).Return(nil, errors.New("execution reverted"))

	records, err := scanner.Scan(ctx, testWallet)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScan_ProbeFailureDoesNotHideOthers(t *testing.T) {
	scanner, mockLedger, cache := newTestScanner(t)
	ctx := context.Background()

	brokenAddr := common.HexToAddress("0x00000000000000000000000000000000000000BB")

	cache.Add(strings.ToLower(datatokenAddr.Hex()), domain.AssetLink{
		DatatokenAddress: datatokenAddr.Hex(),
		NFTAddress:       nftAddr.Hex(),
	})

	logs := []types.Log{
		transferLog(datatokenAddr, common.Address{}, walletAddr, big.NewInt(1), 499990),
		transferLog(brokenAddr, common.Address{}, walletAddr, big.NewInt(1), 499991),
	}

	mockLedger.EXPECT().BlockNumber(ctx).Return(uint64(500000), nil)
	mockLedger.EXPECT().TransferLogsByWallet(ctx, walletAddr, uint64(490000), uint64(500000)).Return(logs, nil)

	// The broken candidate fails on its first probe call
	mockLedger.EXPECT().CodeAt(ctx, brokenAddr).Return(nil, errors.New("rpc timeout"))

	mockLedger.EXPECT().BalanceOf(ctx, datatokenAddr, walletAddr).Return(big.NewInt(1), nil)
	mockLedger.EXPECT().Decimals(ctx, datatokenAddr).Return(uint8(18), nil)
	mockLedger.EXPECT().ChainID().Return(testChainID)

	records, err := scanner.Scan(ctx, testWallet)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, datatokenAddr.Hex(), records[0].Link.DatatokenAddress)
}

func TestScan_InvalidWallet(t *testing.T) {
	scanner, _, _ := newTestScanner(t)

	_, err := scanner.Scan(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
