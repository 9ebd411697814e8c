package ledger_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereus-labs/datanft-gateway/internal/ledger"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
	"github.com/nereus-labs/datanft-gateway/internal/mocks"
)

const testChainID = uint64(11155111)

var (
	walletAddr = common.HexToAddress("0x1234567890AbcdEF1234567890aBcdef12345678")
	tokenAddr  = common.HexToAddress("0x0000000000000000000000000000000000000Abc")
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

func newTestClient(t *testing.T) (ledger.Client, *mocks.MockEthClient, *mocks.MockClock) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockEth := mocks.NewMockEthClient(ctrl)
	mockClock := mocks.NewMockClock(ctrl)

	client, err := ledger.NewClient(testChainID, mockEth, mockClock)
	require.NoError(t, err)

	return client, mockEth, mockClock
}

func TestChainID(t *testing.T) {
	client, _, _ := newTestClient(t)
	assert.Equal(t, testChainID, client.ChainID())
}

func TestBlockNumber_RetriesOnce(t *testing.T) {
	client, mockEth, mockClock := newTestClient(t)
	ctx := context.Background()

	gomock.InOrder(
		mockEth.EXPECT().BlockNumber(ctx).Return(uint64(0), errors.New("rpc timeout")),
		mockClock.EXPECT().Sleep(gomock.Any()),
		mockEth.EXPECT().BlockNumber(ctx).Return(uint64(500000), nil),
	)

	number, err := client.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(500000), number)
}

func TestBlockNumber_FailsAfterRetry(t *testing.T) {
	client, mockEth, mockClock := newTestClient(t)
	ctx := context.Background()

	mockEth.EXPECT().BlockNumber(ctx).Return(uint64(0), errors.New("rpc timeout")).Times(2)
	mockClock.EXPECT().Sleep(gomock.Any())

	_, err := client.BlockNumber(ctx)
	assert.Error(t, err)
}

func TestEstimateGas_PassesCallMsg(t *testing.T) {
	client, mockEth, _ := newTestClient(t)
	ctx := context.Background()
	data := []byte{0x01, 0x02}

	mockEth.EXPECT().
		EstimateGas(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
			assert.Equal(t, walletAddr, msg.From)
			require.NotNil(t, msg.To)
			assert.Equal(t, tokenAddr, *msg.To)
			assert.Equal(t, data, msg.Data)
			return 21000, nil
		})

	gas, err := client.EstimateGas(ctx, walletAddr, tokenAddr, data)
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)
}

func TestTransferLogsByWallet_MergesBothDirections(t *testing.T) {
	client, mockEth, _ := newTestClient(t)
	ctx := context.Background()

	incoming := types.Log{Address: tokenAddr, BlockNumber: 10}
	outgoing := types.Log{Address: tokenAddr, BlockNumber: 20}

	mockEth.EXPECT().
		FilterLogs(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
			require.NotEmpty(t, query.Topics)
			assert.Equal(t, ledger.TransferSignature(), query.Topics[0][0])
			// Three topic groups means the wallet sits in the receiver slot
			if len(query.Topics) == 3 {
				return []types.Log{incoming}, nil
			}
			return []types.Log{outgoing}, nil
		}).
		Times(2)

	logs, err := client.TransferLogsByWallet(ctx, walletAddr, 0, 100)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestTransferLogsByWallet_QueryFailure(t *testing.T) {
	client, mockEth, _ := newTestClient(t)
	ctx := context.Background()

	mockEth.EXPECT().
		FilterLogs(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
			if len(query.Topics) == 3 {
				return nil, errors.New("rpc timeout")
			}
			return []types.Log{}, nil
		}).
		Times(2)

	_, err := client.TransferLogsByWallet(ctx, walletAddr, 0, 100)
	assert.Error(t, err)
}

func TestBalanceOf(t *testing.T) {
	client, mockEth, _ := newTestClient(t)
	ctx := context.Background()

	balance := big.NewInt(123456789)

	mockEth.EXPECT().
		CallContract(ctx, gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			require.NotNil(t, msg.To)
			assert.Equal(t, tokenAddr, *msg.To)
			return common.LeftPadBytes(balance.Bytes(), 32), nil
		})

	got, err := client.BalanceOf(ctx, tokenAddr, walletAddr)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(got))
}

func TestGetERC721Address(t *testing.T) {
	client, mockEth, _ := newTestClient(t)
	ctx := context.Background()

	nftAddr := common.HexToAddress("0x00000000000000000000000000000000000000EE")

	mockEth.EXPECT().
		CallContract(ctx, gomock.Any(), gomock.Nil()).
		Return(common.LeftPadBytes(nftAddr.Bytes(), 32), nil)

	got, err := client.GetERC721Address(ctx, tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, nftAddr, got)
}

func TestParseTransferLog_ERC20(t *testing.T) {
	data := make([]byte, 32)
	big.NewInt(42).FillBytes(data)

	vLog := types.Log{
		Topics: []common.Hash{
			ledger.TransferSignature(),
			common.BytesToHash(walletAddr.Bytes()),
			common.BytesToHash(tokenAddr.Bytes()),
		},
		Data: data,
	}

	from, to, value, ok := ledger.ParseTransferLog(vLog)
	require.True(t, ok)
	assert.Equal(t, walletAddr, from)
	assert.Equal(t, tokenAddr, to)
	assert.Equal(t, int64(42), value.Int64())
}

func TestParseTransferLog_ERC721(t *testing.T) {
	vLog := types.Log{
		Topics: []common.Hash{
			ledger.TransferSignature(),
			common.BytesToHash(walletAddr.Bytes()),
			common.BytesToHash(tokenAddr.Bytes()),
			common.BigToHash(big.NewInt(7)), // token id
		},
	}

	_, _, value, ok := ledger.ParseTransferLog(vLog)
	require.True(t, ok)
	assert.Equal(t, int64(1), value.Int64())
}

func TestParseTransferLog_WrongSignature(t *testing.T) {
	vLog := types.Log{
		Topics: []common.Hash{
			common.HexToHash("0x01"),
			common.BytesToHash(walletAddr.Bytes()),
			common.BytesToHash(tokenAddr.Bytes()),
		},
	}

	_, _, _, ok := ledger.ParseTransferLog(vLog)
	assert.False(t, ok)
}
